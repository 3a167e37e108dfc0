package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type AlertKind string

const (
	KindPublicIncident AlertKind = "publicIncident"
	KindMissingPerson  AlertKind = "missingPerson"
)

// PublicAlert is one reported event. Created once by the reporting flow and
// immutable afterwards; the fan-out pipeline only reads it.
type PublicAlert struct {
	ID         uuid.UUID `json:"id"`
	Titulo     string    `json:"titulo"`
	Descricao  string    `json:"descricao"`
	Endereco   string    `json:"endereco"`
	Bairro     string    `json:"bairro"`
	Cidade     string    `json:"cidade"`
	UF         string    `json:"uf"`
	CEP        string    `json:"cep"`
	Lat        *float64  `json:"lat"`
	Lng        *float64  `json:"lng"`
	RadiusM    *float64  `json:"radius_m"`
	Gravidade  Severity  `json:"gravidade"`
	Color      string    `json:"color"`
	Image      string    `json:"image"`
	Kind       AlertKind `json:"kind"`
	TTLSeconds *int      `json:"ttlSeconds"`
	CreatedAt  time.Time `json:"created_at"`
}

// HasFiniteCoords reports whether both coordinates are present and finite.
// Fan-out must not proceed past RESOLVE_PRESENTATION without this.
func (a *PublicAlert) HasFiniteCoords() bool {
	if a.Lat == nil || a.Lng == nil {
		return false
	}
	return !math.IsNaN(*a.Lat) && !math.IsInf(*a.Lat, 0) &&
		!math.IsNaN(*a.Lng) && !math.IsInf(*a.Lng, 0)
}

// Presentation holds the fields the orchestrator resolves from an alert
// before dispatch: effective radius, accent color, texts and push TTL.
type Presentation struct {
	Title      string
	Body       string
	Color      string
	RadiusM    float64
	TTLSeconds int
	Locality   string
}
