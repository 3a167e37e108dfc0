package service

import (
	"fmt"
	"strings"

	"vigia/internal/domain"
)

const (
	// DefaultTTLSeconds is the push TTL when the alert specifies none.
	DefaultTTLSeconds = 900

	// DefaultRadiusM applies when the alert has no radius and its kind has
	// no default of its own.
	DefaultRadiusM = 1000.0

	notificationChannel = "vigia_alerts"
)

var kindDefaultRadiusM = map[domain.AlertKind]float64{
	domain.KindPublicIncident: 1500,
	domain.KindMissingPerson:  5000,
}

var severityColors = map[domain.Severity]string{
	domain.SeverityLow:      "#FDD835",
	domain.SeverityMedium:   "#FB8C00",
	domain.SeverityHigh:     "#E53935",
	domain.SeverityCritical: "#B71C1C",
}

// PresentationDefaults carries the configured fallbacks for alerts that
// omit TTL or radius. Zero fields fall back to the package constants.
type PresentationDefaults struct {
	TTLSeconds int
	RadiusM    float64
}

// ResolvePresentation derives the notification parameters from an alert:
// effective radius, accent color, title/body text, locality label and TTL.
// Pure; never fails.
func ResolvePresentation(a *domain.PublicAlert, d PresentationDefaults) domain.Presentation {
	if d.TTLSeconds <= 0 {
		d.TTLSeconds = DefaultTTLSeconds
	}
	if d.RadiusM <= 0 {
		d.RadiusM = DefaultRadiusM
	}

	severity := a.Gravidade
	if severity == "" {
		severity = domain.SeverityMedium
	}

	radius := d.RadiusM
	if a.RadiusM != nil && *a.RadiusM > 0 {
		radius = *a.RadiusM
	} else if r, ok := kindDefaultRadiusM[a.Kind]; ok {
		radius = r
	}

	color := a.Color
	if color == "" {
		if c, ok := severityColors[severity]; ok {
			color = c
		} else {
			color = severityColors[domain.SeverityMedium]
		}
	}

	ttl := d.TTLSeconds
	if a.TTLSeconds != nil && *a.TTLSeconds > 0 {
		ttl = *a.TTLSeconds
	}

	locality := localityLabel(a)

	return domain.Presentation{
		Title:      resolveTitle(a, severity),
		Body:       resolveBody(a, locality),
		Color:      color,
		RadiusM:    radius,
		TTLSeconds: ttl,
		Locality:   locality,
	}
}

func resolveTitle(a *domain.PublicAlert, severity domain.Severity) string {
	if a.Titulo != "" {
		return a.Titulo
	}
	if a.Kind == domain.KindMissingPerson {
		return "Pessoa desaparecida perto de você"
	}
	switch severity {
	case domain.SeverityCritical:
		return "Alerta crítico na sua região"
	case domain.SeverityHigh:
		return "Alerta grave na sua região"
	case domain.SeverityLow:
		return "Aviso na sua região"
	default:
		return "Alerta na sua região"
	}
}

func resolveBody(a *domain.PublicAlert, locality string) string {
	if a.Descricao != "" {
		return a.Descricao
	}
	if locality != "" {
		return fmt.Sprintf("Ocorrência registrada em %s. Toque para ver os detalhes.", locality)
	}
	return "Ocorrência registrada perto de você. Toque para ver os detalhes."
}

func localityLabel(a *domain.PublicAlert) string {
	parts := make([]string, 0, 2)
	if a.Bairro != "" {
		parts = append(parts, a.Bairro)
	}
	switch {
	case a.Cidade != "" && a.UF != "":
		parts = append(parts, a.Cidade+"/"+a.UF)
	case a.Cidade != "":
		parts = append(parts, a.Cidade)
	}
	return strings.Join(parts, ", ")
}
