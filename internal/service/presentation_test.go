package service_test

import (
	"testing"

	"vigia/internal/domain"
	"vigia/internal/service"

	"github.com/google/uuid"
)

func intPtr(v int) *int { return &v }

func TestResolvePresentation_Defaults(t *testing.T) {
	t.Parallel()

	a := &domain.PublicAlert{ID: uuid.New()}
	p := service.ResolvePresentation(a, service.PresentationDefaults{})

	if p.TTLSeconds != 900 {
		t.Fatalf("default ttl: got %d", p.TTLSeconds)
	}
	if p.RadiusM != 1000 {
		t.Fatalf("default radius: got %v", p.RadiusM)
	}
	// absent severity resolves to medium
	if p.Color != "#FB8C00" {
		t.Fatalf("default color: got %q", p.Color)
	}
	if p.Title == "" || p.Body == "" {
		t.Fatalf("title/body must never be empty: %+v", p)
	}
}

func TestResolvePresentation_ConfiguredDefaults(t *testing.T) {
	t.Parallel()

	d := service.PresentationDefaults{TTLSeconds: 600, RadiusM: 2000}

	a := &domain.PublicAlert{ID: uuid.New()}
	p := service.ResolvePresentation(a, d)

	if p.TTLSeconds != 600 {
		t.Fatalf("configured ttl: got %d", p.TTLSeconds)
	}
	if p.RadiusM != 2000 {
		t.Fatalf("configured radius: got %v", p.RadiusM)
	}

	// kind defaults still win over the configured generic radius
	a.Kind = domain.KindMissingPerson
	if p := service.ResolvePresentation(a, d); p.RadiusM != 5000 {
		t.Fatalf("kind default radius must win: got %v", p.RadiusM)
	}

	// explicit alert values win over configured defaults
	a.TTLSeconds = intPtr(120)
	if p := service.ResolvePresentation(a, d); p.TTLSeconds != 120 {
		t.Fatalf("explicit ttl must win: got %d", p.TTLSeconds)
	}
}

func TestResolvePresentation_KindDefaultRadius(t *testing.T) {
	t.Parallel()

	a := &domain.PublicAlert{ID: uuid.New(), Kind: domain.KindPublicIncident}
	if p := service.ResolvePresentation(a, service.PresentationDefaults{}); p.RadiusM != 1500 {
		t.Fatalf("publicIncident default radius: got %v", p.RadiusM)
	}

	a.Kind = domain.KindMissingPerson
	if p := service.ResolvePresentation(a, service.PresentationDefaults{}); p.RadiusM != 5000 {
		t.Fatalf("missingPerson default radius: got %v", p.RadiusM)
	}
}

func TestResolvePresentation_ExplicitValuesWin(t *testing.T) {
	t.Parallel()

	a := &domain.PublicAlert{
		ID:         uuid.New(),
		Titulo:     "Assalto na praça",
		Descricao:  "Dois suspeitos em moto",
		RadiusM:    floatPtr(2500),
		Gravidade:  domain.SeverityCritical,
		Color:      "#123456",
		TTLSeconds: intPtr(300),
	}
	p := service.ResolvePresentation(a, service.PresentationDefaults{})

	if p.Title != "Assalto na praça" {
		t.Fatalf("explicit title lost: %q", p.Title)
	}
	if p.Body != "Dois suspeitos em moto" {
		t.Fatalf("explicit body lost: %q", p.Body)
	}
	if p.Color != "#123456" {
		t.Fatalf("color override must win over severity: %q", p.Color)
	}
	if p.RadiusM != 2500 {
		t.Fatalf("explicit radius lost: %v", p.RadiusM)
	}
	if p.TTLSeconds != 300 {
		t.Fatalf("explicit ttl lost: %d", p.TTLSeconds)
	}
}

func TestResolvePresentation_SeverityColor(t *testing.T) {
	t.Parallel()

	a := &domain.PublicAlert{ID: uuid.New(), Gravidade: domain.SeverityCritical}
	if p := service.ResolvePresentation(a, service.PresentationDefaults{}); p.Color != "#B71C1C" {
		t.Fatalf("critical color: got %q", p.Color)
	}
}

func TestResolvePresentation_LocalityInBody(t *testing.T) {
	t.Parallel()

	a := &domain.PublicAlert{
		ID:     uuid.New(),
		Bairro: "Centro",
		Cidade: "Horizonte",
		UF:     "CE",
	}
	p := service.ResolvePresentation(a, service.PresentationDefaults{})

	if p.Locality != "Centro, Horizonte/CE" {
		t.Fatalf("locality: got %q", p.Locality)
	}
	if want := "Ocorrência registrada em Centro, Horizonte/CE. Toque para ver os detalhes."; p.Body != want {
		t.Fatalf("body: got %q", p.Body)
	}
}
