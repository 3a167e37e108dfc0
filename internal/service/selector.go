package service

import (
	"context"

	"vigia/internal/domain"
	"vigia/internal/geo"
)

// RecipientStore is the device lookup side the selectors need.
type RecipientStore interface {
	FindByCEP(ctx context.Context, cep, channel string) ([]domain.Recipient, error)
	FindByTiles(ctx context.Context, tiles []string, channel string) ([]domain.Recipient, error)
}

// RecipientSelector resolves who should receive an alert. One interface,
// two strategies: postal code for public incidents, geo tiles for missing
// person cases.
type RecipientSelector interface {
	Select(ctx context.Context, alert *domain.PublicAlert, radiusM float64) ([]domain.Recipient, error)
	Name() string
}

type byPostalCode struct {
	store RecipientStore
}

func NewPostalCodeSelector(store RecipientStore) RecipientSelector {
	return &byPostalCode{store: store}
}

func (s *byPostalCode) Name() string { return "byPostalCode" }

func (s *byPostalCode) Select(ctx context.Context, alert *domain.PublicAlert, _ float64) ([]domain.Recipient, error) {
	if alert.CEP == "" {
		return nil, nil
	}
	return s.store.FindByCEP(ctx, alert.CEP, "publicAlerts")
}

type byGeoTile struct {
	store RecipientStore
}

func NewGeoTileSelector(store RecipientStore) RecipientSelector {
	return &byGeoTile{store: store}
}

func (s *byGeoTile) Name() string { return "byGeoTile" }

func (s *byGeoTile) Select(ctx context.Context, alert *domain.PublicAlert, radiusM float64) ([]domain.Recipient, error) {
	if !alert.HasFiniteCoords() {
		return nil, nil
	}
	tiles := geo.TilesForRadiusM(*alert.Lat, *alert.Lng, radiusM)
	return s.store.FindByTiles(ctx, tiles, "missingAlerts")
}

// SelectorFor picks the strategy per alert category.
func SelectorFor(kind domain.AlertKind, store RecipientStore) RecipientSelector {
	if kind == domain.KindMissingPerson {
		return NewGeoTileSelector(store)
	}
	return NewPostalCodeSelector(store)
}
