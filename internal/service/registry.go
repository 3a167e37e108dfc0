package service

import (
	"context"
	"errors"
	"log/slog"

	"vigia/internal/domain"
	"vigia/internal/geo"
	"vigia/internal/metrics"
	"vigia/internal/push"
	"vigia/pkg/e"
)

// DeviceStore is the persistence the registry needs.
type DeviceStore interface {
	Upsert(ctx context.Context, d *domain.Device) error
	Get(ctx context.Context, deviceID string) (*domain.Device, error)
}

type registryService struct {
	store  DeviceStore
	topics push.TopicManager
	logger *slog.Logger
}

func NewRegistryService(store DeviceStore, topics push.TopicManager, logger *slog.Logger) DeviceRegistryService {
	return &registryService{
		store:  store,
		topics: topics,
		logger: logger,
	}
}

var defaultOptIn = map[string]bool{
	"publicAlerts":  true,
	"missingAlerts": true,
}

// Register upserts the device keyed by deviceId, recomputes its tile set and
// reconciles FCM tile-topic subscriptions. Subscription failures for
// individual tiles are logged and swallowed; partial success is success.
func (s *registryService) Register(ctx context.Context, req domain.RegisterDeviceRequest) (domain.RegisterDeviceResponse, error) {
	if req.UserID == "" {
		return domain.RegisterDeviceResponse{}, e.ErrUserIDRequired
	}
	if req.DeviceID == "" {
		return domain.RegisterDeviceResponse{}, e.ErrDeviceIDRequired
	}

	tiles := req.Tiles
	if len(tiles) == 0 && req.Lat != nil && req.Lng != nil {
		tiles = geo.TilesForRadius(*req.Lat, *req.Lng)
	}

	var oldTiles []string
	optIn := defaultOptIn
	if old, err := s.store.Get(ctx, req.DeviceID); err == nil {
		oldTiles = old.Tiles
		if len(old.OptIn) > 0 {
			optIn = old.OptIn
		}
	} else if !errors.Is(err, e.ErrNotFound) {
		s.logger.Warn("lookup of previous registration failed",
			slog.String("device_id", req.DeviceID),
			slog.Any("error", err),
		)
	}

	// a token refresh without location keeps the previous placement
	if len(tiles) == 0 {
		tiles = oldTiles
	}
	if tiles == nil {
		tiles = []string{}
	}

	device := &domain.Device{
		UserID:    req.UserID,
		DeviceID:  req.DeviceID,
		Platform:  req.Platform,
		FCMToken:  push.NormalizeFCMToken(req.FCMToken),
		ExpoToken: push.NormalizeExpoToken(req.ExpoToken),
		Lat:       req.Lat,
		Lng:       req.Lng,
		Tiles:     tiles,
		Active:    true,
		OptIn:     optIn,
		CEP:       req.CEP,
	}

	if err := s.store.Upsert(ctx, device); err != nil {
		s.logger.Error("device upsert failed",
			slog.String("device_id", req.DeviceID),
			slog.Any("error", err),
		)
		return domain.RegisterDeviceResponse{}, e.Wrap("registry.Register", err)
	}
	metrics.DevicesRegistered.Inc()

	subscribed := s.reconcileTopics(ctx, device, oldTiles)

	return domain.RegisterDeviceResponse{
		OK:         true,
		DeviceID:   device.DeviceID,
		UserID:     device.UserID,
		Tiles:      tiles,
		Subscribed: subscribed,
	}, nil
}

// reconcileTopics subscribes the FCM token to every current tile topic and
// drops subscriptions for tiles the device has left. All best-effort: a
// failed (un)subscribe never blocks the registration response.
func (s *registryService) reconcileTopics(ctx context.Context, device *domain.Device, oldTiles []string) []string {
	if device.FCMToken == nil {
		return []string{}
	}

	subscribed := make([]string, 0, len(device.Tiles))
	for _, tile := range device.Tiles {
		if err := s.topics.SubscribeToTopic(ctx, *device.FCMToken, tile); err != nil {
			s.logger.Warn("tile topic subscribe failed",
				slog.String("device_id", device.DeviceID),
				slog.String("topic", tile),
				slog.Any("error", err),
			)
			continue
		}
		subscribed = append(subscribed, tile)
	}

	diff := geo.DiffTileSubscriptions(oldTiles, device.Tiles)
	for _, tile := range diff.ToUnsubscribe {
		if err := s.topics.UnsubscribeFromTopic(ctx, *device.FCMToken, tile); err != nil {
			s.logger.Warn("tile topic unsubscribe failed",
				slog.String("device_id", device.DeviceID),
				slog.String("topic", tile),
				slog.Any("error", err),
			)
		}
	}

	return subscribed
}
