package service_test

import (
	"context"
	"errors"
	"testing"

	"vigia/internal/domain"
	"vigia/internal/service"
	"vigia/pkg/e"
)

type fakeDeviceStore struct {
	existing  *domain.Device
	upserted  *domain.Device
	upsertErr error
}

func (f *fakeDeviceStore) Upsert(_ context.Context, d *domain.Device) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = d
	return nil
}

func (f *fakeDeviceStore) Get(_ context.Context, _ string) (*domain.Device, error) {
	if f.existing == nil {
		return nil, e.ErrNotFound
	}
	return f.existing, nil
}

type fakeTopicManager struct {
	failTopics   map[string]bool
	subscribed   []string
	unsubscribed []string
}

func (f *fakeTopicManager) SubscribeToTopic(_ context.Context, _, topic string) error {
	if f.failTopics[topic] {
		return errors.New("iid error")
	}
	f.subscribed = append(f.subscribed, topic)
	return nil
}

func (f *fakeTopicManager) UnsubscribeFromTopic(_ context.Context, _, topic string) error {
	f.unsubscribed = append(f.unsubscribed, topic)
	return nil
}

const validFCMToken = "cQ7xKzW0123456789abcdef:APA91bSampleSampleSampleSampleSampleSampleSampleSampleSampleSampleSampleSampleSampleSampleSampleSampleXYZ"

func TestRegister_MissingUserID(t *testing.T) {
	t.Parallel()

	svc := service.NewRegistryService(&fakeDeviceStore{}, &fakeTopicManager{}, newTestLogger())
	_, err := svc.Register(context.Background(), domain.RegisterDeviceRequest{DeviceID: "d-1"})
	if !errors.Is(err, e.ErrUserIDRequired) {
		t.Fatalf("expected ErrUserIDRequired, got %v", err)
	}
}

func TestRegister_MissingDeviceID(t *testing.T) {
	t.Parallel()

	svc := service.NewRegistryService(&fakeDeviceStore{}, &fakeTopicManager{}, newTestLogger())
	_, err := svc.Register(context.Background(), domain.RegisterDeviceRequest{UserID: "u-1"})
	if !errors.Is(err, e.ErrDeviceIDRequired) {
		t.Fatalf("expected ErrDeviceIDRequired, got %v", err)
	}
}

func TestRegister_DerivesTilesAndSubscribes(t *testing.T) {
	t.Parallel()

	store := &fakeDeviceStore{}
	topics := &fakeTopicManager{}
	svc := service.NewRegistryService(store, topics, newTestLogger())

	token := validFCMToken
	resp, err := svc.Register(context.Background(), domain.RegisterDeviceRequest{
		UserID:   "u-1",
		DeviceID: "d-1",
		Platform: "android",
		FCMToken: &token,
		Lat:      floatPtr(-4.1),
		Lng:      floatPtr(-38.48),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if !resp.OK || resp.DeviceID != "d-1" || resp.UserID != "u-1" {
		t.Fatalf("response: %+v", resp)
	}
	if len(resp.Tiles) != 9 {
		t.Fatalf("expected 9 derived tiles, got %d", len(resp.Tiles))
	}
	if len(resp.Subscribed) != 9 {
		t.Fatalf("expected 9 subscribed topics, got %d", len(resp.Subscribed))
	}
	if store.upserted == nil || store.upserted.FCMToken == nil {
		t.Fatalf("device not upserted with token")
	}
	if !store.upserted.Active {
		t.Fatalf("registered device must be active")
	}
}

func TestRegister_PartialSubscribeFailureIsStillSuccess(t *testing.T) {
	t.Parallel()

	store := &fakeDeviceStore{}
	topics := &fakeTopicManager{failTopics: map[string]bool{"t_-82_-770": true}}
	svc := service.NewRegistryService(store, topics, newTestLogger())

	token := validFCMToken
	resp, err := svc.Register(context.Background(), domain.RegisterDeviceRequest{
		UserID:   "u-1",
		DeviceID: "d-1",
		FCMToken: &token,
		Lat:      floatPtr(-4.1),
		Lng:      floatPtr(-38.48),
	})
	if err != nil {
		t.Fatalf("partial subscribe failure must not fail registration: %v", err)
	}
	if len(resp.Subscribed) != 8 {
		t.Fatalf("expected 8 successful subscriptions, got %d", len(resp.Subscribed))
	}
}

func TestRegister_MalformedTokensStoredAsNull(t *testing.T) {
	t.Parallel()

	store := &fakeDeviceStore{}
	topics := &fakeTopicManager{}
	svc := service.NewRegistryService(store, topics, newTestLogger())

	badFCM := "short-token"
	badExpo := "not-expo"
	resp, err := svc.Register(context.Background(), domain.RegisterDeviceRequest{
		UserID:    "u-1",
		DeviceID:  "d-1",
		FCMToken:  &badFCM,
		ExpoToken: &badExpo,
		Tiles:     []string{"t_1_1"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if store.upserted.FCMToken != nil || store.upserted.ExpoToken != nil {
		t.Fatalf("malformed tokens must be stored as null: %+v", store.upserted)
	}
	// no valid FCM token, so no topic subscriptions
	if len(resp.Subscribed) != 0 {
		t.Fatalf("expected no subscriptions, got %v", resp.Subscribed)
	}
}

func TestRegister_TileChangeUnsubscribesStaleTopics(t *testing.T) {
	t.Parallel()

	token := validFCMToken
	store := &fakeDeviceStore{
		existing: &domain.Device{
			DeviceID: "d-1",
			UserID:   "u-1",
			Tiles:    []string{"t_0_0", "t_0_1"},
		},
	}
	topics := &fakeTopicManager{}
	svc := service.NewRegistryService(store, topics, newTestLogger())

	_, err := svc.Register(context.Background(), domain.RegisterDeviceRequest{
		UserID:   "u-1",
		DeviceID: "d-1",
		FCMToken: &token,
		Tiles:    []string{"t_0_1", "t_0_2"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if len(topics.unsubscribed) != 1 || topics.unsubscribed[0] != "t_0_0" {
		t.Fatalf("expected unsubscribe from t_0_0, got %v", topics.unsubscribed)
	}
}

func TestRegister_TokenRefreshWithoutLocation_KeepsTiles(t *testing.T) {
	t.Parallel()

	token := validFCMToken
	store := &fakeDeviceStore{
		existing: &domain.Device{
			DeviceID: "d-1",
			UserID:   "u-1",
			Tiles:    []string{"t_0_0", "t_0_1"},
		},
	}
	topics := &fakeTopicManager{}
	svc := service.NewRegistryService(store, topics, newTestLogger())

	resp, err := svc.Register(context.Background(), domain.RegisterDeviceRequest{
		UserID:   "u-1",
		DeviceID: "d-1",
		FCMToken: &token,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if len(store.upserted.Tiles) != 2 {
		t.Fatalf("token refresh must not wipe the tile set, stored: %v", store.upserted.Tiles)
	}
	if len(resp.Tiles) != 2 {
		t.Fatalf("expected previous tiles in response, got %v", resp.Tiles)
	}
	if len(topics.unsubscribed) != 0 {
		t.Fatalf("placement unchanged, nothing to unsubscribe: %v", topics.unsubscribed)
	}
	if len(resp.Subscribed) != 2 {
		t.Fatalf("expected both tile topics resubscribed, got %v", resp.Subscribed)
	}
}

func TestRegister_NoLocation_EmptyTilesArray(t *testing.T) {
	t.Parallel()

	store := &fakeDeviceStore{}
	svc := service.NewRegistryService(store, &fakeTopicManager{}, newTestLogger())

	resp, err := svc.Register(context.Background(), domain.RegisterDeviceRequest{
		UserID:   "u-1",
		DeviceID: "d-1",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.Tiles == nil || len(resp.Tiles) != 0 {
		t.Fatalf("tiles must be an empty array, got %#v", resp.Tiles)
	}
}

func TestRegister_UpsertFailure_SurfacesInternalError(t *testing.T) {
	t.Parallel()

	store := &fakeDeviceStore{upsertErr: e.ErrInternal}
	svc := service.NewRegistryService(store, &fakeTopicManager{}, newTestLogger())

	_, err := svc.Register(context.Background(), domain.RegisterDeviceRequest{
		UserID:   "u-1",
		DeviceID: "d-1",
	})
	if !errors.Is(err, e.ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}
