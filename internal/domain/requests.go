package domain

import "github.com/google/uuid"

// RegisterDeviceRequest is the wire body of POST /devices/register.
// Tokens and coordinates are optional; tiles may be supplied explicitly by
// the client, otherwise they are derived from lat/lng.
type RegisterDeviceRequest struct {
	UserID    string   `json:"userId"`
	DeviceID  string   `json:"deviceId"`
	Platform  string   `json:"platform,omitempty"`
	FCMToken  *string  `json:"fcmToken,omitempty"`
	ExpoToken *string  `json:"expoToken,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	Tiles     []string `json:"tiles,omitempty"`
	CEP       string   `json:"cep,omitempty"`
}

type RegisterDeviceResponse struct {
	OK         bool     `json:"ok"`
	DeviceID   string   `json:"deviceId"`
	UserID     string   `json:"userId"`
	Tiles      []string `json:"tiles"`
	Subscribed []string `json:"subscribed"`
}

type CreateAlertRequest struct {
	Titulo     string   `json:"titulo"`
	Descricao  string   `json:"descricao"`
	Endereco   string   `json:"endereco"`
	Bairro     string   `json:"bairro"`
	Cidade     string   `json:"cidade"`
	UF         string   `json:"uf"`
	CEP        string   `json:"cep"`
	Lat        *float64 `json:"lat" validate:"omitempty,lat"`
	Lng        *float64 `json:"lng" validate:"omitempty,lng"`
	RadiusM    *float64 `json:"radius_m" validate:"omitempty,radius_m"`
	Gravidade  string   `json:"gravidade"`
	Color      string   `json:"color"`
	Image      string   `json:"image"`
	Kind       string   `json:"kind"`
	TTLSeconds *int     `json:"ttlSeconds"`
}

type CreateAlertResponse struct {
	ID uuid.UUID `json:"id"`
}

type ListAlertsRequest struct {
	Page  int `query:"page" validate:"min=1"`
	Limit int `query:"limit" validate:"min=1,max=100"`
}

type ListAlertsResponse struct {
	Alerts []PublicAlert `json:"alerts"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
	Total  int64         `json:"total"`
}

// FanoutJob is what the alert intake enqueues and the worker consumes.
type FanoutJob struct {
	AlertID    uuid.UUID `json:"alert_id"`
	EnqueuedAt int64     `json:"enqueued_at"`
}
