package domain

import "time"

// Device is one installed app instance, upserted on every registration call.
// Token fields hold nil when the client supplied a value that failed its
// shape heuristic (non-fatal normalization, not a rejection).
type Device struct {
	UserID    string          `json:"user_id"`
	DeviceID  string          `json:"device_id"`
	Platform  string          `json:"platform"`
	FCMToken  *string         `json:"fcm_token"`
	ExpoToken *string         `json:"expo_token"`
	Lat       *float64        `json:"lat"`
	Lng       *float64        `json:"lng"`
	Tiles     []string        `json:"tiles"`
	Active    bool            `json:"active"`
	OptIn     map[string]bool `json:"opt_in"`
	CEP       string          `json:"cep"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Recipient is the dispatch view of a device: just the tokens an alert wave
// can be delivered to.
type Recipient struct {
	DeviceID  string
	FCMToken  *string
	ExpoToken *string
}

// HasToken reports whether at least one transport can reach this recipient.
func (r Recipient) HasToken() bool {
	return r.FCMToken != nil || r.ExpoToken != nil
}
