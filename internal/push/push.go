// Package push wraps the two push transports (FCM and the Expo push API)
// behind explicit result types. Individual send failures are values, not
// errors: callers aggregate them into delivery counts.
package push

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// MaxBatchSize is the per-call token limit shared by both transports.
const MaxBatchSize = 100

var ErrTransportDisabled = errors.New("push transport disabled")

// Payload is the transport-neutral notification content. Data values must
// already be strings; FCM rejects non-string data fields.
type Payload struct {
	Title     string
	Body      string
	Image     string
	Color     string
	ChannelID string
	Data      map[string]string
}

// SendResult is the outcome of one send. A failed send carries Err for
// logging but is never raised to the orchestrator as fatal.
type SendResult struct {
	OK        bool
	MessageID string
	Err       error
}

// MulticastResult carries call-level aggregate counts only; per-token
// failures are not attributed (token hygiene is a separate concern).
type MulticastResult struct {
	SuccessCount int
	FailureCount int
}

// ExpoBatchResult tallies ticket statuses across all chunks of one batch.
type ExpoBatchResult struct {
	Requested int
	OK        int
	KO        int
}

// ExpoMessage is one message of an Expo batch call.
type ExpoMessage struct {
	To        string            `json:"to"`
	Title     string            `json:"title,omitempty"`
	Body      string            `json:"body,omitempty"`
	TTL       int               `json:"ttl,omitempty"`
	Priority  string            `json:"priority,omitempty"`
	ChannelID string            `json:"channelId,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

//go:generate mockgen -source=push.go -destination=mocks/mock.go

// Dispatcher sends notifications over FCM.
type Dispatcher interface {
	SendToToken(ctx context.Context, token string, p Payload, ttlSeconds int) SendResult
	SendMulticast(ctx context.Context, tokens []string, p Payload, ttlSeconds int) (MulticastResult, error)
	SendToTopic(ctx context.Context, topic string, p Payload, ttlSeconds int) SendResult
}

// TopicManager handles tile-topic membership for FCM tokens.
type TopicManager interface {
	SubscribeToTopic(ctx context.Context, token, topic string) error
	UnsubscribeFromTopic(ctx context.Context, token, topic string) error
}

// ExpoDispatcher sends batches over the Expo push API.
type ExpoDispatcher interface {
	SendBatch(ctx context.Context, messages []ExpoMessage) ExpoBatchResult
}

var expoTokenRe = regexp.MustCompile(`^ExponentPushToken\[[^\]]+\]$`)

// NormalizeFCMToken returns the token when it looks like an FCM registration
// token (long, with the instance-id separator) and nil otherwise. Malformed
// tokens are stored as null rather than rejecting the registration.
func NormalizeFCMToken(token *string) *string {
	if token == nil {
		return nil
	}
	t := strings.TrimSpace(*token)
	if len(t) < 100 || !strings.Contains(t, ":") {
		return nil
	}
	return &t
}

// NormalizeExpoToken keeps only tokens of the ExponentPushToken[...] shape.
func NormalizeExpoToken(token *string) *string {
	if token == nil {
		return nil
	}
	t := strings.TrimSpace(*token)
	if !expoTokenRe.MatchString(t) {
		return nil
	}
	return &t
}
