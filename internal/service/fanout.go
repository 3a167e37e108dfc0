package service

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"

	"vigia/internal/domain"
	"vigia/internal/metrics"
	"vigia/internal/push"
	"vigia/pkg/e"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type AlertStore interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.PublicAlert, error)
}

type DeliveryStore interface {
	Insert(ctx context.Context, entry *domain.DeliveryLogEntry) error
}

// Claims is the idempotency gate checked before dispatch.
type Claims interface {
	Claim(ctx context.Context, alertID uuid.UUID) (bool, error)
}

// FanoutOptions carries the orchestrator tunables taken from config.
type FanoutOptions struct {
	BatchSize         int
	DefaultTTLSeconds int
	DefaultRadiusM    float64
}

// FanoutOrchestrator runs one alert through
// RESOLVE_PRESENTATION -> SELECT_RECIPIENTS -> DISPATCH -> AUDIT.
// Sends within a batch run concurrently; batches run sequentially.
type FanoutOrchestrator struct {
	alerts     AlertStore
	devices    RecipientStore
	deliveries DeliveryStore
	claims     Claims
	fcm        push.Dispatcher
	expo       push.ExpoDispatcher
	logger     *slog.Logger
	batchSize  int
	defaults   PresentationDefaults
}

func NewFanoutOrchestrator(
	alerts AlertStore,
	devices RecipientStore,
	deliveries DeliveryStore,
	claims Claims,
	fcm push.Dispatcher,
	expo push.ExpoDispatcher,
	logger *slog.Logger,
	opts FanoutOptions,
) *FanoutOrchestrator {
	if opts.BatchSize < 1 || opts.BatchSize > push.MaxBatchSize {
		opts.BatchSize = push.MaxBatchSize
	}
	return &FanoutOrchestrator{
		alerts:     alerts,
		devices:    devices,
		deliveries: deliveries,
		claims:     claims,
		fcm:        fcm,
		expo:       expo,
		logger:     logger,
		batchSize:  opts.BatchSize,
		defaults: PresentationDefaults{
			TTLSeconds: opts.DefaultTTLSeconds,
			RadiusM:    opts.DefaultRadiusM,
		},
	}
}

// Process handles one trigger for the given alert. Duplicate triggers lose
// the claim and exit without sending; every processed trigger that reaches
// the alert writes exactly one delivery log entry.
func (o *FanoutOrchestrator) Process(ctx context.Context, alertID uuid.UUID) error {
	log := o.logger.With(slog.String("alert_id", alertID.String()))

	claimed, err := o.claims.Claim(ctx, alertID)
	if err != nil {
		// claim store unavailable: favor delivery over strict dedup
		log.Warn("idempotency claim failed, proceeding", slog.Any("error", err))
	} else if !claimed {
		log.Info("alert already claimed, skipping duplicate trigger")
		metrics.DuplicateTriggers.Inc()
		return e.ErrAlreadyClaimed
	}

	alert, err := o.alerts.Get(ctx, alertID)
	if err != nil {
		log.Error("alert lookup failed", slog.Any("error", err))
		metrics.AlertsProcessed.WithLabelValues("error").Inc()
		return e.Wrap("fanout.Process", err)
	}

	pres := ResolvePresentation(alert, o.defaults)

	if !alert.HasFiniteCoords() {
		log.Warn("alert has no finite coordinates, skipping dispatch")
		return o.audit(ctx, log, alert, pres, 0, 0)
	}

	recipients := o.selectRecipients(ctx, log, alert, pres.RadiusM)
	selected := len(recipients)
	metrics.RecipientsSelected.Add(float64(selected))

	if selected == 0 {
		log.Info("no recipients selected")
		return o.audit(ctx, log, alert, pres, 0, 0)
	}

	payload := buildPayload(alert, pres)
	delivered := 0
	for start := 0; start < selected; start += o.batchSize {
		end := start + o.batchSize
		if end > selected {
			end = selected
		}
		delivered += o.dispatchBatch(ctx, recipients[start:end], payload, pres.TTLSeconds)
	}

	log.Info("fanout dispatched",
		slog.Int("selected", selected),
		slog.Int("delivered", delivered),
		slog.Float64("radius_m", pres.RadiusM),
	)

	return o.audit(ctx, log, alert, pres, selected, delivered)
}

// selectRecipients runs the per-category selector. A lookup failure is
// downgraded to zero recipients so the audit entry is still produced.
func (o *FanoutOrchestrator) selectRecipients(ctx context.Context, log *slog.Logger, alert *domain.PublicAlert, radiusM float64) []domain.Recipient {
	selector := SelectorFor(alert.Kind, o.devices)

	found, err := selector.Select(ctx, alert, radiusM)
	if err != nil {
		log.Error("recipient lookup failed, treating as empty",
			slog.String("selector", selector.Name()),
			slog.Any("error", err),
		)
		return nil
	}

	recipients := found[:0:0]
	for _, r := range found {
		if r.HasToken() {
			recipients = append(recipients, r)
		}
	}
	return recipients
}

// dispatchBatch starts every FCM send of the batch concurrently and waits
// for the whole batch to settle. Expo-only recipients of the batch go out
// as one Expo batch call. Individual failures only lower the tally.
func (o *FanoutOrchestrator) dispatchBatch(ctx context.Context, batch []domain.Recipient, payload push.Payload, ttlSeconds int) int {
	var fcmDelivered atomic.Int64
	expoMessages := make([]push.ExpoMessage, 0)

	g, gctx := errgroup.WithContext(ctx)
	for _, rec := range batch {
		switch {
		case rec.FCMToken != nil:
			token := *rec.FCMToken
			g.Go(func() error {
				res := o.fcm.SendToToken(gctx, token, payload, ttlSeconds)
				if res.OK {
					fcmDelivered.Add(1)
					metrics.PushesSent.WithLabelValues("fcm", "ok").Inc()
				} else {
					metrics.PushesSent.WithLabelValues("fcm", "failed").Inc()
					if res.Err != nil {
						o.logger.Debug("fcm send failed", slog.Any("error", res.Err))
					}
				}
				return nil
			})
		case rec.ExpoToken != nil:
			expoMessages = append(expoMessages, push.ExpoMessage{
				To:        *rec.ExpoToken,
				Title:     payload.Title,
				Body:      payload.Body,
				TTL:       ttlSeconds,
				Priority:  "high",
				ChannelID: payload.ChannelID,
				Data:      payload.Data,
			})
		}
	}
	_ = g.Wait()

	delivered := int(fcmDelivered.Load())

	if len(expoMessages) > 0 {
		res := o.expo.SendBatch(ctx, expoMessages)
		delivered += res.OK
		metrics.PushesSent.WithLabelValues("expo", "ok").Add(float64(res.OK))
		metrics.PushesSent.WithLabelValues("expo", "failed").Add(float64(res.KO))
	}

	return delivered
}

func (o *FanoutOrchestrator) audit(ctx context.Context, log *slog.Logger, alert *domain.PublicAlert, pres domain.Presentation, selected, delivered int) error {
	entry := &domain.DeliveryLogEntry{
		AlertID:   alert.ID,
		Method:    "fcm",
		Selected:  selected,
		Delivered: delivered,
		RadiusM:   pres.RadiusM,
		Kind:      string(alert.Kind),
	}
	if alert.CEP != "" {
		cep := alert.CEP
		entry.CEP = &cep
	}
	if alert.Cidade != "" {
		city := alert.Cidade
		entry.City = &city
	}
	if selected > 0 {
		ttl := pres.TTLSeconds
		entry.TTLSeconds = &ttl
	}

	if err := o.deliveries.Insert(ctx, entry); err != nil {
		log.Error("delivery log write failed", slog.Any("error", err))
		metrics.AlertsProcessed.WithLabelValues("audit_error").Inc()
		return e.Wrap("fanout.audit", err)
	}

	metrics.AlertsProcessed.WithLabelValues("ok").Inc()
	return nil
}

func buildPayload(alert *domain.PublicAlert, pres domain.Presentation) push.Payload {
	data := map[string]string{
		"type":     payloadType(alert.Kind),
		"alertId":  alert.ID.String(),
		"kind":     string(alert.Kind),
		"cidade":   alert.Cidade,
		"uf":       alert.UF,
		"cep":      alert.CEP,
		"radius_m": strconv.FormatFloat(pres.RadiusM, 'f', -1, 64),
		"lat":      strconv.FormatFloat(*alert.Lat, 'f', -1, 64),
		"lng":      strconv.FormatFloat(*alert.Lng, 'f', -1, 64),
	}

	return push.Payload{
		Title:     pres.Title,
		Body:      pres.Body,
		Image:     alert.Image,
		Color:     pres.Color,
		ChannelID: notificationChannel,
		Data:      data,
	}
}

func payloadType(kind domain.AlertKind) string {
	if kind == domain.KindMissingPerson {
		return "missingAlert"
	}
	return "publicAlert"
}
