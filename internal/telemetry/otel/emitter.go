package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"smartdisc/backend/internal/events"
)

// NewEventProducer returns an events.Producer that writes throw events as
// OTel log records via the given LoggerProvider. Used when no Kafka brokers
// are configured, so the event stream still lands in the collector. If
// provider is nil, returns a no-op producer.
func NewEventProducer(provider *sdklog.LoggerProvider) events.Producer {
	if provider == nil {
		return noopProducer{}
	}
	return &logProducer{logger: provider.Logger("smartdisc.events")}
}

type noopProducer struct{}

func (noopProducer) Emit(context.Context, *events.Event) error { return nil }

func (noopProducer) Close() error { return nil }

type logProducer struct {
	logger otellog.Logger
}

// Emit converts the event to an OTel log record. Best-effort.
func (p *logProducer) Emit(ctx context.Context, ev *events.Event) error {
	if ev == nil {
		return nil
	}
	rec := otellog.Record{}
	if !ev.OccurredAt.IsZero() {
		rec.SetTimestamp(ev.OccurredAt)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	rec.SetBody(otellog.StringValue(ev.Type))
	rec.AddAttributes(otellog.String("throw_id", ev.ThrowID))
	if ev.DiscID != "" {
		rec.AddAttributes(otellog.String("disc_id", ev.DiscID))
	}
	if ev.PlayerID != "" {
		rec.AddAttributes(otellog.String("player_id", ev.PlayerID))
	}
	if ev.Samples > 0 {
		rec.AddAttributes(otellog.Int("samples", ev.Samples))
	}
	if ev.NewRecord {
		rec.AddAttributes(
			otellog.Bool("new_record", true),
			otellog.String("record_metric", ev.RecordMetric),
		)
	}
	p.logger.Emit(ctx, rec)
	return nil
}

func (p *logProducer) Close() error { return nil }
