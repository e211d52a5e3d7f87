package repository

import (
	"context"
	"errors"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
)

type batchProducer interface {
	PublishBatch(ctx context.Context, messages []pkgkafka.Message) error
}

// KafkaAlertPublisher writes alert events keyed by symbol.
type KafkaAlertPublisher struct {
	producer batchProducer
}

func NewKafkaAlertPublisher(producer *pkgkafka.Producer) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer}
}

var _ domrepo.AlertPublisher = (*KafkaAlertPublisher)(nil)

func (p *KafkaAlertPublisher) PublishTriggered(ctx context.Context, events []models.AlertEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(events))
	for i, ev := range events {
		msgs[i] = pkgkafka.Message{Key: []byte(ev.Alert.Symbol), Type: ev.Type, Value: ev}
	}
	return p.producer.PublishBatch(ctx, msgs)
}

// MultiPublisher fans events out to every publisher. One failing sink does not stop the others.
type MultiPublisher struct {
	publishers []domrepo.AlertPublisher
	logger     *applogger.Logger
}

func NewMultiPublisher(logger *applogger.Logger, publishers ...domrepo.AlertPublisher) *MultiPublisher {
	out := make([]domrepo.AlertPublisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			out = append(out, p)
		}
	}
	return &MultiPublisher{publishers: out, logger: logger}
}

var _ domrepo.AlertPublisher = (*MultiPublisher)(nil)

func (m *MultiPublisher) PublishTriggered(ctx context.Context, events []models.AlertEvent) error {
	if len(events) == 0 {
		return nil
	}
	var errs []error
	for _, p := range m.publishers {
		if err := p.PublishTriggered(ctx, events); err != nil {
			m.logger.Warn("Alert publish failed",
				applogger.Int("events", len(events)),
				applogger.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
