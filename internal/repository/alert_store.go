package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"StockPulse/internal/domain"
	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	applogger "StockPulse/pkg/logger"
)

// AlertsKey is the storage key of the alert collection.
const AlertsKey = "alerts"

// AlertStore keeps the alert collection in a KVStore. Mutations are serialized.
type AlertStore struct {
	mu     sync.Mutex
	kv     domrepo.KVStore
	logger *applogger.Logger
	now    func() time.Time
	newID  func() string
}

func NewAlertStore(kv domrepo.KVStore, logger *applogger.Logger) *AlertStore {
	return &AlertStore{
		kv:     kv,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

var _ domrepo.AlertRepository = (*AlertStore)(nil)

func (s *AlertStore) List(ctx context.Context) (models.Alerts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx), nil
}

// Add creates an untriggered alert and puts it at the front of the collection.
func (s *AlertStore) Add(ctx context.Context, symbol string, cond models.AlertCondition, target float64) (models.Alert, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return models.Alert{}, domain.NewValidationError("symbol", "Symbol is required.")
	}
	if !cond.Valid() {
		return models.Alert{}, domain.NewValidationError("condition", "Condition must be above or below.")
	}
	if target <= 0 {
		return models.Alert{}, domain.NewValidationError("target", "Target must be a positive number.")
	}

	alert := models.Alert{
		ID:        s.newID(),
		Symbol:    symbol,
		Condition: cond,
		Target:    target,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.load(ctx).Prepend(alert)
	if err := SaveJSON(ctx, s.kv, AlertsKey, next); err != nil {
		return models.Alert{}, err
	}
	return alert, nil
}

func (s *AlertStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.load(ctx).Remove(id)
	if !ok {
		return domain.ErrNotFound
	}
	return SaveJSON(ctx, s.kv, AlertsKey, next)
}

// Reset re-arms the alert with id.
func (s *AlertStore) Reset(ctx context.Context, id string) (models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.load(ctx).Update(id, models.Alert.Reset)
	if !ok {
		return models.Alert{}, domain.ErrNotFound
	}
	if err := SaveJSON(ctx, s.kv, AlertsKey, next); err != nil {
		return models.Alert{}, err
	}
	alert, _ := next.Find(id)
	return alert, nil
}

func (s *AlertStore) Apply(ctx context.Context, fn func(models.Alerts) models.Alerts) (models.Alerts, models.Alerts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.load(ctx)
	next := fn(prev)
	if err := SaveJSON(ctx, s.kv, AlertsKey, next); err != nil {
		return prev, prev, err
	}
	return prev, next, nil
}

// load drops entries that cannot be valid alerts.
func (s *AlertStore) load(ctx context.Context) models.Alerts {
	stored := LoadJSON(ctx, s.kv, AlertsKey, models.Alerts{}, s.logger)
	out := make(models.Alerts, 0, len(stored))
	for _, a := range stored {
		if a.ID == "" || a.Symbol == "" || !a.Condition.Valid() {
			continue
		}
		out = append(out, a)
	}
	return out
}
