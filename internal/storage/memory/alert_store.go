package memory

import (
	"context"
	"sort"
	"sync"

	"alpha-radar/internal/domain"
	"alpha-radar/internal/storage"
)

// AlertStore is an in-memory implementation of storage.AlertStore.
type AlertStore struct {
	mu     sync.RWMutex
	alerts []*domain.AlertRecord
}

// NewAlertStore creates a new in-memory alert store.
func NewAlertStore() *AlertStore {
	return &AlertStore{}
}

// Compile-time interface check.
var _ storage.AlertStore = (*AlertStore)(nil)

// Append implements storage.AlertStore.
func (s *AlertStore) Append(_ context.Context, a *domain.AlertRecord) error {
	if a == nil || a.Contract == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	alertCopy := *a
	s.alerts = append(s.alerts, &alertCopy)
	return nil
}

// GetByContract implements storage.AlertStore.
func (s *AlertStore) GetByContract(_ context.Context, contract string, limit int) ([]*domain.AlertRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AlertRecord
	for _, a := range s.alerts {
		if a.Contract == contract {
			alertCopy := *a
			result = append(result, &alertCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].AlertedAt.After(result[j].AlertedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// All returns every stored alert in append order (test helper).
func (s *AlertStore) All() []*domain.AlertRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.AlertRecord, 0, len(s.alerts))
	for _, a := range s.alerts {
		alertCopy := *a
		result = append(result, &alertCopy)
	}
	return result
}
