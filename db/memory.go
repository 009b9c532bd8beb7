package db

import (
	"context"
	"sync"

	"github.com/techagentng/healthtrack/models"
)

// MemoryStore keeps everything for the lifetime of the process.
type MemoryStore struct {
	mu        sync.RWMutex
	user      models.User
	reports   []models.Report
	hospitals []models.Hospital
}

// NewMemoryStore constructs a MemoryStore holding a copy of seed.
func NewMemoryStore(seed models.Seed) *MemoryStore {
	return &MemoryStore{
		user:      seed.User,
		reports:   append([]models.Report(nil), seed.Reports...),
		hospitals: append([]models.Hospital(nil), seed.Hospitals...),
	}
}

func (m *MemoryStore) User(ctx context.Context) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user, nil
}

func (m *MemoryStore) SetPhone(ctx context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user.Phone = phone
	return nil
}

func (m *MemoryStore) Reports(ctx context.Context) ([]models.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Report(nil), m.reports...), nil
}

func (m *MemoryStore) Report(ctx context.Context, id int) (models.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Report{}, ErrReportNotFound
}

func (m *MemoryStore) AddReport(ctx context.Context, r *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == 0 {
		r.ID = nextID(m.reports)
	}
	m.reports = append([]models.Report{*r}, m.reports...)
	return nil
}

func (m *MemoryStore) Hospitals(ctx context.Context) ([]models.Hospital, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Hospital(nil), m.hospitals...), nil
}

func (m *MemoryStore) Close() error {
	return nil
}
