// Package directory holds the in-memory activity store.
package directory

import (
	"context"
	"fmt"
	"sync"

	"example.com/signup/internal/domain"
	"example.com/signup/internal/observability"
)

// Memory keeps activities in process memory for the lifetime of the service.
// A single lock guards the whole directory.
type Memory struct {
	mu         sync.RWMutex
	activities map[string]*domain.Activity
	order      []string
}

var _ domain.Directory = (*Memory)(nil)

// NewMemory builds a directory seeded with activities. The slice order is the
// order List reports them in.
func NewMemory(activities []domain.Activity) (*Memory, error) {
	m := &Memory{
		activities: make(map[string]*domain.Activity, len(activities)),
		order:      make([]string, 0, len(activities)),
	}
	for _, a := range activities {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if _, dup := m.activities[a.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate activity name %q", domain.ErrInvalidActivity, a.Name)
		}
		seeded := a.Clone()
		m.activities[a.Name] = &seeded
		m.order = append(m.order, a.Name)
		observability.SetRosterSize(a.Name, len(seeded.Participants))
	}
	return m, nil
}

// List implements domain.Directory.
func (m *Memory) List(ctx context.Context) ([]domain.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Activity, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.activities[name].Clone())
	}
	return out, nil
}

// Get implements domain.Directory.
func (m *Memory) Get(ctx context.Context, name string) (domain.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.activities[name]
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	return a.Clone(), nil
}

// Enroll implements domain.Directory.
func (m *Memory) Enroll(ctx context.Context, name, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.activities[name]
	if !ok {
		return domain.ErrActivityNotFound
	}
	if a.HasParticipant(email) {
		return domain.ErrAlreadyRegistered
	}
	a.Participants = append(a.Participants, email)
	observability.SetRosterSize(name, len(a.Participants))
	return nil
}

// Withdraw implements domain.Directory.
func (m *Memory) Withdraw(ctx context.Context, name, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.activities[name]
	if !ok {
		return domain.ErrActivityNotFound
	}
	idx := -1
	for i, p := range a.Participants {
		if p == email {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrNotRegistered
	}
	a.Participants = append(a.Participants[:idx], a.Participants[idx+1:]...)
	observability.SetRosterSize(name, len(a.Participants))
	return nil
}
