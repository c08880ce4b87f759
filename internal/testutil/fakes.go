package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dalemusser/ejchub/internal/app/store/docstore"
	userstore "github.com/dalemusser/ejchub/internal/app/store/users"
	"github.com/dalemusser/ejchub/internal/app/system/normalize"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/google/uuid"
)

// ErrInjected is returned by fakes configured to fail a write.
var ErrInjected = errors.New("injected write failure")

// MemUsers is an in-memory users store with the same contract as
// store/users. Set ListErr / FailPutOn to inject failures.
type MemUsers struct {
	mu        sync.Mutex
	docs      map[string]models.User
	ListErr   error
	FailPutOn string
	PutErr    error
}

// NewMemUsers returns a store seeded with users.
func NewMemUsers(users ...models.User) *MemUsers {
	m := &MemUsers{docs: map[string]models.User{}}
	for _, u := range users {
		u.Username = normalize.Username(u.Username)
		m.docs[u.ID] = u
	}
	return m
}

func (m *MemUsers) List(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.User, 0, len(m.docs))
	for _, u := range m.docs {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.docs[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return &u, nil
}

func (m *MemUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := normalize.Username(username)
	for _, u := range m.docs {
		if u.Username == key {
			return &u, nil
		}
	}
	return nil, docstore.ErrNotFound
}

func (m *MemUsers) usernameTaken(u models.User) bool {
	for id, other := range m.docs {
		if id != u.ID && other.Username == u.Username {
			return true
		}
	}
	return false
}

func (m *MemUsers) Put(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	if m.FailPutOn != "" && m.FailPutOn == u.ID {
		return ErrInjected
	}
	u.Username = normalize.Username(u.Username)
	if m.usernameTaken(u) {
		return userstore.ErrDuplicateUsername
	}
	u.LegacyPassword = ""
	m.docs[u.ID] = u
	return nil
}

func (m *MemUsers) Create(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Username = normalize.Username(u.Username)
	if _, exists := m.docs[u.ID]; exists || m.usernameTaken(u) {
		return userstore.ErrDuplicateUsername
	}
	m.docs[u.ID] = u
	return nil
}

func (m *MemUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return docstore.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *MemUsers) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.docs)), nil
}

// MemRegistrations is an in-memory registrations store.
type MemRegistrations struct {
	mu        sync.Mutex
	docs      map[string]models.Registration
	ListErr   error
	FailPutOn string
}

// NewMemRegistrations returns a store seeded with regs.
func NewMemRegistrations(regs ...models.Registration) *MemRegistrations {
	m := &MemRegistrations{docs: map[string]models.Registration{}}
	for _, r := range regs {
		m.docs[r.ID] = r
	}
	return m
}

func (m *MemRegistrations) List(context.Context) ([]models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.Registration, 0, len(m.docs))
	for _, r := range m.docs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemRegistrations) GetByID(_ context.Context, id string) (*models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.docs[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return &r, nil
}

func (m *MemRegistrations) Put(_ context.Context, r models.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPutOn != "" && m.FailPutOn == r.ID {
		return ErrInjected
	}
	m.docs[r.ID] = r
	return nil
}

func (m *MemRegistrations) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return docstore.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *MemRegistrations) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.docs)), nil
}

// MemLogs is an in-memory activity log.
type MemLogs struct {
	mu      sync.Mutex
	entries []models.UserLog
	ListErr error
	AddErr  error
}

// NewMemLogs returns a log seeded with entries.
func NewMemLogs(entries ...models.UserLog) *MemLogs {
	return &MemLogs{entries: append([]models.UserLog(nil), entries...)}
}

func (m *MemLogs) Add(_ context.Context, e models.UserLog) (models.UserLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddErr != nil {
		return models.UserLog{}, m.AddErr
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *MemLogs) List(_ context.Context, limit int64) ([]models.UserLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := append([]models.UserLog(nil), m.entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []models.UserLog{}
	}
	return out, nil
}

func (m *MemLogs) CountSince(_ context.Context, since int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, e := range m.entries {
		if e.Timestamp >= since {
			n++
		}
	}
	return n, nil
}

// Actions returns the recorded actions in insertion order.
func (m *MemLogs) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}
