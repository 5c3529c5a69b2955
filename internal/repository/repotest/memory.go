// Package repotest provides in-memory repositories for handler and service tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/suteetoe/tenantgate/internal/model"
	"github.com/suteetoe/tenantgate/internal/repository"
)

// Store holds companies, logs and meta users behind one mutex so that
// deleting a company can drop its logs like the foreign key does.
type Store struct {
	mu        sync.Mutex
	companies map[uint]model.Company
	logs      []model.Log
	metaUsers map[string]model.MetaUser
	nextID    uint
	now       func() time.Time

	// Err, when set, is returned by every call
	Err error
}

// NewStore creates an empty store whose clock advances one second per write,
// keeping ordering by timestamp deterministic.
func NewStore() *Store {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	return &Store{
		companies: make(map[uint]model.Company),
		metaUsers: make(map[string]model.MetaUser),
		now: func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		},
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

// Tenants returns the store as a TenantRepository
func (s *Store) Tenants() *TenantRepository { return &TenantRepository{s} }

// Logs returns the store as a LogRepository
func (s *Store) Logs() *LogRepository { return &LogRepository{s} }

// MetaUsers returns the store as a MetaUserRepository
func (s *Store) MetaUsers() *MetaUserRepository { return &MetaUserRepository{s} }

// AllLogs returns a copy of every stored log row in insertion order
func (s *Store) AllLogs() []model.Log {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Log(nil), s.logs...)
}

type TenantRepository struct{ s *Store }

var _ repository.TenantRepository = (*TenantRepository)(nil)

func (r *TenantRepository) List(ctx context.Context) ([]model.Company, error) {
	all, err := r.sorted()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return all, nil
}

func (r *TenantRepository) ListActive(ctx context.Context) ([]model.Company, error) {
	all, err := r.sorted()
	if err != nil {
		return nil, err
	}
	active := all[:0]
	for _, c := range all {
		if c.IsActive() {
			active = append(active, c)
		}
	}
	return active, nil
}

// sorted returns companies ordered by created_at then id, ascending
func (r *TenantRepository) sorted() ([]model.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	all := make([]model.Company, 0, len(r.s.companies))
	for _, c := range r.s.companies {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

func (r *TenantRepository) FindByID(ctx context.Context, id uint) (*model.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	c, ok := r.s.companies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *TenantRepository) FindByDomain(ctx context.Context, domain string) (*model.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	for _, c := range r.s.companies {
		if c.Domain == domain {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *TenantRepository) Create(ctx context.Context, company *model.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if r.domainTaken(company.Domain, 0) {
		return repository.ErrDuplicateDomain
	}

	if company.Status == "" {
		company.Status = model.StatusActive
	}
	now := r.s.now()
	company.ID = r.s.id()
	company.CreatedAt = now
	company.UpdatedAt = now
	r.s.companies[company.ID] = *company
	return nil
}

func (r *TenantRepository) Update(ctx context.Context, company *model.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	current, ok := r.s.companies[company.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.domainTaken(company.Domain, company.ID) {
		return repository.ErrDuplicateDomain
	}

	company.CreatedAt = current.CreatedAt
	company.UpdatedAt = r.s.now()
	r.s.companies[company.ID] = *company
	return nil
}

func (r *TenantRepository) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	if _, ok := r.s.companies[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.companies, id)

	kept := r.s.logs[:0]
	for _, l := range r.s.logs {
		if l.CompanyID != id {
			kept = append(kept, l)
		}
	}
	r.s.logs = kept
	return nil
}

// domainTaken must be called with the lock held
func (r *TenantRepository) domainTaken(domain string, except uint) bool {
	for id, c := range r.s.companies {
		if id != except && c.Domain == domain {
			return true
		}
	}
	return false
}

type LogRepository struct{ s *Store }

var _ repository.LogRepository = (*LogRepository)(nil)

func (r *LogRepository) Create(ctx context.Context, entry *model.Log) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	entry.ID = r.s.id()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.s.now()
	}
	r.s.logs = append(r.s.logs, *entry)
	return nil
}

func (r *LogRepository) ListRecent(ctx context.Context, companyID uint, limit int) ([]model.Log, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	var out []model.Log
	for _, l := range r.s.logs {
		if l.CompanyID == companyID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type MetaUserRepository struct{ s *Store }

var _ repository.MetaUserRepository = (*MetaUserRepository)(nil)

func (r *MetaUserRepository) FirstOrCreate(ctx context.Context, username, password string) (*model.MetaUser, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, false, r.s.Err
	}

	if u, ok := r.s.metaUsers[username]; ok {
		return &u, false, nil
	}
	now := r.s.now()
	u := model.MetaUser{ID: r.s.id(), Username: username, Password: password, CreatedAt: now, UpdatedAt: now}
	r.s.metaUsers[username] = u
	return &u, true, nil
}
