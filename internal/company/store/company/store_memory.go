// Package company provides persistence for company records: an in-memory
// store for tests and single-process use, and a PostgreSQL store for
// production.
package company

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"orgbook/internal/company/models"
	"orgbook/pkg/webdomain"

	id "orgbook/pkg/domain"
	"orgbook/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded company store. Domain matching normalizes
// stored values so rows written with un-normalized domains still match.
type InMemory struct {
	mu        sync.RWMutex
	companies map[id.CompanyID]*models.Company
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{companies: make(map[id.CompanyID]*models.Company)}
}

// FindByDomains returns companies in the workspace whose normalized domain
// matches any of the given normalized domains.
func (s *InMemory) FindByDomains(_ context.Context, workspaceID id.WorkspaceID, domains []string) ([]*models.Company, error) {
	wanted := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		wanted[d] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*models.Company
	for _, c := range s.companies {
		if c.WorkspaceID != workspaceID {
			continue
		}
		if _, ok := wanted[webdomain.Normalize(c.Domain)]; ok {
			copied := *c
			matches = append(matches, &copied)
		}
	}
	return matches, nil
}

// MaxPosition returns the highest ordering position in the workspace, or 0
// when the workspace has no companies.
func (s *InMemory) MaxPosition(_ context.Context, workspaceID id.WorkspaceID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var max int64
	for _, c := range s.companies {
		if c.WorkspaceID == workspaceID && c.Position > max {
			max = c.Position
		}
	}
	return max, nil
}

// BulkCreate persists all companies, assigning each a fresh ID. The write is
// all-or-nothing: a duplicate (workspace, domain) pair rejects the whole batch
// with sentinel.ErrConflict, mirroring the Postgres unique index.
func (s *InMemory) BulkCreate(_ context.Context, companies []*models.Company) ([]*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	taken := make(map[string]struct{})
	for _, existing := range s.companies {
		taken[domainKey(existing.WorkspaceID, existing.Domain)] = struct{}{}
	}

	created := make([]*models.Company, len(companies))
	for i, c := range companies {
		key := domainKey(c.WorkspaceID, c.Domain)
		if _, dup := taken[key]; dup {
			return nil, sentinel.ErrConflict
		}
		taken[key] = struct{}{}

		copied := *c
		copied.ID = id.CompanyID(uuid.New())
		created[i] = &copied
	}

	for _, c := range created {
		s.companies[c.ID] = c
	}
	return created, nil
}

// Count returns the number of companies in the workspace. Used by tests.
func (s *InMemory) Count(_ context.Context, workspaceID id.WorkspaceID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, c := range s.companies {
		if c.WorkspaceID == workspaceID {
			n++
		}
	}
	return n, nil
}

func domainKey(workspaceID id.WorkspaceID, domain string) string {
	return workspaceID.String() + "|" + webdomain.Normalize(domain)
}
