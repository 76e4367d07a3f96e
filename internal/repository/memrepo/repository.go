package memrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"grandaura/internal/domain"
	apperror "grandaura/internal/errors"
)

// PrincipalRepository implementa domain.PrincipalStore em memória para uma role.
type PrincipalRepository struct {
	role    domain.Role
	mu      sync.RWMutex
	byID    map[string]domain.Principal
	emailID map[string]string
	now     func() time.Time
}

// NewPrincipalRepository cria uma coleção vazia para a role.
func NewPrincipalRepository(role domain.Role) *PrincipalRepository {
	return &PrincipalRepository{
		role:    role,
		byID:    make(map[string]domain.Principal),
		emailID: make(map[string]string),
		now:     time.Now,
	}
}

// NewStores cria uma coleção em memória para cada uma das seis roles.
func NewStores() domain.Stores {
	stores := make(domain.Stores, len(domain.AllRoles()))
	for _, role := range domain.AllRoles() {
		stores[role] = NewPrincipalRepository(role)
	}
	return stores
}

func (r *PrincipalRepository) Role() domain.Role { return r.role }

func (r *PrincipalRepository) FindByID(ctx context.Context, id string) (domain.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return domain.Principal{}, apperror.NewNotFoundError(fmt.Sprintf("%s with id '%s'", r.role.Label(), id))
	}
	return p, nil
}

func (r *PrincipalRepository) FindByEmail(ctx context.Context, email string) (domain.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emailID[email]
	if !ok {
		return domain.Principal{}, apperror.NewNotFoundError(fmt.Sprintf("%s with email '%s'", r.role.Label(), email))
	}
	return r.byID[id], nil
}

// FindAll devolve os principais por ordem de criação.
func (r *PrincipalRepository) FindAll(ctx context.Context) ([]domain.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Principal, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Email < out[j].Email
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PrincipalRepository) Save(ctx context.Context, principal domain.Principal) (domain.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	principal.Role = r.role
	now := r.now()

	if principal.ID == "" {
		if _, taken := r.emailID[principal.Email]; taken {
			return domain.Principal{}, apperror.NewConflictError("An account with this email already exists.")
		}
		principal.ID = uuid.NewString()
		principal.Version = 1
		principal.CreatedAt = now
		principal.UpdatedAt = now
		r.byID[principal.ID] = principal
		r.emailID[principal.Email] = principal.ID
		return principal, nil
	}

	current, ok := r.byID[principal.ID]
	if !ok {
		return domain.Principal{}, apperror.NewNotFoundError(fmt.Sprintf("%s with id '%s'", r.role.Label(), principal.ID))
	}
	if current.Version != principal.Version {
		return domain.Principal{}, apperror.NewConflictError("The account was modified by another operation. Please try again.")
	}
	if owner, taken := r.emailID[principal.Email]; taken && owner != principal.ID {
		return domain.Principal{}, apperror.NewConflictError("An account with this email already exists.")
	}

	delete(r.emailID, current.Email)
	principal.CreatedAt = current.CreatedAt
	principal.UpdatedAt = now
	principal.Version = current.Version + 1
	r.byID[principal.ID] = principal
	r.emailID[principal.Email] = principal.ID
	return principal, nil
}

func (r *PrincipalRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return apperror.NewNotFoundError(fmt.Sprintf("%s with id '%s'", r.role.Label(), id))
	}
	delete(r.byID, id)
	delete(r.emailID, p.Email)
	return nil
}

func (r *PrincipalRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}
