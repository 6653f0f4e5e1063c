package tenantresolver

import (
	"errors"

	"gorm.io/gorm"

	"github.com/MamadouBacke/Scolaria/app/models"
	"github.com/MamadouBacke/Scolaria/internal/pkg/apperrors"
)

// RefKind tags which interpretation of the identifier matched.
type RefKind int

const (
	RefDomain RefKind = iota
	RefID
)

// TenantRef records the resolved interpretation of a candidate
// identifier. The domain-or-id fallback is decided exactly once here;
// downstream code receives the ref and can never re-run (or depend on)
// the branch choice.
type TenantRef struct {
	Kind  RefKind
	Value string
}

// TenantStore is the subset of the tenant repository the lookup needs.
type TenantStore interface {
	GetByDomain(domain string) (*models.Tenant, error)
	GetByID(id string) (*models.Tenant, error)
}

// Lookup resolves candidate identifiers to tenant records.
type Lookup struct {
	tenants TenantStore
}

// NewLookup creates a lookup over a tenant store.
func NewLookup(tenants TenantStore) *Lookup {
	return &Lookup{tenants: tenants}
}

// Resolve interprets the identifier as a domain first (the common
// case) and falls back to an internal tenant id only when no domain
// matches. Some callers pass ids where a domain is expected; that dual
// interpretation is intentional. Inactive tenants fail with
// ErrTenantInactive, distinct from ErrTenantNotFound, because
// suspension is a recoverable business state the caller should be told
// about.
func (l *Lookup) Resolve(identifier string) (*models.Tenant, TenantRef, error) {
	tenant, err := l.tenants.GetByDomain(identifier)
	ref := TenantRef{Kind: RefDomain, Value: identifier}
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, TenantRef{}, err
		}
		tenant, err = l.tenants.GetByID(identifier)
		ref = TenantRef{Kind: RefID, Value: identifier}
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, TenantRef{}, apperrors.ErrTenantNotFound
			}
			return nil, TenantRef{}, err
		}
	}

	if !tenant.IsActive() {
		return nil, TenantRef{}, apperrors.ErrTenantInactive
	}
	return tenant, ref, nil
}
