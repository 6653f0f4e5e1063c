package auth

import (
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/MamadouBacke/Scolaria/app/models"
	"github.com/MamadouBacke/Scolaria/internal/pkg/apperrors"
	"github.com/MamadouBacke/Scolaria/internal/pkg/password"
	"github.com/MamadouBacke/Scolaria/internal/pkg/tenantresolver"
)

// PrincipalKind distinguishes the two authentication paths.
type PrincipalKind string

const (
	PrincipalLegacyAdmin   PrincipalKind = "legacy_admin"
	PrincipalDirectoryUser PrincipalKind = "directory_user"
)

// Principal is an authenticated caller. Exactly one of Tenant (legacy
// path) or User (directory path) carries the credential owner; Tenant
// is always the resolved tenant.
type Principal struct {
	Kind   PrincipalKind
	Tenant *models.Tenant
	User   *models.User
}

// AdminStore is the tenant-side persistence the chain needs.
type AdminStore interface {
	UpdateAdminLastLogin(id string) error
}

// UserStore is the directory-side persistence the chain needs. Lookups
// are tenant-scoped only; the chain must never see other tenants' users.
type UserStore interface {
	GetByTenantAndEmail(tenantID, email string) (*models.User, error)
	UpdateLastLogin(id string) error
}

// Chain implements the dual-mode authentication: the legacy embedded
// tenant-admin record first, then the per-tenant user directory over a
// synthesized candidate email list. The platform evolved from
// single-admin tenants to a general directory without migrating the
// historical admin records, so both paths must keep working.
type Chain struct {
	lookup  *tenantresolver.Lookup
	tenants AdminStore
	users   UserStore
	rules   []CandidateRule
}

// NewChain builds a chain; a nil rules slice selects DefaultRules.
func NewChain(lookup *tenantresolver.Lookup, tenants AdminStore, users UserStore, rules []CandidateRule) *Chain {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Chain{lookup: lookup, tenants: tenants, users: users, rules: rules}
}

// Authenticate verifies (domain, usernameOrEmail, password) and returns
// a principal, or apperrors.ErrInvalidCredentials for every failure
// branch uniformly: wrong tenant, unknown user, wrong password and
// inactive accounts are indistinguishable from the outside so valid
// domains and usernames cannot be enumerated.
func (ch *Chain) Authenticate(domain, username, plaintext string) (*Principal, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	username = strings.TrimSpace(username)
	if domain == "" || username == "" || plaintext == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	tenant, _, err := ch.lookup.Resolve(domain)
	if err != nil {
		if errors.Is(err, apperrors.ErrTenantNotFound) || errors.Is(err, apperrors.ErrTenantInactive) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	// Legacy path: the embedded admin credential.
	if strings.EqualFold(tenant.Admin.Username, username) &&
		tenant.Admin.IsActive &&
		password.Verify(plaintext, tenant.Admin.PasswordHash) {
		if err := ch.tenants.UpdateAdminLastLogin(tenant.ID); err != nil {
			log.Printf("auth: failed to touch admin last login for tenant %s: %v", tenant.ID, err)
		}
		return &Principal{Kind: PrincipalLegacyAdmin, Tenant: tenant}, nil
	}

	// Directory path: bounded candidate loop, short-circuits on the
	// first verified match. Each probe is one bcrypt comparison; the
	// cap on candidates bounds worst-case CPU per request.
	for _, cand := range Candidates(ch.rules, username, domain, tenant.Domain) {
		user, err := ch.users.GetByTenantAndEmail(tenant.ID, cand)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		if !user.IsActive() || !user.CheckPassword(plaintext) {
			continue
		}
		if err := ch.users.UpdateLastLogin(user.ID); err != nil {
			log.Printf("auth: failed to touch last login for user %s: %v", user.ID, err)
		}
		return &Principal{Kind: PrincipalDirectoryUser, Tenant: tenant, User: user}, nil
	}

	return nil, apperrors.ErrInvalidCredentials
}
