package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Sentinel errors for the tenant/auth core. Handlers and middlewares
// translate internal failures into these before anything reaches a
// caller; only unclassified errors fall through as 500.
var (
	// ErrMissingTenantSignal: no resolvable tenant identity in the request.
	ErrMissingTenantSignal = errors.New("missing tenant signal")

	// ErrTenantNotFound: identity resolved but no matching tenant record.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantInactive: tenant exists but is suspended/pending/cancelled.
	ErrTenantInactive = errors.New("tenant inactive")

	// ErrInvalidCredentials covers every authentication failure branch
	// uniformly so callers cannot enumerate valid domains or usernames.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrConflict: uniqueness violation on create (domain, email, username).
	ErrConflict = errors.New("conflict")

	// ErrPlanNotFound: plan-change references an unknown catalog plan.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrCustomPlanNotFound: tenant references a missing custom plan.
	ErrCustomPlanNotFound = errors.New("custom plan not found")

	// ErrCustomPlanInUse: custom plan delete refused while referenced.
	ErrCustomPlanInUse = errors.New("custom plan in use")
)

// InvalidCredentialsMessage is the single user-facing string for every
// login failure. Must stay textually identical across branches.
const InvalidCredentialsMessage = "Identifiants invalides"

// StatusCode maps a core error to its HTTP status. Tenant resolution
// failures are all 400 for unauthenticated callers; "not found" is
// deliberately not 404 there so malformed and unknown identities are
// indistinguishable at the protocol level.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrMissingTenantSignal),
		errors.Is(err, ErrTenantNotFound),
		errors.Is(err, ErrTenantInactive):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrConflict), errors.Is(err, ErrCustomPlanInUse):
		return fiber.StatusConflict
	case errors.Is(err, ErrPlanNotFound), errors.Is(err, ErrCustomPlanNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// Message returns the user-facing message for a core error. Unclassified
// errors get a generic message so internals never leak.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrMissingTenantSignal):
		return "Aucun etablissement identifiable dans la requete"
	case errors.Is(err, ErrTenantNotFound):
		return "Etablissement introuvable"
	case errors.Is(err, ErrTenantInactive):
		return "Etablissement inactif ou suspendu"
	case errors.Is(err, ErrInvalidCredentials):
		return InvalidCredentialsMessage
	case errors.Is(err, ErrConflict):
		return "Cette ressource existe deja"
	case errors.Is(err, ErrCustomPlanInUse):
		return "Ce plan personnalise est encore utilise"
	case errors.Is(err, ErrPlanNotFound):
		return "Plan introuvable"
	case errors.Is(err, ErrCustomPlanNotFound):
		return "Plan personnalise introuvable"
	default:
		return "Erreur interne"
	}
}
