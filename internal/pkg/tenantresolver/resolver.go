package tenantresolver

import (
	"net"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/MamadouBacke/Scolaria/internal/pkg/apperrors"
)

// HeaderTenantDomain is the explicit tenant-domain request header.
const HeaderTenantDomain = "X-Tenant-Domain"

// reservedLabels are subdomain labels that never identify a tenant.
var reservedLabels = map[string]bool{
	"www": true,
	"api": true,
}

// FromRequest extracts a candidate tenant identifier from the request's
// transport metadata. Precedence, first match wins with no merging:
//  1. leftmost label of the Host header (unless reserved)
//  2. X-Tenant-Domain header
//  3. "tenant" query parameter
//  4. "tenant" body field (write verbs only)
//
// The result is lowercased. When every source is absent or empty the
// request fails with ErrMissingTenantSignal: an unscoped request must
// never be routed into a default tenant.
func FromRequest(c *fiber.Ctx) (string, error) {
	if label := hostLabel(c.Hostname()); label != "" {
		return label, nil
	}

	if v := strings.TrimSpace(c.Get(HeaderTenantDomain)); v != "" {
		return strings.ToLower(v), nil
	}

	if v := strings.TrimSpace(c.Query("tenant")); v != "" {
		return strings.ToLower(v), nil
	}

	if v := bodyTenant(c); v != "" {
		return v, nil
	}

	return "", apperrors.ErrMissingTenantSignal
}

// hostLabel returns the leftmost subdomain label of a host, or "" when
// the host carries no usable tenant signal. Bare domains, IPs and
// localhost are not tenant signals; neither are the reserved labels.
func hostLabel(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" {
		return ""
	}
	if stripped, _, err := net.SplitHostPort(h); err == nil {
		h = stripped
	}
	if h == "localhost" || net.ParseIP(h) != nil {
		return ""
	}
	parts := strings.Split(h, ".")
	if len(parts) < 3 {
		return ""
	}
	if reservedLabels[parts[0]] {
		return ""
	}
	return parts[0]
}

// bodyTenant reads the "tenant" body field. Only meaningful on write
// verbs; GET bodies are ignored.
func bodyTenant(c *fiber.Ctx) string {
	switch c.Method() {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
	default:
		return ""
	}

	var body struct {
		Tenant string `json:"tenant" form:"tenant"`
	}
	if err := c.BodyParser(&body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Tenant))
}
