package tenantresolver

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/MamadouBacke/Scolaria/internal/pkg/apperrors"
)

// resolveApp exposes FromRequest over a test route so requests can be
// driven through the full fiber parsing pipeline.
func resolveApp() *fiber.App {
	app := fiber.New()
	handler := func(c *fiber.Ctx) error {
		identifier, err := FromRequest(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		return c.SendString(identifier)
	}
	app.Get("/probe", handler)
	app.Post("/probe", handler)
	return app
}

func probe(t *testing.T, app *fiber.App, method, host string, headers map[string]string, body string) (int, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "http://"+host+"/probe", reader)
	req.Host = host
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(out)
}

func TestFromRequestHostLabel(t *testing.T) {
	app := resolveApp()

	status, got := probe(t, app, fiber.MethodGet, "acme.scolaria.sn", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "acme", got)
}

func TestFromRequestHostLabelWithPort(t *testing.T) {
	app := resolveApp()

	status, got := probe(t, app, fiber.MethodGet, "acme.scolaria.sn:8080", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "acme", got)
}

func TestFromRequestHostBeatsHeader(t *testing.T) {
	app := resolveApp()

	status, got := probe(t, app, fiber.MethodGet, "acme.scolaria.sn", map[string]string{
		HeaderTenantDomain: "autre",
	}, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "acme", got)
}

func TestFromRequestReservedLabelFallsThrough(t *testing.T) {
	app := resolveApp()

	for _, host := range []string{"www.scolaria.sn", "api.scolaria.sn"} {
		status, got := probe(t, app, fiber.MethodGet, host, map[string]string{
			HeaderTenantDomain: "acme",
		}, "")
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "acme", got, "host %s must defer to the header", host)
	}
}

func TestFromRequestBareDomainNotASignal(t *testing.T) {
	app := resolveApp()

	status, got := probe(t, app, fiber.MethodGet, "scolaria.sn", map[string]string{
		HeaderTenantDomain: "acme",
	}, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "acme", got)
}

func TestFromRequestLocalhostAndIPNotSignals(t *testing.T) {
	app := resolveApp()

	for _, host := range []string{"localhost:4000", "127.0.0.1:4000"} {
		status, got := probe(t, app, fiber.MethodGet, host, map[string]string{
			HeaderTenantDomain: "acme",
		}, "")
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "acme", got, "host %s must not be a tenant signal", host)
	}
}

func TestFromRequestHeaderBeatsQuery(t *testing.T) {
	app := resolveApp()

	req := httptest.NewRequest(fiber.MethodGet, "http://localhost/probe?tenant=query-acme", nil)
	req.Host = "localhost"
	req.Header.Set(HeaderTenantDomain, "header-acme")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "header-acme", string(out))
}

func TestFromRequestQueryParameter(t *testing.T) {
	app := resolveApp()

	req := httptest.NewRequest(fiber.MethodGet, "http://localhost/probe?tenant=ACME", nil)
	req.Host = "localhost"
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "acme", string(out), "identifier must be lowercased")
}

func TestFromRequestBodyFieldOnWriteVerb(t *testing.T) {
	app := resolveApp()

	status, got := probe(t, app, fiber.MethodPost, "localhost", map[string]string{
		"Content-Type": "application/json",
	}, `{"tenant":"acme"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "acme", got)
}

func TestFromRequestBodyIgnoredOnGet(t *testing.T) {
	app := resolveApp()

	status, got := probe(t, app, fiber.MethodGet, "localhost", map[string]string{
		"Content-Type": "application/json",
	}, `{"tenant":"acme"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, apperrors.ErrMissingTenantSignal.Error(), got)
}

func TestFromRequestNoSignal(t *testing.T) {
	app := resolveApp()

	status, got := probe(t, app, fiber.MethodGet, "localhost", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, apperrors.ErrMissingTenantSignal.Error(), got)
}

func TestHostLabel(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{host: "acme.scolaria.sn", want: "acme"},
		{host: "ACME.Scolaria.SN", want: "acme"},
		{host: "acme.scolaria.sn:443", want: "acme"},
		{host: "www.scolaria.sn", want: ""},
		{host: "api.scolaria.sn", want: ""},
		{host: "scolaria.sn", want: ""},
		{host: "localhost", want: ""},
		{host: "127.0.0.1", want: ""},
		{host: "", want: ""},
	}

	for _, tt := range tests {
		if got := hostLabel(tt.host); got != tt.want {
			t.Fatalf("hostLabel(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}
