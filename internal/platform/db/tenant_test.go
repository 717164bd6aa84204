package db

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestExtractTenant_HeaderWins(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Tenant-Subdomain", "riverside")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if got := extractTenant(c, "default"); got != "riverside" {
		t.Errorf("expected riverside, got %q", got)
	}
}

func TestExtractTenant_JWTClaimBeatsHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Tenant-Subdomain", "riverside")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("jwt_tenant", "lakeside")

	if got := extractTenant(c, "default"); got != "lakeside" {
		t.Errorf("expected lakeside, got %q", got)
	}
}

func TestExtractTenant_QueryParam(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?tenant=hillview", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if got := extractTenant(c, "default"); got != "hillview" {
		t.Errorf("expected hillview, got %q", got)
	}
}

func TestExtractTenant_Default(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if got := extractTenant(c, "default"); got != "default" {
		t.Errorf("expected default, got %q", got)
	}
}

func TestTenantPattern(t *testing.T) {
	tests := []struct {
		tenant string
		valid  bool
	}{
		{"default", true},
		{"clinic-one", true},
		{"clinic_two", true},
		{"c1", true},
		{"", false},
		{"-leading", false},
		{"has space", false},
		{"semi;colon", false},
		{"UPPER", false},
	}
	for _, tt := range tests {
		t.Run(tt.tenant, func(t *testing.T) {
			if got := tenantPattern.MatchString(tt.tenant); got != tt.valid {
				t.Errorf("tenantPattern(%q) = %v, want %v", tt.tenant, got, tt.valid)
			}
		})
	}
}

func TestSchemaName(t *testing.T) {
	if got := schemaName("clinic-one"); got != "clinic_one" {
		t.Errorf("expected clinic_one, got %q", got)
	}
	if got := schemaName("plain"); got != "plain" {
		t.Errorf("expected plain, got %q", got)
	}
}

func TestTxFromContext_Empty(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Error("expected nil tx from empty context")
	}
}

func TestTenantFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), TenantKey, "riverside")
	if got := TenantFromContext(ctx); got != "riverside" {
		t.Errorf("expected riverside, got %q", got)
	}
	if got := TenantFromContext(context.Background()); got != "" {
		t.Errorf("expected empty tenant, got %q", got)
	}
}
