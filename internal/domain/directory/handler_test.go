package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type memPatientRepo struct {
	items map[uuid.UUID]*Patient
}

func (m *memPatientRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	m.items[p.ID] = p
	return nil
}

func (m *memPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return p, nil
}

func (m *memPatientRepo) List(_ context.Context, search string, _, _ int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.items {
		if search != "" && !strings.Contains(strings.ToLower(p.FullName()), strings.ToLower(search)) {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

type memUserRepo struct {
	items map[uuid.UUID]*User
}

func (m *memUserRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	m.items[u.ID] = u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.items[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (m *memUserRepo) List(_ context.Context) ([]*User, error) {
	var out []*User
	for _, u := range m.items {
		out = append(out, u)
	}
	return out, nil
}

type memSettingsRepo struct {
	header ClinicHeader
	footer ClinicFooter
}

func (m *memSettingsRepo) GetHeader(_ context.Context) (*ClinicHeader, error) { return &m.header, nil }
func (m *memSettingsRepo) PutHeader(_ context.Context, h *ClinicHeader) error {
	m.header = *h
	return nil
}
func (m *memSettingsRepo) GetFooter(_ context.Context) (*ClinicFooter, error) { return &m.footer, nil }
func (m *memSettingsRepo) PutFooter(_ context.Context, f *ClinicFooter) error {
	m.footer = *f
	return nil
}

func newTestServer() (*echo.Echo, *memSettingsRepo) {
	patients := &memPatientRepo{items: map[uuid.UUID]*Patient{}}
	users := &memUserRepo{items: map[uuid.UUID]*User{}}
	settings := &memSettingsRepo{}
	h := NewHandler(patients, users, settings)

	e := echo.New()
	e.POST("/api/patients", h.CreatePatient)
	e.GET("/api/patients/:id", h.GetPatient)
	e.POST("/api/users", h.CreateUser)
	e.GET("/api/roles", h.ListRoles)
	e.GET("/api/clinic-headers", h.GetClinicHeader)
	e.PUT("/api/clinic-headers", h.PutClinicHeader)
	return e, settings
}

func TestCreatePatient(t *testing.T) {
	e, _ := newTestServer()

	body := `{"first_name":"Jane","last_name":"Roe","nhs_number":"943 476 5919"}`
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var p Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected assigned id")
	}
}

func TestCreatePatient_MissingName(t *testing.T) {
	e, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(`{"first_name":"Jane"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreateUser_InvalidRole(t *testing.T) {
	e, _ := newTestServer()

	body := `{"name":"Sam Price","email":"sam@clinic.test","role":"janitor"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListRoles(t *testing.T) {
	e, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/roles", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var roles []string
	if err := json.Unmarshal(rec.Body.Bytes(), &roles); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(roles) != len(Roles) {
		t.Errorf("got %d roles, want %d", len(roles), len(Roles))
	}
}

func TestClinicHeaderRoundTrip(t *testing.T) {
	e, settings := newTestServer()

	body := `{"clinic_name":"Harley Street Clinic","address":"12 Harley St, London","phone":"020 7000 0000","email":"billing@clinic.test"}`
	req := httptest.NewRequest(http.MethodPut, "/api/clinic-headers", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if settings.header.ClinicName != "Harley Street Clinic" {
		t.Errorf("header not stored: %+v", settings.header)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/clinic-headers", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var got ClinicHeader
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got.ClinicName != "Harley Street Clinic" {
		t.Errorf("round trip lost clinic name: %+v", got)
	}
}
