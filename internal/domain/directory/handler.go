package directory

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cura/cura/internal/platform/auth"
	"github.com/cura/cura/pkg/pagination"
)

type Handler struct {
	patients PatientRepository
	users    UserRepository
	settings SettingsRepository
}

func NewHandler(patients PatientRepository, users UserRepository, settings SettingsRepository) *Handler {
	return &Handler{patients: patients, users: users, settings: settings}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := auth.RequireRole("admin", "accountant", "receptionist", "doctor", "nurse")
	api.GET("/patients", h.ListPatients, staff)
	api.POST("/patients", h.CreatePatient, staff)
	api.GET("/patients/:id", h.GetPatient, staff)
	api.GET("/users", h.ListUsers, staff)
	api.POST("/users", h.CreateUser, auth.RequireRole("admin"))
	api.GET("/roles", h.ListRoles, staff)

	admin := auth.RequireRole("admin", "accountant")
	api.GET("/clinic-headers", h.GetClinicHeader, staff)
	api.PUT("/clinic-headers", h.PutClinicHeader, admin)
	api.GET("/clinic-footers", h.GetClinicFooter, staff)
	api.PUT("/clinic-footers", h.PutClinicFooter, admin)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrPatientNotFound), errors.Is(err, ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.patients.List(c.Request().Context(), c.QueryParam("search"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "first_name and last_name are required")
	}
	if err := h.patients.Create(c.Request().Context(), &p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.patients.GetByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListUsers(c echo.Context) error {
	items, err := h.users.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []*User{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateUser(c echo.Context) error {
	var u User
	if err := c.Bind(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(u.Name) == "" || strings.TrimSpace(u.Email) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and email are required")
	}
	if !ValidRole(u.Role) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid role")
	}
	u.IsActive = true
	if err := h.users.Create(c.Request().Context(), &u); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) ListRoles(c echo.Context) error {
	return c.JSON(http.StatusOK, Roles)
}

func (h *Handler) GetClinicHeader(c echo.Context) error {
	hd, err := h.settings.GetHeader(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, hd)
}

func (h *Handler) PutClinicHeader(c echo.Context) error {
	var hd ClinicHeader
	if err := c.Bind(&hd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.settings.PutHeader(c.Request().Context(), &hd); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, hd)
}

func (h *Handler) GetClinicFooter(c echo.Context) error {
	f, err := h.settings.GetFooter(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) PutClinicFooter(c echo.Context) error {
	var f ClinicFooter
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.settings.PutFooter(c.Request().Context(), &f); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, f)
}
