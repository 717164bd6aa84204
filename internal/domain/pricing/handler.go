package pricing

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cura/cura/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/pricing", auth.RequireRole("admin", "accountant"))

	g.GET("/doctors-fees", h.ListDoctorFees)
	g.POST("/doctors-fees", h.CreateDoctorFee)
	g.POST("/doctors-fees/bulk", h.BulkCreateDoctorFees)
	g.GET("/doctors-fees/check-duplicate", h.CheckDuplicateFee)
	g.GET("/doctors-fees/:id", h.GetDoctorFee)
	g.PUT("/doctors-fees/:id", h.UpdateDoctorFee)
	g.DELETE("/doctors-fees/:id", h.DeleteDoctorFee)

	g.GET("/lab-tests", h.ListLabTests)
	g.POST("/lab-tests", h.CreateLabTest)
	g.POST("/lab-tests/bulk", h.BulkCreateLabTests)
	g.GET("/lab-tests/:id", h.GetLabTest)
	g.PUT("/lab-tests/:id", h.UpdateLabTest)
	g.DELETE("/lab-tests/:id", h.DeleteLabTest)

	g.GET("/imaging", h.ListImagingServices)
	g.POST("/imaging", h.CreateImagingService)
	g.POST("/imaging/bulk", h.BulkCreateImagingServices)
	g.GET("/imaging/:id", h.GetImagingService)
	g.PUT("/imaging/:id", h.UpdateImagingService)
	g.DELETE("/imaging/:id", h.DeleteImagingService)

	g.POST("/seed-defaults", h.SeedDefaults)
}

func httpError(err error) error {
	var ferr *FieldError
	switch {
	case errors.As(err, &ferr):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]interface{}{
			"message": "validation failed",
			"errors":  []*FieldError{ferr},
		})
	case errors.Is(err, ErrDuplicateFee), errors.Is(err, ErrDuplicateCode):
		return echo.NewHTTPError(http.StatusConflict, "Duplicate Entry")
	case errors.Is(err, ErrNoValidRows):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func activeOnly(c echo.Context) bool {
	return c.QueryParam("include_inactive") != "true"
}

// =========== Doctor fees ===========

func (h *Handler) ListDoctorFees(c echo.Context) error {
	items, err := h.svc.ListDoctorFees(c.Request().Context(), activeOnly(c))
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []*DoctorFee{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateDoctorFee(c echo.Context) error {
	var fee DoctorFee
	if err := c.Bind(&fee); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateDoctorFee(c.Request().Context(), &fee); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, fee)
}

func (h *Handler) BulkCreateDoctorFees(c echo.Context) error {
	var rows []*DoctorFee
	if err := c.Bind(&rows); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.BulkCreateDoctorFees(c.Request().Context(), rows)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) CheckDuplicateFee(c echo.Context) error {
	role := c.QueryParam("doctor_role")
	doctorID, err := uuid.Parse(c.QueryParam("doctor_id"))
	if role == "" || err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_role and doctor_id are required")
	}
	exists, err := h.svc.CheckDuplicateFee(c.Request().Context(), role, doctorID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"duplicate": exists})
}

func (h *Handler) GetDoctorFee(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	fee, err := h.svc.GetDoctorFee(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fee)
}

func (h *Handler) UpdateDoctorFee(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var fee DoctorFee
	if err := c.Bind(&fee); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	fee.ID = id
	if err := h.svc.UpdateDoctorFee(c.Request().Context(), &fee); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fee)
}

func (h *Handler) DeleteDoctorFee(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteDoctorFee(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// =========== Lab tests ===========

func (h *Handler) ListLabTests(c echo.Context) error {
	items, err := h.svc.ListLabTests(c.Request().Context(), activeOnly(c))
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []*LabTest{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateLabTest(c echo.Context) error {
	var test LabTest
	if err := c.Bind(&test); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateLabTest(c.Request().Context(), &test); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, test)
}

func (h *Handler) BulkCreateLabTests(c echo.Context) error {
	var rows []*LabTest
	if err := c.Bind(&rows); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.BulkCreateLabTests(c.Request().Context(), rows)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) GetLabTest(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	test, err := h.svc.GetLabTest(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, test)
}

func (h *Handler) UpdateLabTest(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var test LabTest
	if err := c.Bind(&test); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	test.ID = id
	if err := h.svc.UpdateLabTest(c.Request().Context(), &test); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, test)
}

func (h *Handler) DeleteLabTest(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteLabTest(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// =========== Imaging ===========

func (h *Handler) ListImagingServices(c echo.Context) error {
	items, err := h.svc.ListImagingServices(c.Request().Context(), activeOnly(c))
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []*ImagingService{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateImagingService(c echo.Context) error {
	var svc ImagingService
	if err := c.Bind(&svc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateImagingService(c.Request().Context(), &svc); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, svc)
}

func (h *Handler) BulkCreateImagingServices(c echo.Context) error {
	var rows []*ImagingService
	if err := c.Bind(&rows); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.BulkCreateImagingServices(c.Request().Context(), rows)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) GetImagingService(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	svc, err := h.svc.GetImagingService(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *Handler) UpdateImagingService(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var svc ImagingService
	if err := c.Bind(&svc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	svc.ID = id
	if err := h.svc.UpdateImagingService(c.Request().Context(), &svc); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *Handler) DeleteImagingService(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteImagingService(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// =========== Seeding ===========

func (h *Handler) SeedDefaults(c echo.Context) error {
	result, err := h.svc.SeedDefaults(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}
