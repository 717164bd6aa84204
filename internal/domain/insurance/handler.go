package insurance

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cura/cura/internal/domain/billing"
	"github.com/cura/cura/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/insurance", auth.RequireRole("admin", "accountant"))
	g.POST("/submit-claim", h.SubmitClaim)
	g.POST("/record-payment", h.RecordPayment)
	g.POST("/deny-claim", h.DenyClaim)
}

func httpError(err error) error {
	var verrs billing.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]interface{}{
			"message": "validation failed",
			"errors":  verrs,
		})
	case errors.Is(err, billing.ErrNotInsuranceBill):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, billing.ErrInvoiceNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) SubmitClaim(c echo.Context) error {
	var req SubmitClaimRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	inv, err := h.svc.SubmitClaim(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) RecordPayment(c echo.Context) error {
	var req RecordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.RecordPayment(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

type denyClaimRequest struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	Reason    *string   `json:"reason"`
}

func (h *Handler) DenyClaim(c echo.Context) error {
	var req denyClaimRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	inv, err := h.svc.DenyClaim(c.Request().Context(), req.InvoiceID, req.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, inv)
}
