package billing

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cura/cura/internal/platform/auth"
	"github.com/cura/cura/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/billing", auth.RequireRole("admin", "accountant", "receptionist"))
	g.GET("/invoices", h.ListInvoices)
	g.POST("/invoices", h.CreateInvoice)
	g.GET("/invoices/:id", h.GetInvoice)
	g.PATCH("/invoices/:id", h.UpdateInvoiceStatus)
	g.PUT("/invoices/:id", h.UpdateInvoice)
	g.DELETE("/invoices/:id", h.DeleteInvoice)
	g.GET("/invoices/:id/payments", h.ListInvoicePayments)
	g.GET("/payments", h.ListPayments)
	g.POST("/payments", h.RecordPayment)
	g.POST("/create-payment-intent", h.CreatePaymentIntent)
	g.POST("/process-payment", h.ProcessPayment)
	g.POST("/send-invoice", h.SendInvoice)
	g.POST("/save-invoice-pdf", h.SaveInvoicePDF)

	doctor := api.Group("/billing", auth.RequireRole("admin", "accountant", "doctor"))
	doctor.GET("/doctor-invoices", h.DoctorInvoices)
}

// httpError maps service errors to HTTP status codes.
func httpError(err error) error {
	var verrs ValidationErrors
	var terr *TransitionError
	switch {
	case errors.As(err, &verrs):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]interface{}{
			"message": "validation failed",
			"errors":  verrs,
		})
	case errors.As(err, &terr):
		return echo.NewHTTPError(http.StatusConflict, terr.Error())
	case errors.Is(err, ErrInvoiceNotFound), errors.Is(err, ErrPaymentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrPaymentsDisabled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ErrIntentNotComplete):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	case errors.Is(err, ErrIntentMismatch):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) CreateInvoice(c echo.Context) error {
	var inv Invoice
	if err := c.Bind(&inv); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateInvoice(c.Request().Context(), &inv); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, inv)
}

func (h *Handler) GetInvoice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	inv, err := h.svc.GetInvoice(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) ListInvoices(c echo.Context) error {
	pg := pagination.FromContext(c)
	filter := InvoiceFilter{Status: c.QueryParam("status")}
	if p := c.QueryParam("patient_id"); p != "" {
		pid, err := uuid.Parse(p)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		filter.PatientID = &pid
	}
	items, total, err := h.svc.ListInvoices(c.Request().Context(), filter, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateInvoiceStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req statusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}
	inv, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) UpdateInvoice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var inv Invoice
	if err := c.Bind(&inv); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	inv.ID = id
	if err := h.svc.UpdateInvoice(c.Request().Context(), &inv); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) DeleteInvoice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteInvoice(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListInvoicePayments(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	payments, err := h.svc.ListPayments(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if payments == nil {
		payments = []*Payment{}
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *Handler) ListPayments(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAllPayments(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type recordPaymentRequest struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Reference *string   `json:"reference"`
	Notes     *string   `json:"notes"`
}

func (h *Handler) RecordPayment(c echo.Context) error {
	var req recordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.RecordPayment(c.Request().Context(), req.InvoiceID, req.Amount, req.Method, req.Reference, req.Notes)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

type paymentIntentRequest struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
}

func (h *Handler) CreatePaymentIntent(c echo.Context) error {
	var req paymentIntentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	intent, err := h.svc.CreatePaymentIntent(c.Request().Context(), req.InvoiceID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, intent)
}

type processPaymentRequest struct {
	InvoiceID       uuid.UUID `json:"invoice_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
}

func (h *Handler) ProcessPayment(c echo.Context) error {
	var req processPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PaymentIntentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "payment_intent_id is required")
	}
	inv, err := h.svc.ProcessPayment(c.Request().Context(), req.InvoiceID, req.PaymentIntentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"invoice": inv,
	})
}

func (h *Handler) SendInvoice(c echo.Context) error {
	var req SendInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doc, err := h.svc.SendInvoice(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"document": doc,
	})
}

type savePDFRequest struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
}

func (h *Handler) SaveInvoicePDF(c echo.Context) error {
	var req savePDFRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doc, err := h.svc.SaveInvoicePDF(c.Request().Context(), req.InvoiceID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, doc)
}

func (h *Handler) DoctorInvoices(c echo.Context) error {
	providerID, err := uuid.Parse(c.QueryParam("provider_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid provider_id")
	}
	view, err := h.svc.DoctorInvoices(c.Request().Context(), providerID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}
