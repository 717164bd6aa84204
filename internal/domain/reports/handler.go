package reports

import (
	"errors"
	"net/http"
	"time"

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
	g := api.Group("/reports", auth.RequireRole("admin", "accountant"))
	g.GET("/revenue-breakdown", h.RevenueBreakdown)
	g.POST("/mark-overdue", h.MarkOverdue)
}

func requestFromQuery(c echo.Context) (Request, error) {
	req := Request{
		Range:         c.QueryParam("range"),
		InsuranceType: c.QueryParam("insurance_type"),
		Role:          c.QueryParam("role"),
		UserID:        c.QueryParam("user_id"),
	}
	if raw := c.QueryParam("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return req, echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
		}
		req.From = from
	}
	if raw := c.QueryParam("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return req, echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
		}
		req.To = to
	}
	return req, nil
}

func (h *Handler) RevenueBreakdown(c echo.Context) error {
	req, err := requestFromQuery(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	switch c.QueryParam("format") {
	case "csv":
		data, name, err := h.svc.RevenueCSV(ctx, req)
		if err != nil {
			return httpError(err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		return c.Blob(http.StatusOK, "text/csv", data)
	case "pdf":
		data, name, err := h.svc.RevenuePDF(ctx, req)
		if err != nil {
			return httpError(err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		return c.Blob(http.StatusOK, "application/pdf", data)
	default:
		rows, _, err := h.svc.RevenueBreakdown(ctx, req)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, rows)
	}
}

func httpError(err error) error {
	if errors.Is(err, ErrInvalidRequest) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) MarkOverdue(c echo.Context) error {
	n, err := h.svc.MarkOverdueInvoices(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"marked_overdue": n})
}
