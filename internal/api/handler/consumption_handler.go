package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

type ConsumptionHandler struct {
	service ports.ConsumptionService
}

func NewConsumptionHandler(service ports.ConsumptionService) *ConsumptionHandler {
	return &ConsumptionHandler{service: service}
}

type createConsumptionRequest struct {
	Period        string  `json:"period" validate:"required,oneof=daily monthly annual"`
	ReferenceDate string  `json:"reference_date" validate:"required"`
	KwhConsumed   string  `json:"kwh_consumed" validate:"required"`
	Notes         string  `json:"notes,omitempty"`
}

type updateConsumptionRequest struct {
	KwhConsumed *string `json:"kwh_consumed,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func parseReferenceDate(raw string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError("reference_date must be a YYYY-MM-DD date")
	}
	return t, nil
}

// pathFromParams builds the claimed ownership chain from whichever nested
// route variant matched. The deepest id present becomes the record target.
func pathFromParams(c echo.Context) (ports.ConsumptionPath, error) {
	userID, err := ctxUserID(c)
	if err != nil {
		return ports.ConsumptionPath{}, err
	}
	return ports.ConsumptionPath{
		UserID:     userID,
		PropertyID: c.Param("propertyId"),
		AreaID:     c.Param("areaId"),
		DeviceID:   c.Param("deviceId"),
	}, nil
}

// Create handles POST on the three nested consumption collections:
//
//	/v1/properties/:propertyId/consumptions
//	/v1/properties/:propertyId/areas/:areaId/consumptions
//	/v1/properties/:propertyId/areas/:areaId/devices/:deviceId/consumptions
//
// @Summary      Record energy consumption
// @Tags         consumptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createConsumptionRequest  true  "Usage record"
// @Success      201   {object}  domain.ConsumptionRecord
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/properties/{propertyId}/consumptions [post]
func (h *ConsumptionHandler) Create(c echo.Context) error {
	path, err := pathFromParams(c)
	if err != nil {
		return err
	}
	var req createConsumptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	refDate, err := parseReferenceDate(req.ReferenceDate)
	if err != nil {
		return err
	}
	kwh, err := parseDecimal("kwh_consumed", req.KwhConsumed)
	if err != nil {
		return err
	}
	rec, err := h.service.Create(c.Request().Context(), path, ports.CreateConsumptionInput{
		Period:        domain.PeriodKind(req.Period),
		ReferenceDate: refDate,
		KwhConsumed:   kwh,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rec)
}

// List handles GET on the nested consumption collections. The optional
// ?period= query narrows the result to one period kind.
func (h *ConsumptionHandler) List(c echo.Context) error {
	path, err := pathFromParams(c)
	if err != nil {
		return err
	}
	period := domain.PeriodKind(c.QueryParam("period"))
	if period != "" && !domain.ValidPeriod(period) {
		return domain.NewValidationError("period must be one of daily, monthly, annual")
	}
	out, err := h.service.List(c.Request().Context(), path, period)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/consumptions/:id. Records are addressed flat by id;
// ownership is re-checked against the record's own chain.
func (h *ConsumptionHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	rec, err := h.service.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// Update handles PATCH /v1/consumptions/:id. The stored cost is recomputed
// only when kwh_consumed changes.
func (h *ConsumptionHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req updateConsumptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	var kwh *decimal.Decimal
	if req.KwhConsumed != nil {
		d, err := parseDecimal("kwh_consumed", *req.KwhConsumed)
		if err != nil {
			return err
		}
		kwh = &d
	}
	rec, err := h.service.Update(c.Request().Context(), userID, c.Param("id"), ports.UpdateConsumptionInput{
		KwhConsumed: kwh,
		Notes:       req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// Delete handles DELETE /v1/consumptions/:id.
func (h *ConsumptionHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
