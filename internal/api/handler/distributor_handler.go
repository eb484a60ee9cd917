package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

type DistributorHandler struct {
	service ports.DistributorService
}

func NewDistributorHandler(service ports.DistributorService) *DistributorHandler {
	return &DistributorHandler{service: service}
}

// Decimal fields travel as strings so six-digit prices survive the JSON
// round trip without binary-float mangling.
type createDistributorRequest struct {
	Name        string  `json:"name" validate:"required"`
	Cnpj        string  `json:"cnpj" validate:"required"`
	System      string  `json:"electrical_system" validate:"required,oneof=monophasic biphasic triphasic"`
	VoltageV    int     `json:"voltage_v" validate:"required"`
	KwhPrice    string  `json:"kwh_price" validate:"required"`
	TaxRate     *string `json:"tax_rate,omitempty"`
	LightingFee *string `json:"lighting_fee,omitempty"`
}

type updateDistributorRequest struct {
	Name        *string `json:"name,omitempty"`
	System      *string `json:"electrical_system,omitempty" validate:"omitempty,oneof=monophasic biphasic triphasic"`
	VoltageV    *int    `json:"voltage_v,omitempty"`
	KwhPrice    *string `json:"kwh_price,omitempty"`
	TaxRate     *string `json:"tax_rate,omitempty"`
	LightingFee *string `json:"lighting_fee,omitempty"`
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, domain.NewValidationError(field + " must be a decimal number")
	}
	return d, nil
}

func parseOptDecimal(field string, raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	d, err := parseDecimal(field, *raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create handles POST /v1/distributors.
//
// @Summary      Register an energy distributor tariff
// @Tags         distributors
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createDistributorRequest  true  "Tariff contract"
// @Success      201   {object}  domain.Distributor
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/distributors [post]
func (h *DistributorHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req createDistributorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	price, err := parseDecimal("kwh_price", req.KwhPrice)
	if err != nil {
		return err
	}
	taxRate, err := parseOptDecimal("tax_rate", req.TaxRate)
	if err != nil {
		return err
	}
	fee, err := parseOptDecimal("lighting_fee", req.LightingFee)
	if err != nil {
		return err
	}

	d, err := h.service.Create(c.Request().Context(), userID, ports.CreateDistributorInput{
		Name:        req.Name,
		Cnpj:        req.Cnpj,
		System:      domain.ElectricalSystem(req.System),
		VoltageV:    req.VoltageV,
		KwhPrice:    price,
		TaxRate:     taxRate,
		LightingFee: fee,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

// List handles GET /v1/distributors.
//
// @Summary      List the user's distributors
// @Tags         distributors
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Distributor
// @Router       /v1/distributors [get]
func (h *DistributorHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	out, err := h.service.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/distributors/:id.
func (h *DistributorHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	d, err := h.service.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Update handles PATCH /v1/distributors/:id.
func (h *DistributorHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req updateDistributorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	price, err := parseOptDecimal("kwh_price", req.KwhPrice)
	if err != nil {
		return err
	}
	taxRate, err := parseOptDecimal("tax_rate", req.TaxRate)
	if err != nil {
		return err
	}
	fee, err := parseOptDecimal("lighting_fee", req.LightingFee)
	if err != nil {
		return err
	}

	in := ports.UpdateDistributorInput{
		Name:        req.Name,
		VoltageV:    req.VoltageV,
		KwhPrice:    price,
		TaxRate:     taxRate,
		LightingFee: fee,
	}
	if req.System != nil {
		sys := domain.ElectricalSystem(*req.System)
		in.System = &sys
	}

	d, err := h.service.Update(c.Request().Context(), userID, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Delete handles DELETE /v1/distributors/:id. Fails with 409 while any
// property still references the contract.
func (h *DistributorHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
