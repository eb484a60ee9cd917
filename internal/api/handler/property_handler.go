package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

type PropertyHandler struct {
	service ports.PropertyService
}

func NewPropertyHandler(service ports.PropertyService) *PropertyHandler {
	return &PropertyHandler{service: service}
}

type createPropertyRequest struct {
	DistributorID string `json:"distributor_id" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Street        string `json:"street,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty" validate:"omitempty,uf"`
	PostalCode    string `json:"postal_code,omitempty" validate:"omitempty,cep"`
}

type updatePropertyRequest struct {
	DistributorID *string `json:"distributor_id,omitempty"`
	Name          *string `json:"name,omitempty"`
	Street        *string `json:"street,omitempty"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty" validate:"omitempty,uf"`
	PostalCode    *string `json:"postal_code,omitempty" validate:"omitempty,cep"`
}

// Create handles POST /v1/properties.
//
// @Summary      Register a property
// @Tags         properties
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPropertyRequest  true  "Property"
// @Success      201   {object}  domain.Property
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/properties [post]
func (h *PropertyHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req createPropertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.Create(c.Request().Context(), userID, ports.CreatePropertyInput{
		DistributorID: req.DistributorID,
		Name:          req.Name,
		Street:        req.Street,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// List handles GET /v1/properties.
func (h *PropertyHandler) List(c echo.Context) error {
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

// Get handles GET /v1/properties/:propertyId.
func (h *PropertyHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	p, err := h.service.Get(c.Request().Context(), userID, c.Param("propertyId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Update handles PATCH /v1/properties/:propertyId.
func (h *PropertyHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req updatePropertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.Update(c.Request().Context(), userID, c.Param("propertyId"), ports.UpdatePropertyInput{
		DistributorID: req.DistributorID,
		Name:          req.Name,
		Street:        req.Street,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /v1/properties/:propertyId and cascades through
// areas, devices, configs and consumptions.
func (h *PropertyHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), userID, c.Param("propertyId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
