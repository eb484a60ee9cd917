package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

type AreaHandler struct {
	service ports.AreaService
}

func NewAreaHandler(service ports.AreaService) *AreaHandler {
	return &AreaHandler{service: service}
}

type createAreaRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
}

type updateAreaRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// Create handles POST /v1/properties/:propertyId/areas.
func (h *AreaHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req createAreaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	a, err := h.service.Create(c.Request().Context(), userID, c.Param("propertyId"), ports.CreateAreaInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

// List handles GET /v1/properties/:propertyId/areas.
func (h *AreaHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	out, err := h.service.List(c.Request().Context(), userID, c.Param("propertyId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/properties/:propertyId/areas/:areaId.
func (h *AreaHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	a, err := h.service.Get(c.Request().Context(), userID, c.Param("propertyId"), c.Param("areaId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Update handles PATCH /v1/properties/:propertyId/areas/:areaId.
func (h *AreaHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req updateAreaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	a, err := h.service.Update(c.Request().Context(), userID, c.Param("propertyId"), c.Param("areaId"), ports.UpdateAreaInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Delete handles DELETE /v1/properties/:propertyId/areas/:areaId and
// cascades through devices, configs and consumptions.
func (h *AreaHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), userID, c.Param("propertyId"), c.Param("areaId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
