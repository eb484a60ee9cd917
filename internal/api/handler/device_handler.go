package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

type DeviceHandler struct {
	service ports.DeviceService
}

func NewDeviceHandler(service ports.DeviceService) *DeviceHandler {
	return &DeviceHandler{service: service}
}

type createDeviceRequest struct {
	Name   string `json:"name" validate:"required"`
	Brand  string `json:"brand,omitempty"`
	Model  string `json:"model,omitempty"`
	PowerW *int   `json:"power_w,omitempty"`
}

type updateDeviceRequest struct {
	Name   *string `json:"name,omitempty"`
	Brand  *string `json:"brand,omitempty"`
	Model  *string `json:"model,omitempty"`
	PowerW *int    `json:"power_w,omitempty"`
}

type iotConfigRequest struct {
	Protocol string            `json:"protocol" validate:"required"`
	Host     string            `json:"host,omitempty"`
	Port     int               `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Topic    string            `json:"topic,omitempty"`
	Address  string            `json:"address,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func (h *DeviceHandler) chain(c echo.Context) (userID, propertyID, areaID string, err error) {
	userID, err = ctxUserID(c)
	return userID, c.Param("propertyId"), c.Param("areaId"), err
}

// Create handles POST /v1/properties/:propertyId/areas/:areaId/devices.
func (h *DeviceHandler) Create(c echo.Context) error {
	userID, propertyID, areaID, err := h.chain(c)
	if err != nil {
		return err
	}
	var req createDeviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	d, err := h.service.Create(c.Request().Context(), userID, propertyID, areaID, ports.CreateDeviceInput{
		Name:   req.Name,
		Brand:  req.Brand,
		Model:  req.Model,
		PowerW: req.PowerW,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

// List handles GET /v1/properties/:propertyId/areas/:areaId/devices.
func (h *DeviceHandler) List(c echo.Context) error {
	userID, propertyID, areaID, err := h.chain(c)
	if err != nil {
		return err
	}
	out, err := h.service.List(c.Request().Context(), userID, propertyID, areaID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/properties/:propertyId/areas/:areaId/devices/:deviceId.
func (h *DeviceHandler) Get(c echo.Context) error {
	userID, propertyID, areaID, err := h.chain(c)
	if err != nil {
		return err
	}
	d, err := h.service.Get(c.Request().Context(), userID, propertyID, areaID, c.Param("deviceId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Update handles PATCH /v1/properties/:propertyId/areas/:areaId/devices/:deviceId.
func (h *DeviceHandler) Update(c echo.Context) error {
	userID, propertyID, areaID, err := h.chain(c)
	if err != nil {
		return err
	}
	var req updateDeviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	d, err := h.service.Update(c.Request().Context(), userID, propertyID, areaID, c.Param("deviceId"), ports.UpdateDeviceInput{
		Name:   req.Name,
		Brand:  req.Brand,
		Model:  req.Model,
		PowerW: req.PowerW,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Delete handles DELETE /v1/properties/:propertyId/areas/:areaId/devices/:deviceId.
func (h *DeviceHandler) Delete(c echo.Context) error {
	userID, propertyID, areaID, err := h.chain(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), userID, propertyID, areaID, c.Param("deviceId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// PutIoTConfig handles PUT .../devices/:deviceId/iot-config. The record is
// an upsert; repeated calls replace the stored config.
func (h *DeviceHandler) PutIoTConfig(c echo.Context) error {
	userID, propertyID, areaID, err := h.chain(c)
	if err != nil {
		return err
	}
	var req iotConfigRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	cfg, err := h.service.PutIoTConfig(c.Request().Context(), userID, propertyID, areaID, c.Param("deviceId"), ports.IoTConfigInput{
		Protocol: req.Protocol,
		Host:     req.Host,
		Port:     req.Port,
		Topic:    req.Topic,
		Address:  req.Address,
		Extra:    req.Extra,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cfg)
}

// GetIoTConfig handles GET .../devices/:deviceId/iot-config.
func (h *DeviceHandler) GetIoTConfig(c echo.Context) error {
	userID, propertyID, areaID, err := h.chain(c)
	if err != nil {
		return err
	}
	cfg, err := h.service.GetIoTConfig(c.Request().Context(), userID, propertyID, areaID, c.Param("deviceId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cfg)
}

// DeleteIoTConfig handles DELETE .../devices/:deviceId/iot-config.
func (h *DeviceHandler) DeleteIoTConfig(c echo.Context) error {
	userID, propertyID, areaID, err := h.chain(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteIoTConfig(c.Request().Context(), userID, propertyID, areaID, c.Param("deviceId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
