package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

// DeviceService manages devices and their passive IoT configuration. Every
// operation walks the full property→area→device chain first.
type DeviceService struct {
	devices ports.DeviceRepository
	iot     ports.IoTConfigRepository
	chain   *chainVerifier
	purger  *cascadePurger
	clock   ports.Clock
	logger  zerolog.Logger
}

func NewDeviceService(
	properties ports.PropertyRepository,
	areas ports.AreaRepository,
	devices ports.DeviceRepository,
	consumptions ports.ConsumptionRepository,
	iot ports.IoTConfigRepository,
	clock ports.Clock,
	logger zerolog.Logger,
) *DeviceService {
	return &DeviceService{
		devices: devices,
		iot:     iot,
		chain:   newChainVerifier(properties, areas, devices),
		purger:  newCascadePurger(properties, areas, devices, consumptions, iot),
		clock:   clock,
		logger:  logger,
	}
}

func validatePower(powerW *int) error {
	if powerW != nil && *powerW <= 0 {
		return domain.NewValidationError("power_w must be strictly positive")
	}
	return nil
}

func (s *DeviceService) Create(ctx context.Context, userID, propertyID, areaID string, in ports.CreateDeviceInput) (*domain.Device, error) {
	if in.Name == "" {
		return nil, domain.NewValidationError("name is required")
	}
	if err := validatePower(in.PowerW); err != nil {
		return nil, err
	}
	if _, _, err := s.chain.area(ctx, userID, propertyID, areaID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	d := &domain.Device{
		ID:        newID(),
		AreaID:    areaID,
		Name:      in.Name,
		Brand:     in.Brand,
		Model:     in.Model,
		PowerW:    in.PowerW,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.devices.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DeviceService) Get(ctx context.Context, userID, propertyID, areaID, deviceID string) (*domain.Device, error) {
	_, _, d, err := s.chain.device(ctx, userID, propertyID, areaID, deviceID)
	return d, err
}

func (s *DeviceService) List(ctx context.Context, userID, propertyID, areaID string) ([]*domain.Device, error) {
	if _, _, err := s.chain.area(ctx, userID, propertyID, areaID); err != nil {
		return nil, err
	}
	return s.devices.ListByArea(ctx, areaID)
}

func (s *DeviceService) Update(ctx context.Context, userID, propertyID, areaID, deviceID string, in ports.UpdateDeviceInput) (*domain.Device, error) {
	_, _, d, err := s.chain.device(ctx, userID, propertyID, areaID, deviceID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, domain.NewValidationError("name must not be empty")
		}
		d.Name = *in.Name
	}
	if in.Brand != nil {
		d.Brand = *in.Brand
	}
	if in.Model != nil {
		d.Model = *in.Model
	}
	if in.PowerW != nil {
		if err := validatePower(in.PowerW); err != nil {
			return nil, err
		}
		d.PowerW = in.PowerW
	}

	d.UpdatedAt = s.clock.Now()
	if err := s.devices.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DeviceService) Delete(ctx context.Context, userID, propertyID, areaID, deviceID string) error {
	if _, _, _, err := s.chain.device(ctx, userID, propertyID, areaID, deviceID); err != nil {
		return err
	}
	return s.purger.purgeDevice(ctx, deviceID)
}

func (s *DeviceService) PutIoTConfig(ctx context.Context, userID, propertyID, areaID, deviceID string, in ports.IoTConfigInput) (*domain.IoTConfig, error) {
	if in.Protocol == "" {
		return nil, domain.NewValidationError("protocol is required")
	}
	if _, _, _, err := s.chain.device(ctx, userID, propertyID, areaID, deviceID); err != nil {
		return nil, err
	}

	cfg := &domain.IoTConfig{
		DeviceID:  deviceID,
		Protocol:  in.Protocol,
		Host:      in.Host,
		Port:      in.Port,
		Topic:     in.Topic,
		Address:   in.Address,
		Extra:     in.Extra,
		UpdatedAt: s.clock.Now(),
	}
	if err := s.iot.Upsert(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *DeviceService) GetIoTConfig(ctx context.Context, userID, propertyID, areaID, deviceID string) (*domain.IoTConfig, error) {
	if _, _, _, err := s.chain.device(ctx, userID, propertyID, areaID, deviceID); err != nil {
		return nil, err
	}
	return s.iot.FindByDevice(ctx, deviceID)
}

func (s *DeviceService) DeleteIoTConfig(ctx context.Context, userID, propertyID, areaID, deviceID string) error {
	if _, _, _, err := s.chain.device(ctx, userID, propertyID, areaID, deviceID); err != nil {
		return err
	}
	if _, err := s.iot.FindByDevice(ctx, deviceID); err != nil {
		return err
	}
	return s.iot.DeleteByDevice(ctx, deviceID)
}
