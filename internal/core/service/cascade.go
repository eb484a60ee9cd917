package service

import (
	"context"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

// cascadePurger implements the parent→child delete cascades. Mongo has no
// foreign keys, so the cascade is walked explicitly, deepest entities first,
// leaving nothing queryable behind a deleted ancestor.
type cascadePurger struct {
	properties   ports.PropertyRepository
	areas        ports.AreaRepository
	devices      ports.DeviceRepository
	consumptions ports.ConsumptionRepository
	iot          ports.IoTConfigRepository
}

func newCascadePurger(
	properties ports.PropertyRepository,
	areas ports.AreaRepository,
	devices ports.DeviceRepository,
	consumptions ports.ConsumptionRepository,
	iot ports.IoTConfigRepository,
) *cascadePurger {
	return &cascadePurger{
		properties:   properties,
		areas:        areas,
		devices:      devices,
		consumptions: consumptions,
		iot:          iot,
	}
}

func (p *cascadePurger) purgeDevice(ctx context.Context, deviceID string) error {
	if err := p.consumptions.DeleteByTarget(ctx, domain.NewDeviceTarget(deviceID)); err != nil {
		return err
	}
	if err := p.iot.DeleteByDevice(ctx, deviceID); err != nil {
		return err
	}
	return p.devices.Delete(ctx, deviceID)
}

func (p *cascadePurger) purgeArea(ctx context.Context, areaID string) error {
	devices, err := p.devices.ListByArea(ctx, areaID)
	if err != nil {
		return err
	}
	for _, d := range devices {
		if err := p.purgeDevice(ctx, d.ID); err != nil {
			return err
		}
	}
	if err := p.consumptions.DeleteByTarget(ctx, domain.NewAreaTarget(areaID)); err != nil {
		return err
	}
	return p.areas.Delete(ctx, areaID)
}

func (p *cascadePurger) purgeProperty(ctx context.Context, propertyID string) error {
	areas, err := p.areas.ListByProperty(ctx, propertyID)
	if err != nil {
		return err
	}
	for _, a := range areas {
		if err := p.purgeArea(ctx, a.ID); err != nil {
			return err
		}
	}
	if err := p.consumptions.DeleteByTarget(ctx, domain.NewPropertyTarget(propertyID)); err != nil {
		return err
	}
	return p.properties.Delete(ctx, propertyID)
}
