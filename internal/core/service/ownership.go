package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/voltio/energy-tracking-api/internal/api/metrics"
	"github.com/voltio/energy-tracking-api/internal/core/domain"
	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

// systemClock is the production ports.Clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by time.Now in UTC.
func SystemClock() ports.Clock { return systemClock{} }

func newID() string { return uuid.NewString() }

// chainVerifier re-derives trust in a claimed ownership path from stored
// state on every call. There is deliberately no caching: a chain invalidated
// mid-session is caught on the very next operation.
//
// The failure mode is two-tiered. A property that exists but belongs to
// another user fails with ErrForbidden; once top-level ownership is
// confirmed, a child that is absent or hangs off a different parent fails
// with the child's NotFound. That distinction confirms existence only to the
// legitimate root owner and must not be collapsed.
type chainVerifier struct {
	properties ports.PropertyRepository
	areas      ports.AreaRepository
	devices    ports.DeviceRepository
}

func newChainVerifier(properties ports.PropertyRepository, areas ports.AreaRepository, devices ports.DeviceRepository) *chainVerifier {
	return &chainVerifier{properties: properties, areas: areas, devices: devices}
}

// property confirms the property exists and is owned by userID.
func (v *chainVerifier) property(ctx context.Context, userID, propertyID string) (*domain.Property, error) {
	p, err := v.properties.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		metrics.OwnershipDeniedTotal.WithLabelValues("property").Inc()
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// area confirms property ownership first, then that the area hangs off that
// property. A mismatched parent is reported as ErrAreaNotFound, not
// Forbidden: the caller already proved they own the root.
func (v *chainVerifier) area(ctx context.Context, userID, propertyID, areaID string) (*domain.Property, *domain.Area, error) {
	p, err := v.property(ctx, userID, propertyID)
	if err != nil {
		return nil, nil, err
	}
	a, err := v.areas.FindByID(ctx, areaID)
	if err != nil {
		return nil, nil, err
	}
	if a.PropertyID != p.ID {
		return nil, nil, domain.ErrAreaNotFound
	}
	return p, a, nil
}

// device walks the full chain: property ownership, area-belongs-to-property,
// device-belongs-to-area, short-circuiting on the first failure.
func (v *chainVerifier) device(ctx context.Context, userID, propertyID, areaID, deviceID string) (*domain.Property, *domain.Area, *domain.Device, error) {
	p, a, err := v.area(ctx, userID, propertyID, areaID)
	if err != nil {
		return nil, nil, nil, err
	}
	d, err := v.devices.FindByID(ctx, deviceID)
	if err != nil {
		return nil, nil, nil, err
	}
	if d.AreaID != a.ID {
		return nil, nil, nil, domain.ErrDeviceNotFound
	}
	return p, a, d, nil
}
