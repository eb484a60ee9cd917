package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
)

// UpdateProfileInput is a partial profile update. Nil means unchanged. The
// person kind and tax ids are immutable and therefore absent here.
type UpdateProfileInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	LegalName *string
	TradeName *string
}

// UserService covers profile operations on the authenticated account.
type UserService interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error)
	// Delete removes the account and cascades through tokens, resets,
	// distributors, properties, areas, devices, consumptions and configs.
	Delete(ctx context.Context, userID string) error
}

// CreateDistributorInput carries a new tariff contract.
type CreateDistributorInput struct {
	Name        string
	Cnpj        string
	System      domain.ElectricalSystem
	VoltageV    int
	KwhPrice    decimal.Decimal
	TaxRate     *decimal.Decimal
	LightingFee *decimal.Decimal
}

// UpdateDistributorInput is a partial tariff update; the cnpj and owner are
// immutable.
type UpdateDistributorInput struct {
	Name        *string
	System      *domain.ElectricalSystem
	VoltageV    *int
	KwhPrice    *decimal.Decimal
	TaxRate     *decimal.Decimal
	LightingFee *decimal.Decimal
}

// DistributorService manages the per-user tariff catalog.
type DistributorService interface {
	Create(ctx context.Context, userID string, in CreateDistributorInput) (*domain.Distributor, error)
	Get(ctx context.Context, userID, id string) (*domain.Distributor, error)
	List(ctx context.Context, userID string) ([]*domain.Distributor, error)
	Update(ctx context.Context, userID, id string, in UpdateDistributorInput) (*domain.Distributor, error)
	// Delete fails with domain.ErrDistributorInUse while any property
	// references the contract.
	Delete(ctx context.Context, userID, id string) error
}

// CreatePropertyInput carries a new property. Address fields are optional.
type CreatePropertyInput struct {
	DistributorID string
	Name          string
	Street        string
	City          string
	State         string
	PostalCode    string
}

// UpdatePropertyInput is a partial property update. Reassigning the
// distributor re-runs the same-owner guard.
type UpdatePropertyInput struct {
	DistributorID *string
	Name          *string
	Street        *string
	City          *string
	State         *string
	PostalCode    *string
}

// PropertyService manages properties, the hierarchy roots.
type PropertyService interface {
	Create(ctx context.Context, userID string, in CreatePropertyInput) (*domain.Property, error)
	Get(ctx context.Context, userID, id string) (*domain.Property, error)
	List(ctx context.Context, userID string) ([]*domain.Property, error)
	Update(ctx context.Context, userID, id string, in UpdatePropertyInput) (*domain.Property, error)
	Delete(ctx context.Context, userID, id string) error
}

// CreateAreaInput carries a new area.
type CreateAreaInput struct {
	Name        string
	Description string
}

// UpdateAreaInput is a partial area update.
type UpdateAreaInput struct {
	Name        *string
	Description *string
}

// AreaService manages areas under an owned property.
type AreaService interface {
	Create(ctx context.Context, userID, propertyID string, in CreateAreaInput) (*domain.Area, error)
	Get(ctx context.Context, userID, propertyID, areaID string) (*domain.Area, error)
	List(ctx context.Context, userID, propertyID string) ([]*domain.Area, error)
	Update(ctx context.Context, userID, propertyID, areaID string, in UpdateAreaInput) (*domain.Area, error)
	Delete(ctx context.Context, userID, propertyID, areaID string) error
}

// CreateDeviceInput carries a new device. PowerW must be strictly positive
// when present.
type CreateDeviceInput struct {
	Name   string
	Brand  string
	Model  string
	PowerW *int
}

// UpdateDeviceInput is a partial device update.
type UpdateDeviceInput struct {
	Name   *string
	Brand  *string
	Model  *string
	PowerW *int
}

// IoTConfigInput carries the passive connection record for a device.
type IoTConfigInput struct {
	Protocol string
	Host     string
	Port     int
	Topic    string
	Address  string
	Extra    map[string]string
}

// DeviceService manages devices and their IoT configuration under a fully
// verified property→area chain.
type DeviceService interface {
	Create(ctx context.Context, userID, propertyID, areaID string, in CreateDeviceInput) (*domain.Device, error)
	Get(ctx context.Context, userID, propertyID, areaID, deviceID string) (*domain.Device, error)
	List(ctx context.Context, userID, propertyID, areaID string) ([]*domain.Device, error)
	Update(ctx context.Context, userID, propertyID, areaID, deviceID string, in UpdateDeviceInput) (*domain.Device, error)
	Delete(ctx context.Context, userID, propertyID, areaID, deviceID string) error

	PutIoTConfig(ctx context.Context, userID, propertyID, areaID, deviceID string, in IoTConfigInput) (*domain.IoTConfig, error)
	GetIoTConfig(ctx context.Context, userID, propertyID, areaID, deviceID string) (*domain.IoTConfig, error)
	DeleteIoTConfig(ctx context.Context, userID, propertyID, areaID, deviceID string) error
}
