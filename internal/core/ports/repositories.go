package ports

import (
	"context"
	"time"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
)

// UserRepository defines persistence for accounts. Create must translate a
// duplicate email/cpf/cnpj into domain.ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
}

// TokenRepository is the ledger of issued auth tokens. Tokens are never
// deleted individually; Revoke stamps the revocation instant.
type TokenRepository interface {
	Create(ctx context.Context, t *domain.AuthToken) error
	FindByToken(ctx context.Context, token string) (*domain.AuthToken, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	DeleteByUser(ctx context.Context, userID string) error
}

// PasswordResetRepository stores single-use recovery tokens.
type PasswordResetRepository interface {
	Create(ctx context.Context, r *domain.PasswordReset) error
	FindByToken(ctx context.Context, token string) (*domain.PasswordReset, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
	DeleteByUser(ctx context.Context, userID string) error
}

// DistributorRepository persists tariff contracts. Create must translate a
// duplicate (user, cnpj) into domain.ErrDistributorExists.
type DistributorRepository interface {
	Create(ctx context.Context, d *domain.Distributor) error
	FindByID(ctx context.Context, id string) (*domain.Distributor, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Distributor, error)
	Update(ctx context.Context, d *domain.Distributor) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// PropertyRepository persists properties. CountByDistributor backs the
// referential guard that blocks distributor deletion.
type PropertyRepository interface {
	Create(ctx context.Context, p *domain.Property) error
	FindByID(ctx context.Context, id string) (*domain.Property, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Property, error)
	CountByDistributor(ctx context.Context, distributorID string) (int64, error)
	Update(ctx context.Context, p *domain.Property) error
	Delete(ctx context.Context, id string) error
}

// AreaRepository persists property subdivisions.
type AreaRepository interface {
	Create(ctx context.Context, a *domain.Area) error
	FindByID(ctx context.Context, id string) (*domain.Area, error)
	ListByProperty(ctx context.Context, propertyID string) ([]*domain.Area, error)
	Update(ctx context.Context, a *domain.Area) error
	Delete(ctx context.Context, id string) error
}

// DeviceRepository persists devices.
type DeviceRepository interface {
	Create(ctx context.Context, d *domain.Device) error
	FindByID(ctx context.Context, id string) (*domain.Device, error)
	ListByArea(ctx context.Context, areaID string) ([]*domain.Device, error)
	Update(ctx context.Context, d *domain.Device) error
	Delete(ctx context.Context, id string) error
}

// IoTConfigRepository stores the 0-or-1 connection record per device.
type IoTConfigRepository interface {
	Upsert(ctx context.Context, c *domain.IoTConfig) error
	FindByDevice(ctx context.Context, deviceID string) (*domain.IoTConfig, error)
	DeleteByDevice(ctx context.Context, deviceID string) error
}

// ConsumptionFilter narrows a consumption listing. An empty Period means all
// period kinds.
type ConsumptionFilter struct {
	Target domain.ConsumptionTarget
	Period domain.PeriodKind
}

// ConsumptionRepository persists usage records. Create must translate a
// duplicate (target, period, reference date) into domain.ErrDuplicatePeriod —
// the unique index is the correctness guarantee behind the service-level
// pre-check. List returns records ordered by reference date descending.
type ConsumptionRepository interface {
	Create(ctx context.Context, r *domain.ConsumptionRecord) error
	FindByID(ctx context.Context, id string) (*domain.ConsumptionRecord, error)
	FindByPeriod(ctx context.Context, target domain.ConsumptionTarget, period domain.PeriodKind, refDate time.Time) (*domain.ConsumptionRecord, error)
	List(ctx context.Context, filter ConsumptionFilter) ([]*domain.ConsumptionRecord, error)
	Update(ctx context.Context, r *domain.ConsumptionRecord) error
	Delete(ctx context.Context, id string) error
	DeleteByTarget(ctx context.Context, target domain.ConsumptionTarget) error
}
