package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
)

// ConsumptionPath is the claimed ownership chain for a consumption operation.
// PropertyID is always required; AreaID narrows the target to an area and
// DeviceID (with AreaID) to a device. The deepest id present is the target.
type ConsumptionPath struct {
	UserID     string
	PropertyID string
	AreaID     string
	DeviceID   string
}

// CreateConsumptionInput carries a new usage record.
type CreateConsumptionInput struct {
	Period        domain.PeriodKind
	ReferenceDate time.Time
	KwhConsumed   decimal.Decimal
	Notes         string
}

// UpdateConsumptionInput is a partial update. Cost is recomputed only when
// KwhConsumed is present; a notes-only update leaves the stored cost alone.
type UpdateConsumptionInput struct {
	KwhConsumed *decimal.Decimal
	Notes       *string
}

// ConsumptionService is the consumption ledger use-case surface. Create and
// List validate the full claimed chain; Get/Update/Delete resolve the record
// by id and re-check property-level ownership only.
type ConsumptionService interface {
	Create(ctx context.Context, path ConsumptionPath, in CreateConsumptionInput) (*domain.ConsumptionRecord, error)
	List(ctx context.Context, path ConsumptionPath, period domain.PeriodKind) ([]*domain.ConsumptionRecord, error)
	Get(ctx context.Context, userID, recordID string) (*domain.ConsumptionRecord, error)
	Update(ctx context.Context, userID, recordID string, in UpdateConsumptionInput) (*domain.ConsumptionRecord, error)
	Delete(ctx context.Context, userID, recordID string) error
}
