package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/voltio/energy-tracking-api/internal/api/metrics"
	"github.com/voltio/energy-tracking-api/internal/core/domain"
	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

// ConsumptionService implements the consumption ledger: target resolution
// over the claimed ownership chain, the duplicate-period guard, and cost
// derivation from the property's tariff at write time.
type ConsumptionService struct {
	consumptions ports.ConsumptionRepository
	distributors ports.DistributorRepository
	properties   ports.PropertyRepository
	areas        ports.AreaRepository
	devices      ports.DeviceRepository
	chain        *chainVerifier
	clock        ports.Clock
	logger       zerolog.Logger
}

func NewConsumptionService(
	consumptions ports.ConsumptionRepository,
	distributors ports.DistributorRepository,
	properties ports.PropertyRepository,
	areas ports.AreaRepository,
	devices ports.DeviceRepository,
	clock ports.Clock,
	logger zerolog.Logger,
) *ConsumptionService {
	return &ConsumptionService{
		consumptions: consumptions,
		distributors: distributors,
		properties:   properties,
		areas:        areas,
		devices:      devices,
		chain:        newChainVerifier(properties, areas, devices),
		clock:        clock,
		logger:       logger,
	}
}

// resolveTarget validates the claimed path to the depth it names and returns
// the verified property plus the tagged target at the deepest level.
func (s *ConsumptionService) resolveTarget(ctx context.Context, path ports.ConsumptionPath) (*domain.Property, domain.ConsumptionTarget, error) {
	switch {
	case path.DeviceID != "":
		p, _, d, err := s.chain.device(ctx, path.UserID, path.PropertyID, path.AreaID, path.DeviceID)
		if err != nil {
			return nil, domain.ConsumptionTarget{}, err
		}
		return p, domain.NewDeviceTarget(d.ID), nil
	case path.AreaID != "":
		p, a, err := s.chain.area(ctx, path.UserID, path.PropertyID, path.AreaID)
		if err != nil {
			return nil, domain.ConsumptionTarget{}, err
		}
		return p, domain.NewAreaTarget(a.ID), nil
	default:
		p, err := s.chain.property(ctx, path.UserID, path.PropertyID)
		if err != nil {
			return nil, domain.ConsumptionTarget{}, err
		}
		return p, domain.NewPropertyTarget(p.ID), nil
	}
}

// tariffPrice resolves the property's linked distributor. A dangling
// reference is exceptional (the referential guard on distributor deletion
// should make it impossible) and surfaces as NotFound.
func (s *ConsumptionService) tariffPrice(ctx context.Context, p *domain.Property) (*domain.Distributor, error) {
	d, err := s.distributors.FindByID(ctx, p.DistributorID)
	if err != nil {
		if errors.Is(err, domain.ErrDistributorNotFound) {
			return nil, fmt.Errorf("linked distributor not found: %w", domain.ErrDistributorNotFound)
		}
		return nil, err
	}
	return d, nil
}

func (s *ConsumptionService) Create(ctx context.Context, path ports.ConsumptionPath, in ports.CreateConsumptionInput) (*domain.ConsumptionRecord, error) {
	if !domain.ValidPeriod(in.Period) {
		return nil, domain.NewValidationError("period must be daily, monthly or annual")
	}
	if in.ReferenceDate.IsZero() {
		return nil, domain.NewValidationError("reference_date is required")
	}
	if !in.KwhConsumed.IsPositive() {
		return nil, domain.NewValidationError("kwh_consumed must be positive")
	}

	property, target, err := s.resolveTarget(ctx, path)
	if err != nil {
		return nil, err
	}
	distributor, err := s.tariffPrice(ctx, property)
	if err != nil {
		return nil, err
	}

	// Friendly pre-check for the duplicate period bucket. The unique index
	// behind ConsumptionRepository.Create is the actual correctness
	// guarantee under concurrent creations.
	// The reference date is stored date-truncated in UTC so the uniqueness
	// comparison is well defined; period normalization beyond that (first of
	// month, first of year) stays the caller's responsibility.
	refDate := in.ReferenceDate.UTC().Truncate(24 * time.Hour)
	if _, err := s.consumptions.FindByPeriod(ctx, target, in.Period, refDate); err == nil {
		metrics.ConsumptionConflictsTotal.Inc()
		return nil, domain.ErrDuplicatePeriod
	} else if !errors.Is(err, domain.ErrConsumptionNotFound) {
		return nil, err
	}

	now := s.clock.Now()
	rec := &domain.ConsumptionRecord{
		ID:            newID(),
		Target:        target,
		Period:        in.Period,
		ReferenceDate: refDate,
		KwhConsumed:   in.KwhConsumed,
		CostBrl:       in.KwhConsumed.Mul(distributor.KwhPrice),
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.consumptions.Create(ctx, rec); err != nil {
		if errors.Is(err, domain.ErrDuplicatePeriod) {
			metrics.ConsumptionConflictsTotal.Inc()
		}
		return nil, err
	}

	metrics.ConsumptionsCreatedTotal.WithLabelValues(string(target.Kind)).Inc()
	s.logger.Info().
		Str("record_id", rec.ID).
		Str("target", string(target.Kind)).
		Str("period", string(rec.Period)).
		Str("cost_brl", rec.CostBrl.String()).
		Msg("consumption recorded")
	return rec, nil
}

func (s *ConsumptionService) List(ctx context.Context, path ports.ConsumptionPath, period domain.PeriodKind) ([]*domain.ConsumptionRecord, error) {
	if period != "" && !domain.ValidPeriod(period) {
		return nil, domain.NewValidationError("period must be daily, monthly or annual")
	}
	_, target, err := s.resolveTarget(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.consumptions.List(ctx, ports.ConsumptionFilter{Target: target, Period: period})
}

// owned resolves a record by id alone and re-checks that the property it
// ultimately hangs under belongs to the requester. The area/device ids of
// the original create path are intentionally not re-verified here; the
// operation is flattened to property scope.
func (s *ConsumptionService) owned(ctx context.Context, userID, recordID string) (*domain.ConsumptionRecord, *domain.Property, error) {
	rec, err := s.consumptions.FindByID(ctx, recordID)
	if err != nil {
		return nil, nil, err
	}

	propertyID := rec.Target.ID
	switch rec.Target.Kind {
	case domain.TargetArea:
		a, err := s.areas.FindByID(ctx, rec.Target.ID)
		if err != nil {
			return nil, nil, domain.ErrConsumptionNotFound
		}
		propertyID = a.PropertyID
	case domain.TargetDevice:
		d, err := s.devices.FindByID(ctx, rec.Target.ID)
		if err != nil {
			return nil, nil, domain.ErrConsumptionNotFound
		}
		a, err := s.areas.FindByID(ctx, d.AreaID)
		if err != nil {
			return nil, nil, domain.ErrConsumptionNotFound
		}
		propertyID = a.PropertyID
	}

	property, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		return nil, nil, domain.ErrConsumptionNotFound
	}
	if property.UserID != userID {
		metrics.OwnershipDeniedTotal.WithLabelValues("consumption").Inc()
		return nil, nil, domain.ErrForbidden
	}
	return rec, property, nil
}

func (s *ConsumptionService) Get(ctx context.Context, userID, recordID string) (*domain.ConsumptionRecord, error) {
	rec, _, err := s.owned(ctx, userID, recordID)
	return rec, err
}

// Update mutates kwh and notes only; the target and period bucket are fixed
// at creation. Cost is recomputed from the current tariff price only when
// KwhConsumed is part of the payload — a notes-only edit must not silently
// refresh a stale cost.
func (s *ConsumptionService) Update(ctx context.Context, userID, recordID string, in ports.UpdateConsumptionInput) (*domain.ConsumptionRecord, error) {
	rec, property, err := s.owned(ctx, userID, recordID)
	if err != nil {
		return nil, err
	}

	if in.KwhConsumed != nil {
		if !in.KwhConsumed.IsPositive() {
			return nil, domain.NewValidationError("kwh_consumed must be positive")
		}
		distributor, err := s.tariffPrice(ctx, property)
		if err != nil {
			return nil, err
		}
		rec.KwhConsumed = *in.KwhConsumed
		rec.CostBrl = in.KwhConsumed.Mul(distributor.KwhPrice)
	}
	if in.Notes != nil {
		rec.Notes = *in.Notes
	}

	rec.UpdatedAt = s.clock.Now()
	if err := s.consumptions.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *ConsumptionService) Delete(ctx context.Context, userID, recordID string) error {
	if _, _, err := s.owned(ctx, userID, recordID); err != nil {
		return err
	}
	return s.consumptions.Delete(ctx, recordID)
}
