package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/voltio/energy-tracking-api/internal/api/metrics"
	"github.com/voltio/energy-tracking-api/internal/core/domain"
	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

// DistributorService manages the per-user tariff catalog.
type DistributorService struct {
	distributors ports.DistributorRepository
	properties   ports.PropertyRepository
	clock        ports.Clock
	logger       zerolog.Logger
}

func NewDistributorService(
	distributors ports.DistributorRepository,
	properties ports.PropertyRepository,
	clock ports.Clock,
	logger zerolog.Logger,
) *DistributorService {
	return &DistributorService{
		distributors: distributors,
		properties:   properties,
		clock:        clock,
		logger:       logger,
	}
}

func validateTariff(price decimal.Decimal, taxRate, fee *decimal.Decimal) error {
	if !price.IsPositive() {
		return domain.NewValidationError("kwh_price must be positive")
	}
	if taxRate != nil && (taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(1))) {
		return domain.NewValidationError("tax_rate must be between 0 and 1")
	}
	if fee != nil && fee.IsNegative() {
		return domain.NewValidationError("lighting_fee must not be negative")
	}
	return nil
}

func (s *DistributorService) Create(ctx context.Context, userID string, in ports.CreateDistributorInput) (*domain.Distributor, error) {
	if in.Name == "" {
		return nil, domain.NewValidationError("name is required")
	}
	cnpj := onlyDigits(in.Cnpj)
	if len(cnpj) != 14 {
		return nil, domain.NewValidationError("cnpj must have 14 digits")
	}
	if !domain.ValidSystem(in.System) {
		return nil, domain.NewValidationError("electrical_system must be monophasic, biphasic or triphasic")
	}
	if !domain.ValidVoltage(in.VoltageV) {
		return nil, domain.NewValidationError("voltage_v must be one of 110, 127, 220, 380")
	}
	if err := validateTariff(in.KwhPrice, in.TaxRate, in.LightingFee); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	d := &domain.Distributor{
		ID:          newID(),
		UserID:      userID,
		Name:        in.Name,
		Cnpj:        cnpj,
		System:      in.System,
		VoltageV:    in.VoltageV,
		KwhPrice:    in.KwhPrice,
		TaxRate:     in.TaxRate,
		LightingFee: in.LightingFee,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.distributors.Create(ctx, d); err != nil {
		return nil, err
	}
	s.logger.Info().Str("distributor_id", d.ID).Str("user_id", userID).Msg("distributor created")
	return d, nil
}

// owned resolves a distributor with the two-tier check: absent is NotFound,
// present but owned by someone else is Forbidden.
func (s *DistributorService) owned(ctx context.Context, userID, id string) (*domain.Distributor, error) {
	d, err := s.distributors.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.UserID != userID {
		metrics.OwnershipDeniedTotal.WithLabelValues("distributor").Inc()
		return nil, domain.ErrForbidden
	}
	return d, nil
}

func (s *DistributorService) Get(ctx context.Context, userID, id string) (*domain.Distributor, error) {
	return s.owned(ctx, userID, id)
}

func (s *DistributorService) List(ctx context.Context, userID string) ([]*domain.Distributor, error) {
	return s.distributors.ListByUser(ctx, userID)
}

func (s *DistributorService) Update(ctx context.Context, userID, id string, in ports.UpdateDistributorInput) (*domain.Distributor, error) {
	d, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, domain.NewValidationError("name must not be empty")
		}
		d.Name = *in.Name
	}
	if in.System != nil {
		if !domain.ValidSystem(*in.System) {
			return nil, domain.NewValidationError("electrical_system must be monophasic, biphasic or triphasic")
		}
		d.System = *in.System
	}
	if in.VoltageV != nil {
		if !domain.ValidVoltage(*in.VoltageV) {
			return nil, domain.NewValidationError("voltage_v must be one of 110, 127, 220, 380")
		}
		d.VoltageV = *in.VoltageV
	}
	if in.KwhPrice != nil {
		d.KwhPrice = *in.KwhPrice
	}
	if in.TaxRate != nil {
		d.TaxRate = in.TaxRate
	}
	if in.LightingFee != nil {
		d.LightingFee = in.LightingFee
	}
	if err := validateTariff(d.KwhPrice, d.TaxRate, d.LightingFee); err != nil {
		return nil, err
	}

	d.UpdatedAt = s.clock.Now()
	if err := s.distributors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete refuses to remove a distributor that any property still references,
// so the failure names the real cause instead of a storage-level violation.
func (s *DistributorService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	n, err := s.properties.CountByDistributor(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrDistributorInUse
	}
	return s.distributors.Delete(ctx, id)
}
