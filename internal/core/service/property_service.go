package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/voltio/energy-tracking-api/internal/api/metrics"
	"github.com/voltio/energy-tracking-api/internal/core/domain"
	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

// PropertyService manages the hierarchy roots. Creating or repointing a
// property runs the same-owner distributor guard; deleting cascades.
type PropertyService struct {
	properties   ports.PropertyRepository
	distributors ports.DistributorRepository
	chain        *chainVerifier
	purger       *cascadePurger
	clock        ports.Clock
	logger       zerolog.Logger
}

func NewPropertyService(
	properties ports.PropertyRepository,
	distributors ports.DistributorRepository,
	areas ports.AreaRepository,
	devices ports.DeviceRepository,
	consumptions ports.ConsumptionRepository,
	iot ports.IoTConfigRepository,
	clock ports.Clock,
	logger zerolog.Logger,
) *PropertyService {
	return &PropertyService{
		properties:   properties,
		distributors: distributors,
		chain:        newChainVerifier(properties, areas, devices),
		purger:       newCascadePurger(properties, areas, devices, consumptions, iot),
		clock:        clock,
		logger:       logger,
	}
}

// guardDistributor confirms the referenced distributor exists and belongs to
// the same user: absent is NotFound, another owner is Forbidden.
func (s *PropertyService) guardDistributor(ctx context.Context, userID, distributorID string) error {
	d, err := s.distributors.FindByID(ctx, distributorID)
	if err != nil {
		return err
	}
	if d.UserID != userID {
		metrics.OwnershipDeniedTotal.WithLabelValues("distributor").Inc()
		return domain.ErrForbidden
	}
	return nil
}

func validateAddress(state, postalCode string) error {
	if state != "" && !domain.ValidStateCode(state) {
		return domain.NewValidationError("state must be a valid state code")
	}
	if postalCode != "" && !domain.ValidPostalCode(postalCode) {
		return domain.NewValidationError("postal_code is invalid")
	}
	return nil
}

func (s *PropertyService) Create(ctx context.Context, userID string, in ports.CreatePropertyInput) (*domain.Property, error) {
	if in.Name == "" {
		return nil, domain.NewValidationError("name is required")
	}
	if err := validateAddress(in.State, in.PostalCode); err != nil {
		return nil, err
	}
	if err := s.guardDistributor(ctx, userID, in.DistributorID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	p := &domain.Property{
		ID:            newID(),
		UserID:        userID,
		DistributorID: in.DistributorID,
		Name:          in.Name,
		Street:        in.Street,
		City:          in.City,
		State:         in.State,
		PostalCode:    in.PostalCode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.properties.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Str("property_id", p.ID).Str("user_id", userID).Msg("property created")
	return p, nil
}

func (s *PropertyService) Get(ctx context.Context, userID, id string) (*domain.Property, error) {
	return s.chain.property(ctx, userID, id)
}

func (s *PropertyService) List(ctx context.Context, userID string) ([]*domain.Property, error) {
	return s.properties.ListByUser(ctx, userID)
}

func (s *PropertyService) Update(ctx context.Context, userID, id string, in ports.UpdatePropertyInput) (*domain.Property, error) {
	p, err := s.chain.property(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.DistributorID != nil && *in.DistributorID != p.DistributorID {
		if err := s.guardDistributor(ctx, userID, *in.DistributorID); err != nil {
			return nil, err
		}
		p.DistributorID = *in.DistributorID
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, domain.NewValidationError("name must not be empty")
		}
		p.Name = *in.Name
	}
	if in.Street != nil {
		p.Street = *in.Street
	}
	if in.City != nil {
		p.City = *in.City
	}
	if in.State != nil {
		p.State = *in.State
	}
	if in.PostalCode != nil {
		p.PostalCode = *in.PostalCode
	}
	if err := validateAddress(p.State, p.PostalCode); err != nil {
		return nil, err
	}

	p.UpdatedAt = s.clock.Now()
	if err := s.properties.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PropertyService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.chain.property(ctx, userID, id); err != nil {
		return err
	}
	if err := s.purger.purgeProperty(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("property_id", id).Msg("property deleted")
	return nil
}
