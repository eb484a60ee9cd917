package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

const maxDescriptionLen = 500

// AreaService manages subdivisions under an owned property. Every operation
// re-walks the ownership chain first.
type AreaService struct {
	areas  ports.AreaRepository
	chain  *chainVerifier
	purger *cascadePurger
	clock  ports.Clock
	logger zerolog.Logger
}

func NewAreaService(
	properties ports.PropertyRepository,
	areas ports.AreaRepository,
	devices ports.DeviceRepository,
	consumptions ports.ConsumptionRepository,
	iot ports.IoTConfigRepository,
	clock ports.Clock,
	logger zerolog.Logger,
) *AreaService {
	return &AreaService{
		areas:  areas,
		chain:  newChainVerifier(properties, areas, devices),
		purger: newCascadePurger(properties, areas, devices, consumptions, iot),
		clock:  clock,
		logger: logger,
	}
}

func (s *AreaService) Create(ctx context.Context, userID, propertyID string, in ports.CreateAreaInput) (*domain.Area, error) {
	if in.Name == "" {
		return nil, domain.NewValidationError("name is required")
	}
	if len(in.Description) > maxDescriptionLen {
		return nil, domain.NewValidationError("description is too long")
	}
	if _, err := s.chain.property(ctx, userID, propertyID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	a := &domain.Area{
		ID:          newID(),
		PropertyID:  propertyID,
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.areas.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AreaService) Get(ctx context.Context, userID, propertyID, areaID string) (*domain.Area, error) {
	_, a, err := s.chain.area(ctx, userID, propertyID, areaID)
	return a, err
}

func (s *AreaService) List(ctx context.Context, userID, propertyID string) ([]*domain.Area, error) {
	if _, err := s.chain.property(ctx, userID, propertyID); err != nil {
		return nil, err
	}
	return s.areas.ListByProperty(ctx, propertyID)
}

func (s *AreaService) Update(ctx context.Context, userID, propertyID, areaID string, in ports.UpdateAreaInput) (*domain.Area, error) {
	_, a, err := s.chain.area(ctx, userID, propertyID, areaID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, domain.NewValidationError("name must not be empty")
		}
		a.Name = *in.Name
	}
	if in.Description != nil {
		if len(*in.Description) > maxDescriptionLen {
			return nil, domain.NewValidationError("description is too long")
		}
		a.Description = *in.Description
	}

	a.UpdatedAt = s.clock.Now()
	if err := s.areas.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AreaService) Delete(ctx context.Context, userID, propertyID, areaID string) error {
	if _, _, err := s.chain.area(ctx, userID, propertyID, areaID); err != nil {
		return err
	}
	return s.purger.purgeArea(ctx, areaID)
}
