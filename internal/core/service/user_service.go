package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

// UserService implements profile operations and full account deletion.
type UserService struct {
	users        ports.UserRepository
	tokens       ports.TokenRepository
	resets       ports.PasswordResetRepository
	distributors ports.DistributorRepository
	properties   ports.PropertyRepository
	purger       *cascadePurger
	clock        ports.Clock
	logger       zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	tokens ports.TokenRepository,
	resets ports.PasswordResetRepository,
	distributors ports.DistributorRepository,
	properties ports.PropertyRepository,
	areas ports.AreaRepository,
	devices ports.DeviceRepository,
	consumptions ports.ConsumptionRepository,
	iot ports.IoTConfigRepository,
	clock ports.Clock,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		users:        users,
		tokens:       tokens,
		resets:       resets,
		distributors: distributors,
		properties:   properties,
		purger:       newCascadePurger(properties, areas, devices, consumptions, iot),
		clock:        clock,
		logger:       logger,
	}
}

func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile applies the non-nil fields. The person kind and tax ids are
// immutable post-creation and have no update path.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := strings.ToLower(*in.Email)
		if email == "" || !strings.Contains(email, "@") {
			return nil, domain.NewValidationError("email is invalid")
		}
		user.Email = email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.LegalName != nil {
		user.LegalName = *in.LegalName
	}
	if in.TradeName != nil {
		user.TradeName = *in.TradeName
	}

	user.UpdatedAt = s.clock.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the account and everything it transitively owns.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}

	properties, err := s.properties.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, p := range properties {
		if err := s.purger.purgeProperty(ctx, p.ID); err != nil {
			return err
		}
	}
	if err := s.distributors.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.tokens.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.resets.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID).Msg("account deleted")
	return nil
}
