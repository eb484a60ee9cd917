package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/voltio/energy-tracking-api/internal/api/metrics"
	"github.com/voltio/energy-tracking-api/internal/core/domain"
	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

const (
	defaultWebTokenTTL = 24 * time.Hour
	defaultResetTTL    = 30 * time.Minute
	minPasswordLen     = 8
)

// AuthService implements signup, login/logout against the token ledger, and
// the single-use password-reset flow.
type AuthService struct {
	users    ports.UserRepository
	tokens   ports.TokenRepository
	resets   ports.PasswordResetRepository
	revoked  ports.RevocationCache
	mailer   ports.Mailer
	clock    ports.Clock
	secret   string
	webTTL   time.Duration
	resetTTL time.Duration
	logger   zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	tokens ports.TokenRepository,
	resets ports.PasswordResetRepository,
	revoked ports.RevocationCache,
	mailer ports.Mailer,
	clock ports.Clock,
	secret string,
	webTTL, resetTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	if webTTL <= 0 {
		webTTL = defaultWebTokenTTL
	}
	if resetTTL <= 0 {
		resetTTL = defaultResetTTL
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		resets:   resets,
		revoked:  revoked,
		mailer:   mailer,
		clock:    clock,
		secret:   secret,
		webTTL:   webTTL,
		resetTTL: resetTTL,
		logger:   logger,
	}
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (s *AuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*domain.User, error) {
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, domain.NewValidationError("email is required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, domain.NewValidationError("password must be at least 8 characters")
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(in.Email),
		Kind:      in.Kind,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch in.Kind {
	case domain.KindIndividual:
		cpf := onlyDigits(in.Cpf)
		if in.FirstName == "" || in.LastName == "" {
			return nil, domain.NewValidationError("first and last name are required")
		}
		if len(cpf) != 11 {
			return nil, domain.NewValidationError("cpf must have 11 digits")
		}
		user.FirstName = in.FirstName
		user.LastName = in.LastName
		user.Cpf = cpf
	case domain.KindCompany:
		cnpj := onlyDigits(in.Cnpj)
		if in.LegalName == "" {
			return nil, domain.NewValidationError("legal name is required")
		}
		if len(cnpj) != 14 {
			return nil, domain.NewValidationError("cnpj must have 14 digits")
		}
		user.LegalName = in.LegalName
		user.TradeName = in.TradeName
		user.Cnpj = cnpj
	default:
		return nil, domain.NewValidationError("kind must be individual or company")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", created.ID).Str("kind", string(created.Kind)).Msg("user registered")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string, channel domain.TokenChannel) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}
	if channel != domain.ChannelWeb && channel != domain.ChannelMobile {
		return "", nil, domain.NewValidationError("channel must be web or mobile")
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	now := s.clock.Now()
	entry := &domain.AuthToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     uuid.NewString(),
		Channel:   channel,
		CreatedAt: now,
	}
	// Mobile tokens never time-expire; only web tokens carry an expiry.
	if channel == domain.ChannelWeb {
		exp := now.Add(s.webTTL)
		entry.ExpiresAt = &exp
	}

	signed, err := s.signToken(user.ID, entry)
	if err != nil {
		return "", nil, err
	}
	if err := s.tokens.Create(ctx, entry); err != nil {
		return "", nil, err
	}

	metrics.LoginsTotal.WithLabelValues(string(channel)).Inc()
	s.logger.Info().Str("user_id", user.ID).Str("channel", string(channel)).Msg("login")
	return signed, user, nil
}

func (s *AuthService) signToken(userID string, entry *domain.AuthToken) (string, error) {
	claims := jwt.MapClaims{
		"sub":     userID,
		"jti":     entry.Token,
		"channel": string(entry.Channel),
		"iat":     entry.CreatedAt.Unix(),
	}
	if entry.ExpiresAt != nil {
		claims["exp"] = entry.ExpiresAt.Unix()
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.secret))
}

// parseToken verifies the signature and returns the ledger key (jti). Expiry
// is checked against the injected clock, not the process clock.
func (s *AuthService) parseToken(raw string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.secret), nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !tkn.Valid {
		return "", domain.ErrUnauthorized
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return "", domain.ErrUnauthorized
	}
	return jti, nil
}

func (s *AuthService) ValidateToken(ctx context.Context, raw string) (string, error) {
	jti, err := s.parseToken(raw)
	if err != nil {
		return "", err
	}

	// Fast path: the revocation cache. The ledger below stays authoritative,
	// so a cache error only costs a lookup.
	if s.revoked != nil {
		hit, err := s.revoked.IsRevoked(ctx, jti)
		if err != nil {
			s.logger.Warn().Err(err).Msg("revocation cache lookup failed")
		} else if hit {
			return "", domain.ErrUnauthorized
		}
	}

	entry, err := s.tokens.FindByToken(ctx, jti)
	if err != nil {
		return "", domain.ErrUnauthorized
	}
	if !entry.Active(s.clock.Now()) {
		return "", domain.ErrUnauthorized
	}
	return entry.UserID, nil
}

func (s *AuthService) Logout(ctx context.Context, raw string) error {
	jti, err := s.parseToken(raw)
	if err != nil {
		return err
	}
	entry, err := s.tokens.FindByToken(ctx, jti)
	if err != nil {
		return domain.ErrUnauthorized
	}
	if entry.RevokedAt != nil {
		return domain.ErrTokenRevoked
	}

	now := s.clock.Now()
	if err := s.tokens.Revoke(ctx, entry.ID, now); err != nil {
		return err
	}
	if s.revoked != nil {
		ttl := defaultWebTokenTTL
		if entry.ExpiresAt != nil {
			ttl = entry.ExpiresAt.Sub(now)
		}
		if ttl > 0 {
			if err := s.revoked.MarkRevoked(ctx, jti, ttl); err != nil {
				s.logger.Warn().Err(err).Msg("revocation cache write failed")
			}
		}
	}
	s.logger.Info().Str("user_id", entry.UserID).Msg("logout")
	return nil
}

// ForgotPassword returns success whether or not the email is registered, so
// the endpoint cannot be used to enumerate accounts. The notification side
// effect fires only for real accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Debug().Msg("password reset requested for unknown email")
			return nil
		}
		return err
	}

	now := s.clock.Now()
	reset := &domain.PasswordReset{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(s.resetTTL),
		CreatedAt: now,
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, reset.Token); err != nil {
		// Delivery failure must not change the response shape.
		s.logger.Error().Err(err).Msg("password reset mail delivery failed")
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return domain.NewValidationError("password must be at least 8 characters")
	}

	reset, err := s.resets.FindByToken(ctx, token)
	if err != nil {
		return domain.ErrResetTokenInvalid
	}
	now := s.clock.Now()
	if !reset.Usable(now) {
		return domain.ErrResetTokenInvalid
	}

	user, err := s.users.FindByID(ctx, reset.UserID)
	if err != nil {
		return domain.ErrResetTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if err := s.resets.MarkUsed(ctx, reset.ID, now); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", user.ID).Msg("password reset")
	return nil
}
