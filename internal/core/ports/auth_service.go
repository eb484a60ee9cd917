package ports

import (
	"context"
	"time"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
)

// Clock abstracts "now" so expiry logic is deterministic under test.
type Clock interface {
	Now() time.Time
}

// Mailer delivers the password-reset notification. Implementations must not
// reveal whether the address belongs to an account.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// RevocationCache is the fast-path lookup consulted before the token ledger.
// The ledger stays authoritative; a cache miss is not a verdict.
type RevocationCache interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	MarkRevoked(ctx context.Context, tokenID string, ttl time.Duration) error
}

// SignUpInput carries registration data. Individual accounts fill
// FirstName/LastName/Cpf, company accounts LegalName/TradeName/Cnpj.
type SignUpInput struct {
	Email    string
	Password string
	Kind     domain.PersonKind

	FirstName string
	LastName  string
	Cpf       string

	LegalName string
	TradeName string
	Cnpj      string
}

// AuthService covers the authentication boundary: signup, login/logout with
// the token ledger, and the single-use password-reset flow.
type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*domain.User, error)
	// Login returns the signed JWT handed to the client.
	Login(ctx context.Context, email, password string, channel domain.TokenChannel) (string, *domain.User, error)
	// Logout revokes the ledger entry behind the raw token. Revoking an
	// already-revoked token fails with domain.ErrTokenRevoked.
	Logout(ctx context.Context, rawToken string) error
	// ValidateToken verifies signature, ledger state and expiry, returning
	// the owning user id.
	ValidateToken(ctx context.Context, rawToken string) (string, error)
	// ForgotPassword always succeeds from the caller's perspective; the
	// notification side effect fires only for existing accounts.
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}
