package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
)

const (
	collectionTokens = "auth_tokens"
	collectionResets = "password_resets"
)

type TokenRepository struct {
	col *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{col: db.Collection(collectionTokens)}
}

type tokenDoc struct {
	ID        string `bson:"_id"`
	UserID    string `bson:"user_id"`
	Token     string `bson:"token"`
	Channel   string `bson:"channel"`
	ExpiresAt *int64 `bson:"expires_at,omitempty"`
	RevokedAt *int64 `bson:"revoked_at,omitempty"`
	CreatedAt int64  `bson:"created_at"`
}

func optUnix(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ts := t.Unix()
	return &ts
}

func optTime(ts *int64) *time.Time {
	if ts == nil {
		return nil
	}
	t := time.Unix(*ts, 0).UTC()
	return &t
}

func (r *TokenRepository) Create(ctx context.Context, t *domain.AuthToken) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := tokenDoc{
		ID:        t.ID,
		UserID:    t.UserID,
		Token:     t.Token,
		Channel:   string(t.Channel),
		ExpiresAt: optUnix(t.ExpiresAt),
		RevokedAt: optUnix(t.RevokedAt),
		CreatedAt: t.CreatedAt.Unix(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (r *TokenRepository) FindByToken(ctx context.Context, token string) (*domain.AuthToken, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d tokenDoc
	if err := r.col.FindOne(ctx, bson.M{"token": token}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	return &domain.AuthToken{
		ID:        d.ID,
		UserID:    d.UserID,
		Token:     d.Token,
		Channel:   domain.TokenChannel(d.Channel),
		ExpiresAt: optTime(d.ExpiresAt),
		RevokedAt: optTime(d.RevokedAt),
		CreatedAt: unixToTime(d.CreatedAt),
	}, nil
}

func (r *TokenRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"revoked_at": at.Unix()}},
	)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUnauthorized
	}
	return nil
}

func (r *TokenRepository) DeleteByUser(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	return nil
}

// PasswordResetRepository stores single-use recovery tokens.
type PasswordResetRepository struct {
	col *mongo.Collection
}

func NewPasswordResetRepository(db *mongo.Database) *PasswordResetRepository {
	return &PasswordResetRepository{col: db.Collection(collectionResets)}
}

type resetDoc struct {
	ID        string `bson:"_id"`
	UserID    string `bson:"user_id"`
	Token     string `bson:"token"`
	ExpiresAt int64  `bson:"expires_at"`
	UsedAt    *int64 `bson:"used_at,omitempty"`
	CreatedAt int64  `bson:"created_at"`
}

func (r *PasswordResetRepository) Create(ctx context.Context, p *domain.PasswordReset) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := resetDoc{
		ID:        p.ID,
		UserID:    p.UserID,
		Token:     p.Token,
		ExpiresAt: p.ExpiresAt.Unix(),
		UsedAt:    optUnix(p.UsedAt),
		CreatedAt: p.CreatedAt.Unix(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert password reset: %w", err)
	}
	return nil
}

func (r *PasswordResetRepository) FindByToken(ctx context.Context, token string) (*domain.PasswordReset, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d resetDoc
	if err := r.col.FindOne(ctx, bson.M{"token": token}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("find password reset: %w", err)
	}
	return &domain.PasswordReset{
		ID:        d.ID,
		UserID:    d.UserID,
		Token:     d.Token,
		ExpiresAt: unixToTime(d.ExpiresAt),
		UsedAt:    optTime(d.UsedAt),
		CreatedAt: unixToTime(d.CreatedAt),
	}, nil
}

func (r *PasswordResetRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"used_at": at.Unix()}},
	)
	if err != nil {
		return fmt.Errorf("mark reset used: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrResetTokenInvalid
	}
	return nil
}

func (r *PasswordResetRepository) DeleteByUser(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("delete password resets: %w", err)
	}
	return nil
}
