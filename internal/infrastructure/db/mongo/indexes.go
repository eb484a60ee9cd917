package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique indexes that back every business-level
// Conflict rule. The service-layer pre-checks (duplicate period, duplicate
// tariff) are best-effort UX; these indexes are the correctness guarantee
// under concurrent writers.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	users := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "cpf", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"cpf": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "cnpj", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"cnpj": bson.M{"$exists": true}}),
		},
	}
	if _, err := db.Collection(collectionUsers).Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	tokens := []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}
	if _, err := db.Collection(collectionTokens).Indexes().CreateMany(ctx, tokens); err != nil {
		return fmt.Errorf("tokens indexes: %w", err)
	}

	resets := []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}
	if _, err := db.Collection(collectionResets).Indexes().CreateMany(ctx, resets); err != nil {
		return fmt.Errorf("resets indexes: %w", err)
	}

	// One tax id per user; different users may register the same tax id.
	distributors := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "cnpj", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection(collectionDistributors).Indexes().CreateMany(ctx, distributors); err != nil {
		return fmt.Errorf("distributors indexes: %w", err)
	}

	properties := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "distributor_id", Value: 1}}},
	}
	if _, err := db.Collection(collectionProperties).Indexes().CreateMany(ctx, properties); err != nil {
		return fmt.Errorf("properties indexes: %w", err)
	}

	areas := []mongo.IndexModel{{Keys: bson.D{{Key: "property_id", Value: 1}}}}
	if _, err := db.Collection(collectionAreas).Indexes().CreateMany(ctx, areas); err != nil {
		return fmt.Errorf("areas indexes: %w", err)
	}

	devices := []mongo.IndexModel{{Keys: bson.D{{Key: "area_id", Value: 1}}}}
	if _, err := db.Collection(collectionDevices).Indexes().CreateMany(ctx, devices); err != nil {
		return fmt.Errorf("devices indexes: %w", err)
	}

	// One record per (target, period, reference date). The target is exactly
	// one of three fields, so each gets its own partial unique index.
	consumptions := make([]mongo.IndexModel, 0, 3)
	for _, field := range []string{"property_id", "area_id", "device_id"} {
		consumptions = append(consumptions, mongo.IndexModel{
			Keys: bson.D{
				{Key: field, Value: 1},
				{Key: "period", Value: 1},
				{Key: "reference_date", Value: 1},
			},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{field: bson.M{"$exists": true}}),
		})
	}
	if _, err := db.Collection(collectionConsumptions).Indexes().CreateMany(ctx, consumptions); err != nil {
		return fmt.Errorf("consumptions indexes: %w", err)
	}

	return nil
}
