package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

const collectionConsumptions = "consumptions"

type ConsumptionRepository struct {
	col *mongo.Collection
}

func NewConsumptionRepository(db *mongo.Database) *ConsumptionRepository {
	return &ConsumptionRepository{col: db.Collection(collectionConsumptions)}
}

// consumptionDoc stores the tagged target as exactly one of the three id
// fields; the partial unique indexes in EnsureIndexes hang off them.
type consumptionDoc struct {
	ID            string `bson:"_id"`
	PropertyID    string `bson:"property_id,omitempty"`
	AreaID        string `bson:"area_id,omitempty"`
	DeviceID      string `bson:"device_id,omitempty"`
	Period        string `bson:"period"`
	ReferenceDate int64  `bson:"reference_date"`
	KwhConsumed   string `bson:"kwh_consumed"`
	CostBrl       string `bson:"cost_brl"`
	Notes         string `bson:"notes,omitempty"`
	CreatedAt     int64  `bson:"created_at"`
	UpdatedAt     int64  `bson:"updated_at"`
}

func targetField(kind domain.TargetKind) string {
	switch kind {
	case domain.TargetArea:
		return "area_id"
	case domain.TargetDevice:
		return "device_id"
	default:
		return "property_id"
	}
}

func toConsumptionDoc(r *domain.ConsumptionRecord) consumptionDoc {
	doc := consumptionDoc{
		ID:            r.ID,
		Period:        string(r.Period),
		ReferenceDate: r.ReferenceDate.Unix(),
		KwhConsumed:   r.KwhConsumed.String(),
		CostBrl:       r.CostBrl.String(),
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt.Unix(),
		UpdatedAt:     r.UpdatedAt.Unix(),
	}
	switch r.Target.Kind {
	case domain.TargetArea:
		doc.AreaID = r.Target.ID
	case domain.TargetDevice:
		doc.DeviceID = r.Target.ID
	default:
		doc.PropertyID = r.Target.ID
	}
	return doc
}

func (d consumptionDoc) toDomain() (*domain.ConsumptionRecord, error) {
	kwh, err := decimal.NewFromString(d.KwhConsumed)
	if err != nil {
		return nil, fmt.Errorf("decode kwh_consumed: %w", err)
	}
	cost, err := decimal.NewFromString(d.CostBrl)
	if err != nil {
		return nil, fmt.Errorf("decode cost_brl: %w", err)
	}

	var target domain.ConsumptionTarget
	switch {
	case d.AreaID != "":
		target = domain.NewAreaTarget(d.AreaID)
	case d.DeviceID != "":
		target = domain.NewDeviceTarget(d.DeviceID)
	default:
		target = domain.NewPropertyTarget(d.PropertyID)
	}

	return &domain.ConsumptionRecord{
		ID:            d.ID,
		Target:        target,
		Period:        domain.PeriodKind(d.Period),
		ReferenceDate: unixToTime(d.ReferenceDate),
		KwhConsumed:   kwh,
		CostBrl:       cost,
		Notes:         d.Notes,
		CreatedAt:     unixToTime(d.CreatedAt),
		UpdatedAt:     unixToTime(d.UpdatedAt),
	}, nil
}

func (r *ConsumptionRepository) Create(ctx context.Context, rec *domain.ConsumptionRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toConsumptionDoc(rec)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicatePeriod
		}
		return fmt.Errorf("insert consumption: %w", err)
	}
	return nil
}

func (r *ConsumptionRepository) FindByID(ctx context.Context, id string) (*domain.ConsumptionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d consumptionDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrConsumptionNotFound
		}
		return nil, fmt.Errorf("find consumption: %w", err)
	}
	return d.toDomain()
}

func (r *ConsumptionRepository) FindByPeriod(ctx context.Context, target domain.ConsumptionTarget, period domain.PeriodKind, refDate time.Time) (*domain.ConsumptionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		targetField(target.Kind): target.ID,
		"period":                 string(period),
		"reference_date":         refDate.Unix(),
	}
	var d consumptionDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrConsumptionNotFound
		}
		return nil, fmt.Errorf("find consumption by period: %w", err)
	}
	return d.toDomain()
}

// List returns the target's records most recent first.
func (r *ConsumptionRepository) List(ctx context.Context, filter ports.ConsumptionFilter) ([]*domain.ConsumptionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := bson.M{targetField(filter.Target.Kind): filter.Target.ID}
	if filter.Period != "" {
		q["period"] = string(filter.Period)
	}

	opts := options.Find().SetSort(bson.D{{Key: "reference_date", Value: -1}})
	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("list consumptions: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.ConsumptionRecord
	for cur.Next(ctx) {
		var d consumptionDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode consumption: %w", err)
		}
		rec, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, cur.Err()
}

func (r *ConsumptionRepository) Update(ctx context.Context, rec *domain.ConsumptionRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": rec.ID}, toConsumptionDoc(rec))
	if err != nil {
		return fmt.Errorf("update consumption: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrConsumptionNotFound
	}
	return nil
}

func (r *ConsumptionRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete consumption: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrConsumptionNotFound
	}
	return nil
}

func (r *ConsumptionRepository) DeleteByTarget(ctx context.Context, target domain.ConsumptionTarget) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{targetField(target.Kind): target.ID}); err != nil {
		return fmt.Errorf("delete consumptions: %w", err)
	}
	return nil
}
