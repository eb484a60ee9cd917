package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
)

const collectionDistributors = "distributors"

type DistributorRepository struct {
	col *mongo.Collection
}

func NewDistributorRepository(db *mongo.Database) *DistributorRepository {
	return &DistributorRepository{col: db.Collection(collectionDistributors)}
}

// Decimal fields are stored as strings so the fixed-point values round-trip
// exactly; costs derived from them must be reproducible byte for byte.
type distributorDoc struct {
	ID          string  `bson:"_id"`
	UserID      string  `bson:"user_id"`
	Name        string  `bson:"name"`
	Cnpj        string  `bson:"cnpj"`
	System      string  `bson:"electrical_system"`
	VoltageV    int     `bson:"voltage_v"`
	KwhPrice    string  `bson:"kwh_price"`
	TaxRate     *string `bson:"tax_rate,omitempty"`
	LightingFee *string `bson:"lighting_fee,omitempty"`
	CreatedAt   int64   `bson:"created_at"`
	UpdatedAt   int64   `bson:"updated_at"`
}

func optDecimalStr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func optDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func toDistributorDoc(d *domain.Distributor) distributorDoc {
	return distributorDoc{
		ID:          d.ID,
		UserID:      d.UserID,
		Name:        d.Name,
		Cnpj:        d.Cnpj,
		System:      string(d.System),
		VoltageV:    d.VoltageV,
		KwhPrice:    d.KwhPrice.String(),
		TaxRate:     optDecimalStr(d.TaxRate),
		LightingFee: optDecimalStr(d.LightingFee),
		CreatedAt:   d.CreatedAt.Unix(),
		UpdatedAt:   d.UpdatedAt.Unix(),
	}
}

func (doc distributorDoc) toDomain() (*domain.Distributor, error) {
	price, err := decimal.NewFromString(doc.KwhPrice)
	if err != nil {
		return nil, fmt.Errorf("decode kwh_price: %w", err)
	}
	taxRate, err := optDecimal(doc.TaxRate)
	if err != nil {
		return nil, fmt.Errorf("decode tax_rate: %w", err)
	}
	fee, err := optDecimal(doc.LightingFee)
	if err != nil {
		return nil, fmt.Errorf("decode lighting_fee: %w", err)
	}
	return &domain.Distributor{
		ID:          doc.ID,
		UserID:      doc.UserID,
		Name:        doc.Name,
		Cnpj:        doc.Cnpj,
		System:      domain.ElectricalSystem(doc.System),
		VoltageV:    doc.VoltageV,
		KwhPrice:    price,
		TaxRate:     taxRate,
		LightingFee: fee,
		CreatedAt:   unixToTime(doc.CreatedAt),
		UpdatedAt:   unixToTime(doc.UpdatedAt),
	}, nil
}

func (r *DistributorRepository) Create(ctx context.Context, d *domain.Distributor) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toDistributorDoc(d)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDistributorExists
		}
		return fmt.Errorf("insert distributor: %w", err)
	}
	return nil
}

func (r *DistributorRepository) FindByID(ctx context.Context, id string) (*domain.Distributor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc distributorDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDistributorNotFound
		}
		return nil, fmt.Errorf("find distributor: %w", err)
	}
	return doc.toDomain()
}

func (r *DistributorRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Distributor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("list distributors: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Distributor
	for cur.Next(ctx) {
		var doc distributorDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode distributor: %w", err)
		}
		d, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, cur.Err()
}

func (r *DistributorRepository) Update(ctx context.Context, d *domain.Distributor) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": d.ID}, toDistributorDoc(d))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDistributorExists
		}
		return fmt.Errorf("update distributor: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrDistributorNotFound
	}
	return nil
}

func (r *DistributorRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete distributor: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrDistributorNotFound
	}
	return nil
}

func (r *DistributorRepository) DeleteByUser(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("delete distributors: %w", err)
	}
	return nil
}
