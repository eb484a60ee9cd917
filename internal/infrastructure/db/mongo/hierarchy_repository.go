package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
)

const (
	collectionProperties = "properties"
	collectionAreas      = "areas"
	collectionDevices    = "devices"
	collectionIoTConfigs = "iot_configs"
)

// ── Properties ──────────────────────────────────────────────────────────────

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection(collectionProperties)}
}

type propertyDoc struct {
	ID            string `bson:"_id"`
	UserID        string `bson:"user_id"`
	DistributorID string `bson:"distributor_id"`
	Name          string `bson:"name"`
	Street        string `bson:"street,omitempty"`
	City          string `bson:"city,omitempty"`
	State         string `bson:"state,omitempty"`
	PostalCode    string `bson:"postal_code,omitempty"`
	CreatedAt     int64  `bson:"created_at"`
	UpdatedAt     int64  `bson:"updated_at"`
}

func toPropertyDoc(p *domain.Property) propertyDoc {
	return propertyDoc{
		ID:            p.ID,
		UserID:        p.UserID,
		DistributorID: p.DistributorID,
		Name:          p.Name,
		Street:        p.Street,
		City:          p.City,
		State:         p.State,
		PostalCode:    p.PostalCode,
		CreatedAt:     p.CreatedAt.Unix(),
		UpdatedAt:     p.UpdatedAt.Unix(),
	}
}

func (d propertyDoc) toDomain() *domain.Property {
	return &domain.Property{
		ID:            d.ID,
		UserID:        d.UserID,
		DistributorID: d.DistributorID,
		Name:          d.Name,
		Street:        d.Street,
		City:          d.City,
		State:         d.State,
		PostalCode:    d.PostalCode,
		CreatedAt:     unixToTime(d.CreatedAt),
		UpdatedAt:     unixToTime(d.UpdatedAt),
	}
}

func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toPropertyDoc(p)); err != nil {
		return fmt.Errorf("insert property: %w", err)
	}
	return nil
}

func (r *PropertyRepository) FindByID(ctx context.Context, id string) (*domain.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d propertyDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("find property: %w", err)
	}
	return d.toDomain(), nil
}

func (r *PropertyRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Property
	for cur.Next(ctx) {
		var d propertyDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode property: %w", err)
		}
		out = append(out, d.toDomain())
	}
	return out, cur.Err()
}

func (r *PropertyRepository) CountByDistributor(ctx context.Context, distributorID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"distributor_id": distributorID})
	if err != nil {
		return 0, fmt.Errorf("count properties: %w", err)
	}
	return n, nil
}

func (r *PropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, toPropertyDoc(p))
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

func (r *PropertyRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

// ── Areas ───────────────────────────────────────────────────────────────────

type AreaRepository struct {
	col *mongo.Collection
}

func NewAreaRepository(db *mongo.Database) *AreaRepository {
	return &AreaRepository{col: db.Collection(collectionAreas)}
}

type areaDoc struct {
	ID          string `bson:"_id"`
	PropertyID  string `bson:"property_id"`
	Name        string `bson:"name"`
	Description string `bson:"description,omitempty"`
	CreatedAt   int64  `bson:"created_at"`
	UpdatedAt   int64  `bson:"updated_at"`
}

func (d areaDoc) toDomain() *domain.Area {
	return &domain.Area{
		ID:          d.ID,
		PropertyID:  d.PropertyID,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   unixToTime(d.CreatedAt),
		UpdatedAt:   unixToTime(d.UpdatedAt),
	}
}

func toAreaDoc(a *domain.Area) areaDoc {
	return areaDoc{
		ID:          a.ID,
		PropertyID:  a.PropertyID,
		Name:        a.Name,
		Description: a.Description,
		CreatedAt:   a.CreatedAt.Unix(),
		UpdatedAt:   a.UpdatedAt.Unix(),
	}
}

func (r *AreaRepository) Create(ctx context.Context, a *domain.Area) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toAreaDoc(a)); err != nil {
		return fmt.Errorf("insert area: %w", err)
	}
	return nil
}

func (r *AreaRepository) FindByID(ctx context.Context, id string) (*domain.Area, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d areaDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAreaNotFound
		}
		return nil, fmt.Errorf("find area: %w", err)
	}
	return d.toDomain(), nil
}

func (r *AreaRepository) ListByProperty(ctx context.Context, propertyID string) ([]*domain.Area, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"property_id": propertyID})
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Area
	for cur.Next(ctx) {
		var d areaDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode area: %w", err)
		}
		out = append(out, d.toDomain())
	}
	return out, cur.Err()
}

func (r *AreaRepository) Update(ctx context.Context, a *domain.Area) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": a.ID}, toAreaDoc(a))
	if err != nil {
		return fmt.Errorf("update area: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAreaNotFound
	}
	return nil
}

func (r *AreaRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete area: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAreaNotFound
	}
	return nil
}

// ── Devices ─────────────────────────────────────────────────────────────────

type DeviceRepository struct {
	col *mongo.Collection
}

func NewDeviceRepository(db *mongo.Database) *DeviceRepository {
	return &DeviceRepository{col: db.Collection(collectionDevices)}
}

type deviceDoc struct {
	ID        string `bson:"_id"`
	AreaID    string `bson:"area_id"`
	Name      string `bson:"name"`
	Brand     string `bson:"brand,omitempty"`
	Model     string `bson:"model,omitempty"`
	PowerW    *int   `bson:"power_w,omitempty"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (d deviceDoc) toDomain() *domain.Device {
	return &domain.Device{
		ID:        d.ID,
		AreaID:    d.AreaID,
		Name:      d.Name,
		Brand:     d.Brand,
		Model:     d.Model,
		PowerW:    d.PowerW,
		CreatedAt: unixToTime(d.CreatedAt),
		UpdatedAt: unixToTime(d.UpdatedAt),
	}
}

func toDeviceDoc(d *domain.Device) deviceDoc {
	return deviceDoc{
		ID:        d.ID,
		AreaID:    d.AreaID,
		Name:      d.Name,
		Brand:     d.Brand,
		Model:     d.Model,
		PowerW:    d.PowerW,
		CreatedAt: d.CreatedAt.Unix(),
		UpdatedAt: d.UpdatedAt.Unix(),
	}
}

func (r *DeviceRepository) Create(ctx context.Context, d *domain.Device) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toDeviceDoc(d)); err != nil {
		return fmt.Errorf("insert device: %w", err)
	}
	return nil
}

func (r *DeviceRepository) FindByID(ctx context.Context, id string) (*domain.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d deviceDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, fmt.Errorf("find device: %w", err)
	}
	return d.toDomain(), nil
}

func (r *DeviceRepository) ListByArea(ctx context.Context, areaID string) ([]*domain.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"area_id": areaID})
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Device
	for cur.Next(ctx) {
		var d deviceDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode device: %w", err)
		}
		out = append(out, d.toDomain())
	}
	return out, cur.Err()
}

func (r *DeviceRepository) Update(ctx context.Context, d *domain.Device) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": d.ID}, toDeviceDoc(d))
	if err != nil {
		return fmt.Errorf("update device: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrDeviceNotFound
	}
	return nil
}

func (r *DeviceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete device: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrDeviceNotFound
	}
	return nil
}

// ── IoT configs ─────────────────────────────────────────────────────────────

type IoTConfigRepository struct {
	col *mongo.Collection
}

func NewIoTConfigRepository(db *mongo.Database) *IoTConfigRepository {
	return &IoTConfigRepository{col: db.Collection(collectionIoTConfigs)}
}

type iotConfigDoc struct {
	DeviceID  string            `bson:"_id"`
	Protocol  string            `bson:"protocol"`
	Host      string            `bson:"host,omitempty"`
	Port      int               `bson:"port,omitempty"`
	Topic     string            `bson:"topic,omitempty"`
	Address   string            `bson:"address,omitempty"`
	Extra     map[string]string `bson:"extra,omitempty"`
	UpdatedAt int64             `bson:"updated_at"`
}

func (r *IoTConfigRepository) Upsert(ctx context.Context, c *domain.IoTConfig) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := iotConfigDoc{
		DeviceID:  c.DeviceID,
		Protocol:  c.Protocol,
		Host:      c.Host,
		Port:      c.Port,
		Topic:     c.Topic,
		Address:   c.Address,
		Extra:     c.Extra,
		UpdatedAt: c.UpdatedAt.Unix(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": c.DeviceID}, doc, opts); err != nil {
		return fmt.Errorf("upsert iot config: %w", err)
	}
	return nil
}

func (r *IoTConfigRepository) FindByDevice(ctx context.Context, deviceID string) (*domain.IoTConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d iotConfigDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": deviceID}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIoTConfigNotFound
		}
		return nil, fmt.Errorf("find iot config: %w", err)
	}
	return &domain.IoTConfig{
		DeviceID:  d.DeviceID,
		Protocol:  d.Protocol,
		Host:      d.Host,
		Port:      d.Port,
		Topic:     d.Topic,
		Address:   d.Address,
		Extra:     d.Extra,
		UpdatedAt: unixToTime(d.UpdatedAt),
	}, nil
}

func (r *IoTConfigRepository) DeleteByDevice(ctx context.Context, deviceID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": deviceID}); err != nil {
		return fmt.Errorf("delete iot config: %w", err)
	}
	return nil
}
