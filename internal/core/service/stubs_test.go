package service

import (
	"context"
	"sync"
	"time"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Deterministic clock
// ---------------------------------------------------------------------------

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	clone := *u
	r.byID[u.ID] = &clone
	return &clone, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *u
	r.byID[u.ID] = &clone
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

type stubTokenRepo struct {
	byToken map[string]*domain.AuthToken
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{byToken: make(map[string]*domain.AuthToken)}
}

func (r *stubTokenRepo) Create(_ context.Context, t *domain.AuthToken) error {
	clone := *t
	r.byToken[t.Token] = &clone
	return nil
}

func (r *stubTokenRepo) FindByToken(_ context.Context, token string) (*domain.AuthToken, error) {
	t, ok := r.byToken[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	clone := *t
	return &clone, nil
}

func (r *stubTokenRepo) Revoke(_ context.Context, id string, at time.Time) error {
	for _, t := range r.byToken {
		if t.ID == id {
			t.RevokedAt = &at
			return nil
		}
	}
	return domain.ErrUnauthorized
}

func (r *stubTokenRepo) DeleteByUser(_ context.Context, userID string) error {
	for k, t := range r.byToken {
		if t.UserID == userID {
			delete(r.byToken, k)
		}
	}
	return nil
}

type stubResetRepo struct {
	byToken map[string]*domain.PasswordReset
}

func newStubResetRepo() *stubResetRepo {
	return &stubResetRepo{byToken: make(map[string]*domain.PasswordReset)}
}

func (r *stubResetRepo) Create(_ context.Context, p *domain.PasswordReset) error {
	clone := *p
	r.byToken[p.Token] = &clone
	return nil
}

func (r *stubResetRepo) FindByToken(_ context.Context, token string) (*domain.PasswordReset, error) {
	p, ok := r.byToken[token]
	if !ok {
		return nil, domain.ErrResetTokenInvalid
	}
	clone := *p
	return &clone, nil
}

func (r *stubResetRepo) MarkUsed(_ context.Context, id string, at time.Time) error {
	for _, p := range r.byToken {
		if p.ID == id {
			p.UsedAt = &at
			return nil
		}
	}
	return domain.ErrResetTokenInvalid
}

func (r *stubResetRepo) DeleteByUser(_ context.Context, userID string) error {
	for k, p := range r.byToken {
		if p.UserID == userID {
			delete(r.byToken, k)
		}
	}
	return nil
}

type stubDistributorRepo struct {
	byID map[string]*domain.Distributor
}

func newStubDistributorRepo() *stubDistributorRepo {
	return &stubDistributorRepo{byID: make(map[string]*domain.Distributor)}
}

func (r *stubDistributorRepo) Create(_ context.Context, d *domain.Distributor) error {
	for _, existing := range r.byID {
		if existing.UserID == d.UserID && existing.Cnpj == d.Cnpj {
			return domain.ErrDistributorExists
		}
	}
	clone := *d
	r.byID[d.ID] = &clone
	return nil
}

func (r *stubDistributorRepo) FindByID(_ context.Context, id string) (*domain.Distributor, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrDistributorNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubDistributorRepo) ListByUser(_ context.Context, userID string) ([]*domain.Distributor, error) {
	var out []*domain.Distributor
	for _, d := range r.byID {
		if d.UserID == userID {
			clone := *d
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubDistributorRepo) Update(_ context.Context, d *domain.Distributor) error {
	if _, ok := r.byID[d.ID]; !ok {
		return domain.ErrDistributorNotFound
	}
	clone := *d
	r.byID[d.ID] = &clone
	return nil
}

func (r *stubDistributorRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *stubDistributorRepo) DeleteByUser(_ context.Context, userID string) error {
	for k, d := range r.byID {
		if d.UserID == userID {
			delete(r.byID, k)
		}
	}
	return nil
}

type stubPropertyRepo struct {
	byID map[string]*domain.Property
}

func newStubPropertyRepo() *stubPropertyRepo {
	return &stubPropertyRepo{byID: make(map[string]*domain.Property)}
}

func (r *stubPropertyRepo) Create(_ context.Context, p *domain.Property) error {
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubPropertyRepo) FindByID(_ context.Context, id string) (*domain.Property, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrPropertyNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubPropertyRepo) ListByUser(_ context.Context, userID string) ([]*domain.Property, error) {
	var out []*domain.Property
	for _, p := range r.byID {
		if p.UserID == userID {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubPropertyRepo) CountByDistributor(_ context.Context, distributorID string) (int64, error) {
	var n int64
	for _, p := range r.byID {
		if p.DistributorID == distributorID {
			n++
		}
	}
	return n, nil
}

func (r *stubPropertyRepo) Update(_ context.Context, p *domain.Property) error {
	if _, ok := r.byID[p.ID]; !ok {
		return domain.ErrPropertyNotFound
	}
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubPropertyRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

type stubAreaRepo struct {
	byID map[string]*domain.Area
}

func newStubAreaRepo() *stubAreaRepo {
	return &stubAreaRepo{byID: make(map[string]*domain.Area)}
}

func (r *stubAreaRepo) Create(_ context.Context, a *domain.Area) error {
	clone := *a
	r.byID[a.ID] = &clone
	return nil
}

func (r *stubAreaRepo) FindByID(_ context.Context, id string) (*domain.Area, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAreaNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubAreaRepo) ListByProperty(_ context.Context, propertyID string) ([]*domain.Area, error) {
	var out []*domain.Area
	for _, a := range r.byID {
		if a.PropertyID == propertyID {
			clone := *a
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubAreaRepo) Update(_ context.Context, a *domain.Area) error {
	if _, ok := r.byID[a.ID]; !ok {
		return domain.ErrAreaNotFound
	}
	clone := *a
	r.byID[a.ID] = &clone
	return nil
}

func (r *stubAreaRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

type stubDeviceRepo struct {
	byID map[string]*domain.Device
}

func newStubDeviceRepo() *stubDeviceRepo {
	return &stubDeviceRepo{byID: make(map[string]*domain.Device)}
}

func (r *stubDeviceRepo) Create(_ context.Context, d *domain.Device) error {
	clone := *d
	r.byID[d.ID] = &clone
	return nil
}

func (r *stubDeviceRepo) FindByID(_ context.Context, id string) (*domain.Device, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrDeviceNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubDeviceRepo) ListByArea(_ context.Context, areaID string) ([]*domain.Device, error) {
	var out []*domain.Device
	for _, d := range r.byID {
		if d.AreaID == areaID {
			clone := *d
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubDeviceRepo) Update(_ context.Context, d *domain.Device) error {
	if _, ok := r.byID[d.ID]; !ok {
		return domain.ErrDeviceNotFound
	}
	clone := *d
	r.byID[d.ID] = &clone
	return nil
}

func (r *stubDeviceRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

type stubIoTConfigRepo struct {
	byDevice map[string]*domain.IoTConfig
}

func newStubIoTConfigRepo() *stubIoTConfigRepo {
	return &stubIoTConfigRepo{byDevice: make(map[string]*domain.IoTConfig)}
}

func (r *stubIoTConfigRepo) Upsert(_ context.Context, c *domain.IoTConfig) error {
	clone := *c
	r.byDevice[c.DeviceID] = &clone
	return nil
}

func (r *stubIoTConfigRepo) FindByDevice(_ context.Context, deviceID string) (*domain.IoTConfig, error) {
	c, ok := r.byDevice[deviceID]
	if !ok {
		return nil, domain.ErrIoTConfigNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubIoTConfigRepo) DeleteByDevice(_ context.Context, deviceID string) error {
	delete(r.byDevice, deviceID)
	return nil
}

type stubConsumptionRepo struct {
	byID map[string]*domain.ConsumptionRecord
}

func newStubConsumptionRepo() *stubConsumptionRepo {
	return &stubConsumptionRepo{byID: make(map[string]*domain.ConsumptionRecord)}
}

func (r *stubConsumptionRepo) Create(_ context.Context, rec *domain.ConsumptionRecord) error {
	for _, existing := range r.byID {
		if existing.Target == rec.Target &&
			existing.Period == rec.Period &&
			existing.ReferenceDate.Equal(rec.ReferenceDate) {
			return domain.ErrDuplicatePeriod
		}
	}
	clone := *rec
	r.byID[rec.ID] = &clone
	return nil
}

func (r *stubConsumptionRepo) FindByID(_ context.Context, id string) (*domain.ConsumptionRecord, error) {
	rec, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrConsumptionNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *stubConsumptionRepo) FindByPeriod(_ context.Context, target domain.ConsumptionTarget, period domain.PeriodKind, refDate time.Time) (*domain.ConsumptionRecord, error) {
	for _, rec := range r.byID {
		if rec.Target == target && rec.Period == period && rec.ReferenceDate.Equal(refDate) {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, domain.ErrConsumptionNotFound
}

func (r *stubConsumptionRepo) List(_ context.Context, filter ports.ConsumptionFilter) ([]*domain.ConsumptionRecord, error) {
	var out []*domain.ConsumptionRecord
	for _, rec := range r.byID {
		if rec.Target != filter.Target {
			continue
		}
		if filter.Period != "" && rec.Period != filter.Period {
			continue
		}
		clone := *rec
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubConsumptionRepo) Update(_ context.Context, rec *domain.ConsumptionRecord) error {
	if _, ok := r.byID[rec.ID]; !ok {
		return domain.ErrConsumptionNotFound
	}
	clone := *rec
	r.byID[rec.ID] = &clone
	return nil
}

func (r *stubConsumptionRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *stubConsumptionRepo) DeleteByTarget(_ context.Context, target domain.ConsumptionTarget) error {
	for k, rec := range r.byID {
		if rec.Target == target {
			delete(r.byID, k)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Auth collaborators
// ---------------------------------------------------------------------------

type stubMailer struct {
	sent []struct {
		email string
		token string
	}
	err error
}

func (m *stubMailer) SendPasswordReset(_ context.Context, email, token string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, struct {
		email string
		token string
	}{email, token})
	return nil
}

type stubRevocationCache struct {
	revoked map[string]bool
}

func newStubRevocationCache() *stubRevocationCache {
	return &stubRevocationCache{revoked: make(map[string]bool)}
}

func (c *stubRevocationCache) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return c.revoked[tokenID], nil
}

func (c *stubRevocationCache) MarkRevoked(_ context.Context, tokenID string, _ time.Duration) error {
	c.revoked[tokenID] = true
	return nil
}
