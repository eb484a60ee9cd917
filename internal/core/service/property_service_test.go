package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

// hierarchyFixture wires every repository the hierarchy services share, so a
// single fixture can exercise properties, areas, devices and cascades.
type hierarchyFixture struct {
	users        *stubUserRepo
	distributors *stubDistributorRepo
	properties   *stubPropertyRepo
	areas        *stubAreaRepo
	devices      *stubDeviceRepo
	consumptions *stubConsumptionRepo
	iot          *stubIoTConfigRepo
	clock        *fakeClock

	propertySvc *PropertyService
	areaSvc     *AreaService
	deviceSvc   *DeviceService
}

func newHierarchyFixture() *hierarchyFixture {
	f := &hierarchyFixture{
		users:        newStubUserRepo(),
		distributors: newStubDistributorRepo(),
		properties:   newStubPropertyRepo(),
		areas:        newStubAreaRepo(),
		devices:      newStubDeviceRepo(),
		consumptions: newStubConsumptionRepo(),
		iot:          newStubIoTConfigRepo(),
		clock:        newFakeClock(),
	}
	log := zerolog.Nop()
	f.propertySvc = NewPropertyService(f.properties, f.distributors, f.areas, f.devices, f.consumptions, f.iot, f.clock, log)
	f.areaSvc = NewAreaService(f.properties, f.areas, f.devices, f.consumptions, f.iot, f.clock, log)
	f.deviceSvc = NewDeviceService(f.properties, f.areas, f.devices, f.consumptions, f.iot, f.clock, log)
	return f
}

// seedDistributor inserts a tariff contract directly into the stub.
func (f *hierarchyFixture) seedDistributor(userID string) *domain.Distributor {
	d := &domain.Distributor{
		ID:       newID(),
		UserID:   userID,
		Name:     "CPFL Paulista",
		Cnpj:     "33050196000188",
		System:   domain.SystemTriphasic,
		VoltageV: 220,
		KwhPrice: decimal.RequireFromString("0.75"),
	}
	f.distributors.byID[d.ID] = d
	return d
}

func (f *hierarchyFixture) seedProperty(t *testing.T, userID string) *domain.Property {
	t.Helper()
	d := f.seedDistributor(userID)
	p, err := f.propertySvc.Create(context.Background(), userID, ports.CreatePropertyInput{
		DistributorID: d.ID,
		Name:          "Casa de Campinas",
		Street:        "Rua Barão de Jaguara, 1000",
		City:          "Campinas",
		State:         "SP",
		PostalCode:    "13015-001",
	})
	if err != nil {
		t.Fatalf("seed property: %v", err)
	}
	return p
}

func TestPropertyService_Create_ForeignDistributorForbidden(t *testing.T) {
	f := newHierarchyFixture()
	other := f.seedDistributor("someone-else")

	_, err := f.propertySvc.Create(context.Background(), "user-1", ports.CreatePropertyInput{
		DistributorID: other.ID,
		Name:          "Casa",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign distributor, got %v", err)
	}
}

func TestPropertyService_Create_MissingDistributorNotFound(t *testing.T) {
	f := newHierarchyFixture()
	_, err := f.propertySvc.Create(context.Background(), "user-1", ports.CreatePropertyInput{
		DistributorID: "ghost",
		Name:          "Casa",
	})
	if !errors.Is(err, domain.ErrDistributorNotFound) {
		t.Fatalf("expected ErrDistributorNotFound, got %v", err)
	}
}

func TestPropertyService_Create_RejectsBadAddress(t *testing.T) {
	f := newHierarchyFixture()
	d := f.seedDistributor("user-1")

	cases := []struct {
		name string
		in   ports.CreatePropertyInput
	}{
		{"bad state", ports.CreatePropertyInput{DistributorID: d.ID, Name: "Casa", State: "XX"}},
		{"short cep", ports.CreatePropertyInput{DistributorID: d.ID, Name: "Casa", PostalCode: "1301"}},
		{"repeated-digit cep", ports.CreatePropertyInput{DistributorID: d.ID, Name: "Casa", PostalCode: "11111-111"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.propertySvc.Create(context.Background(), "user-1", tc.in)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestPropertyService_Get_TwoTierDenial(t *testing.T) {
	f := newHierarchyFixture()
	p := f.seedProperty(t, "owner")

	if _, err := f.propertySvc.Get(context.Background(), "intruder", p.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.propertySvc.Get(context.Background(), "owner", "missing"); !errors.Is(err, domain.ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
}

func TestPropertyService_Update_ReassignDistributorGuarded(t *testing.T) {
	f := newHierarchyFixture()
	p := f.seedProperty(t, "owner")
	foreign := f.seedDistributor("someone-else")

	_, err := f.propertySvc.Update(context.Background(), "owner", p.ID, ports.UpdatePropertyInput{
		DistributorID: &foreign.ID,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on reassignment to foreign distributor, got %v", err)
	}

	mine := f.seedDistributor("owner")
	updated, err := f.propertySvc.Update(context.Background(), "owner", p.ID, ports.UpdatePropertyInput{
		DistributorID: &mine.ID,
	})
	if err != nil {
		t.Fatalf("reassignment to own distributor: %v", err)
	}
	if updated.DistributorID != mine.ID {
		t.Fatalf("distributor not reassigned")
	}
}

func TestPropertyService_Delete_CascadesEverything(t *testing.T) {
	f := newHierarchyFixture()
	p := f.seedProperty(t, "owner")

	a, err := f.areaSvc.Create(context.Background(), "owner", p.ID, ports.CreateAreaInput{Name: "Cozinha"})
	if err != nil {
		t.Fatalf("area: %v", err)
	}
	dev, err := f.deviceSvc.Create(context.Background(), "owner", p.ID, a.ID, ports.CreateDeviceInput{Name: "Geladeira"})
	if err != nil {
		t.Fatalf("device: %v", err)
	}
	if _, err := f.deviceSvc.PutIoTConfig(context.Background(), "owner", p.ID, a.ID, dev.ID, ports.IoTConfigInput{Protocol: "mqtt"}); err != nil {
		t.Fatalf("iot config: %v", err)
	}
	f.consumptions.byID["c1"] = &domain.ConsumptionRecord{ID: "c1", Target: domain.NewPropertyTarget(p.ID), Period: domain.PeriodMonthly}
	f.consumptions.byID["c2"] = &domain.ConsumptionRecord{ID: "c2", Target: domain.NewAreaTarget(a.ID), Period: domain.PeriodMonthly}
	f.consumptions.byID["c3"] = &domain.ConsumptionRecord{ID: "c3", Target: domain.NewDeviceTarget(dev.ID), Period: domain.PeriodMonthly}

	if err := f.propertySvc.Delete(context.Background(), "owner", p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(f.properties.byID) != 0 {
		t.Fatalf("property survived cascade")
	}
	if len(f.areas.byID) != 0 {
		t.Fatalf("area survived cascade")
	}
	if len(f.devices.byID) != 0 {
		t.Fatalf("device survived cascade")
	}
	if len(f.iot.byDevice) != 0 {
		t.Fatalf("iot config survived cascade")
	}
	if len(f.consumptions.byID) != 0 {
		t.Fatalf("consumptions survived cascade: %d left", len(f.consumptions.byID))
	}
}
