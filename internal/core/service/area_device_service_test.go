package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

func TestAreaService_Create_UnderForeignProperty(t *testing.T) {
	f := newHierarchyFixture()
	p := f.seedProperty(t, "owner")

	_, err := f.areaSvc.Create(context.Background(), "intruder", p.ID, ports.CreateAreaInput{Name: "Quarto"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAreaService_Create_DescriptionTooLong(t *testing.T) {
	f := newHierarchyFixture()
	p := f.seedProperty(t, "owner")

	_, err := f.areaSvc.Create(context.Background(), "owner", p.ID, ports.CreateAreaInput{
		Name:        "Quarto",
		Description: strings.Repeat("x", 501),
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// An area that exists but hangs off a different property of the same user is
// reported as NotFound: the claimed path is wrong, not the permission.
func TestAreaService_Get_WrongParentIsNotFound(t *testing.T) {
	f := newHierarchyFixture()
	p1 := f.seedProperty(t, "owner")
	p2 := f.seedProperty(t, "owner")

	a, err := f.areaSvc.Create(context.Background(), "owner", p1.ID, ports.CreateAreaInput{Name: "Sala"})
	if err != nil {
		t.Fatalf("area: %v", err)
	}

	if _, err := f.areaSvc.Get(context.Background(), "owner", p2.ID, a.ID); !errors.Is(err, domain.ErrAreaNotFound) {
		t.Fatalf("expected ErrAreaNotFound for wrong parent, got %v", err)
	}
}

func TestDeviceService_ChainShortCircuitsAtProperty(t *testing.T) {
	f := newHierarchyFixture()
	p := f.seedProperty(t, "owner")
	a, err := f.areaSvc.Create(context.Background(), "owner", p.ID, ports.CreateAreaInput{Name: "Sala"})
	if err != nil {
		t.Fatalf("area: %v", err)
	}
	dev, err := f.deviceSvc.Create(context.Background(), "owner", p.ID, a.ID, ports.CreateDeviceInput{Name: "TV"})
	if err != nil {
		t.Fatalf("device: %v", err)
	}

	// The intruder is stopped at the property level, learning nothing about
	// the area or device below it.
	if _, err := f.deviceSvc.Get(context.Background(), "intruder", p.ID, a.ID, dev.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDeviceService_Get_WrongAreaIsNotFound(t *testing.T) {
	f := newHierarchyFixture()
	p := f.seedProperty(t, "owner")
	a1, _ := f.areaSvc.Create(context.Background(), "owner", p.ID, ports.CreateAreaInput{Name: "Sala"})
	a2, _ := f.areaSvc.Create(context.Background(), "owner", p.ID, ports.CreateAreaInput{Name: "Cozinha"})

	dev, err := f.deviceSvc.Create(context.Background(), "owner", p.ID, a1.ID, ports.CreateDeviceInput{Name: "TV"})
	if err != nil {
		t.Fatalf("device: %v", err)
	}

	if _, err := f.deviceSvc.Get(context.Background(), "owner", p.ID, a2.ID, dev.ID); !errors.Is(err, domain.ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound for wrong area, got %v", err)
	}
}

func TestDeviceService_Create_RejectsNonPositivePower(t *testing.T) {
	f := newHierarchyFixture()
	p := f.seedProperty(t, "owner")
	a, _ := f.areaSvc.Create(context.Background(), "owner", p.ID, ports.CreateAreaInput{Name: "Sala"})

	zero := 0
	_, err := f.deviceSvc.Create(context.Background(), "owner", p.ID, a.ID, ports.CreateDeviceInput{
		Name:   "Ar condicionado",
		PowerW: &zero,
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for zero power, got %v", err)
	}
}

func TestDeviceService_IoTConfigLifecycle(t *testing.T) {
	f := newHierarchyFixture()
	p := f.seedProperty(t, "owner")
	a, _ := f.areaSvc.Create(context.Background(), "owner", p.ID, ports.CreateAreaInput{Name: "Sala"})
	dev, err := f.deviceSvc.Create(context.Background(), "owner", p.ID, a.ID, ports.CreateDeviceInput{Name: "Medidor"})
	if err != nil {
		t.Fatalf("device: %v", err)
	}
	ctx := context.Background()

	// No config yet.
	if _, err := f.deviceSvc.GetIoTConfig(ctx, "owner", p.ID, a.ID, dev.ID); !errors.Is(err, domain.ErrIoTConfigNotFound) {
		t.Fatalf("expected ErrIoTConfigNotFound, got %v", err)
	}

	cfg, err := f.deviceSvc.PutIoTConfig(ctx, "owner", p.ID, a.ID, dev.ID, ports.IoTConfigInput{
		Protocol: "mqtt",
		Host:     "broker.local",
		Port:     1883,
		Topic:    "home/medidor",
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if cfg.DeviceID != dev.ID {
		t.Fatalf("config bound to wrong device: %s", cfg.DeviceID)
	}

	// Put is an upsert: a second write replaces, never duplicates.
	replaced, err := f.deviceSvc.PutIoTConfig(ctx, "owner", p.ID, a.ID, dev.ID, ports.IoTConfigInput{
		Protocol: "zigbee",
		Address:  "0x00124b0022a1",
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if replaced.Protocol != "zigbee" {
		t.Fatalf("config not replaced: %s", replaced.Protocol)
	}
	got, err := f.deviceSvc.GetIoTConfig(ctx, "owner", p.ID, a.ID, dev.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Host != "" || got.Protocol != "zigbee" {
		t.Fatalf("stale fields survived replace: %+v", got)
	}

	if err := f.deviceSvc.DeleteIoTConfig(ctx, "owner", p.ID, a.ID, dev.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Deleting what is already gone reports NotFound.
	if err := f.deviceSvc.DeleteIoTConfig(ctx, "owner", p.ID, a.ID, dev.ID); !errors.Is(err, domain.ErrIoTConfigNotFound) {
		t.Fatalf("expected ErrIoTConfigNotFound, got %v", err)
	}
}

func TestAreaService_Delete_CascadesDevices(t *testing.T) {
	f := newHierarchyFixture()
	p := f.seedProperty(t, "owner")
	a, _ := f.areaSvc.Create(context.Background(), "owner", p.ID, ports.CreateAreaInput{Name: "Sala"})
	dev, err := f.deviceSvc.Create(context.Background(), "owner", p.ID, a.ID, ports.CreateDeviceInput{Name: "TV"})
	if err != nil {
		t.Fatalf("device: %v", err)
	}
	f.consumptions.byID["c1"] = &domain.ConsumptionRecord{ID: "c1", Target: domain.NewDeviceTarget(dev.ID), Period: domain.PeriodDaily}

	if err := f.areaSvc.Delete(context.Background(), "owner", p.ID, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.devices.byID) != 0 {
		t.Fatalf("device survived area cascade")
	}
	if len(f.consumptions.byID) != 0 {
		t.Fatalf("device consumption survived area cascade")
	}
	// The property itself is untouched.
	if _, err := f.propertySvc.Get(context.Background(), "owner", p.ID); err != nil {
		t.Fatalf("property should survive: %v", err)
	}
}
