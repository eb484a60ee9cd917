package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodKind is the bucket size a consumption record covers. The reference
// date anchors the bucket (the day itself, first of month, first of year);
// callers are responsible for supplying a normalized date.
type PeriodKind string

const (
	PeriodDaily   PeriodKind = "daily"
	PeriodMonthly PeriodKind = "monthly"
	PeriodAnnual  PeriodKind = "annual"
)

// ValidPeriod reports whether p is a known period kind.
func ValidPeriod(p PeriodKind) bool {
	return p == PeriodDaily || p == PeriodMonthly || p == PeriodAnnual
}

// TargetKind names the hierarchy level a consumption record attaches to.
type TargetKind string

const (
	TargetProperty TargetKind = "property"
	TargetArea     TargetKind = "area"
	TargetDevice   TargetKind = "device"
)

var ErrInvalidTarget = errors.New("consumption target must reference exactly one node")

// ConsumptionTarget is a tagged reference to exactly one hierarchy node.
// Construct it through the New*Target helpers; the zero value is invalid.
type ConsumptionTarget struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

func NewPropertyTarget(propertyID string) ConsumptionTarget {
	return ConsumptionTarget{Kind: TargetProperty, ID: propertyID}
}

func NewAreaTarget(areaID string) ConsumptionTarget {
	return ConsumptionTarget{Kind: TargetArea, ID: areaID}
}

func NewDeviceTarget(deviceID string) ConsumptionTarget {
	return ConsumptionTarget{Kind: TargetDevice, ID: deviceID}
}

// Valid reports whether the target references exactly one node.
func (t ConsumptionTarget) Valid() bool {
	if t.ID == "" {
		return false
	}
	return t.Kind == TargetProperty || t.Kind == TargetArea || t.Kind == TargetDevice
}

// ConsumptionRecord is a period-bucketed usage entry. CostBrl is derived from
// the property's tariff at write time and persisted; it is only recomputed
// when KwhConsumed changes.
type ConsumptionRecord struct {
	ID            string            `json:"id"`
	Target        ConsumptionTarget `json:"target"`
	Period        PeriodKind        `json:"period"`
	ReferenceDate time.Time         `json:"reference_date"`
	KwhConsumed   decimal.Decimal   `json:"kwh_consumed"`
	CostBrl       decimal.Decimal   `json:"cost_brl"`
	Notes         string            `json:"notes,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
