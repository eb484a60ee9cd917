package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ElectricalSystem is the phase configuration of a supply contract.
type ElectricalSystem string

const (
	SystemMonophasic ElectricalSystem = "monophasic"
	SystemBiphasic   ElectricalSystem = "biphasic"
	SystemTriphasic  ElectricalSystem = "triphasic"
)

// standardVoltages are the working voltages accepted for a contract.
var standardVoltages = map[int]bool{110: true, 127: true, 220: true, 380: true}

// ValidVoltage reports whether v is one of the standard working voltages.
func ValidVoltage(v int) bool { return standardVoltages[v] }

// ValidSystem reports whether s is a known phase configuration.
func ValidSystem(s ElectricalSystem) bool {
	return s == SystemMonophasic || s == SystemBiphasic || s == SystemTriphasic
}

// Distributor is an energy-tariff contract registered by a user. KwhPrice
// carries six fractional digits; TaxRate (fraction of 1, four digits) and
// LightingFee (currency, two digits) are informational only and never enter
// the cost computed for consumption records.
type Distributor struct {
	ID       string           `json:"id"`
	UserID   string           `json:"user_id"`
	Name     string           `json:"name"`
	Cnpj     string           `json:"cnpj"`
	System   ElectricalSystem `json:"electrical_system"`
	VoltageV int              `json:"voltage_v"`

	KwhPrice    decimal.Decimal  `json:"kwh_price"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
	LightingFee *decimal.Decimal `json:"lighting_fee,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
