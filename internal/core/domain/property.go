package domain

import "time"

// brazilianStates holds the valid two-letter state codes for property
// addresses.
var brazilianStates = map[string]bool{
	"AC": true, "AL": true, "AP": true, "AM": true, "BA": true, "CE": true,
	"DF": true, "ES": true, "GO": true, "MA": true, "MT": true, "MS": true,
	"MG": true, "PA": true, "PB": true, "PR": true, "PE": true, "PI": true,
	"RJ": true, "RN": true, "RS": true, "RO": true, "RR": true, "SC": true,
	"SP": true, "SE": true, "TO": true,
}

// ValidStateCode reports whether s is a valid state code.
func ValidStateCode(s string) bool { return brazilianStates[s] }

// ValidPostalCode reports whether s matches the CEP format (8 digits,
// optional hyphen after the fifth) and is not a run of identical digits.
func ValidPostalCode(s string) bool {
	digits := make([]byte, 0, 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, c)
		case c == '-' && i == 5:
			// allowed separator position
		default:
			return false
		}
	}
	if len(digits) != 8 {
		return false
	}
	for _, d := range digits[1:] {
		if d != digits[0] {
			return true
		}
	}
	return false
}

// Property is the root of the ownership hierarchy below a user. Every
// property references exactly one distributor owned by the same user.
type Property struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	DistributorID string `json:"distributor_id"`
	Name          string `json:"name"`

	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Area subdivides a property.
type Area struct {
	ID          string    `json:"id"`
	PropertyID  string    `json:"property_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Device is an appliance inside an area. PowerW, when present, is the rated
// power in watts and must be strictly positive.
type Device struct {
	ID        string    `json:"id"`
	AreaID    string    `json:"area_id"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand,omitempty"`
	Model     string    `json:"model,omitempty"`
	PowerW    *int      `json:"power_w,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IoTConfig is the passive connection record for a device, at most one per
// device. No protocol logic lives in this service.
type IoTConfig struct {
	DeviceID  string            `json:"device_id"`
	Protocol  string            `json:"protocol"`
	Host      string            `json:"host,omitempty"`
	Port      int               `json:"port,omitempty"`
	Topic     string            `json:"topic,omitempty"`
	Address   string            `json:"address,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}
