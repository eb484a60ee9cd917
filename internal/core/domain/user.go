package domain

import "time"

// PersonKind distinguishes individual and company accounts. The kind is fixed
// at signup; profile updates cannot change it.
type PersonKind string

const (
	KindIndividual PersonKind = "individual"
	KindCompany    PersonKind = "company"
)

// User models an account that owns distributors, properties and everything
// below them. Cpf is set for individuals, Cnpj (plus legal/trade names) for
// companies; both tax ids are immutable after creation.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Kind         PersonKind `json:"kind"`

	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Cpf       string `json:"cpf,omitempty"`

	LegalName string `json:"legal_name,omitempty"`
	TradeName string `json:"trade_name,omitempty"`
	Cnpj      string `json:"cnpj,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
