package models

import "time"

// Account is a row of the usuarios table. Password holds the bcrypt hash and
// Token the pending confirmation / reset token ("" when nothing is pending).
type Account struct {
	ID         string
	Nombre     string
	Email      string
	Password   string
	Confirmado bool
	Token      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AccountSummary is the client-facing projection of an Account. It never
// carries the password hash or the pending token.
type AccountSummary struct {
	ID         string `json:"id"`
	Nombre     string `json:"nombre"`
	Email      string `json:"email"`
	Confirmado bool   `json:"confirmado"`
}

// Summary projects the account for clients.
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:         a.ID,
		Nombre:     a.Nombre,
		Email:      a.Email,
		Confirmado: a.Confirmado,
	}
}

// AccountChanges is a partial update. Nil fields are left unchanged.
// Password, when set, must already be hashed.
type AccountChanges struct {
	Nombre   *string
	Email    *string
	Password *string
}

// Empty reports whether no field is set.
func (c AccountChanges) Empty() bool {
	return c.Nombre == nil && c.Email == nil && c.Password == nil
}
