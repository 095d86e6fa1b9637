package entity

import "time"

// Roles válidos (conjunto cerrado).
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// Roles devuelve los nombres de rol que deben existir en el sistema.
func Roles() []string {
	return []string{RoleAdmin, RoleClient}
}

// IsValidRole indica si name pertenece al conjunto cerrado de roles.
func IsValidRole(name string) bool {
	return name == RoleAdmin || name == RoleClient
}

// Role rol de usuario.
type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Address dirección embebida en el usuario; no tiene identidad propia.
type Address struct {
	Label      string `json:"label"`
	Street     string `json:"street"`
	City       string `json:"city"`
	District   string `json:"district"`
	PostalCode string `json:"postal_code,omitempty"`
	IsPrimary  bool   `json:"is_primary"`
}

// User usuario del sistema. PasswordHash es bcrypt, nunca texto plano.
type User struct {
	ID           string
	Name         string
	Email        string // normalizado en minúsculas
	PasswordHash string
	RoleID       string
	Role         string // nombre del rol resuelto desde RoleID
	Addresses    []Address
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeAddresses garantiza a lo sumo una dirección principal.
// Si ninguna está marcada, la primera pasa a ser la principal; si varias lo están, gana la última.
func NormalizeAddresses(in []Address) []Address {
	if len(in) == 0 {
		return []Address{}
	}
	out := make([]Address, len(in))
	copy(out, in)
	primary := -1
	for i := range out {
		if out[i].IsPrimary {
			primary = i
		}
	}
	if primary < 0 {
		primary = 0
	}
	for i := range out {
		out[i].IsPrimary = i == primary
	}
	return out
}
