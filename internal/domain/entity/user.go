package entity

// User usuario del sistema (cajero, gerente o admin).
// Solo lo necesario para autenticar y poblar los actores de auditoría.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string // "admin" | "gerente" | "vendedor"
	StoreID      string
	IsActive     bool
	Audit
}
