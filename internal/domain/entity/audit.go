package entity

import "time"

// Audit metadatos de creación/actualización embebidos en las entidades persistentes.
// Sustituye la jerarquía de herencia por composición.
type Audit struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

// Touch actualiza la marca de modificación.
func (a *Audit) Touch(now time.Time, by string) {
	a.UpdatedAt = now
	a.UpdatedBy = by
}
