package model

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Vehiculo is a customer vehicle identified by its normalized plate.
// PatenteNormalizada is the dedup key: NormalizarPatente(Patente).
type Vehiculo struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Patente            string    `gorm:"not null"`
	PatenteNormalizada string    `gorm:"uniqueIndex;not null"`
	Marca              string
	Modelo             string
	Anio               *int
	Color              *string
	Km                 *int
	// ClienteID is the current owner. The full ownership ledger lives in Historial.
	ClienteID uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Cliente   *Cliente         `gorm:"foreignKey:ClienteID"`
	Historial []DuenoHistorial `gorm:"foreignKey:VehiculoID"`
}

// DuenoHistorial is an append-only ownership ledger entry. Exactly one entry
// per vehiculo has HastaAt == nil (the current owner), and it must reference
// Vehiculo.ClienteID. Changing owner closes the open entry (HastaAt = now)
// before appending a new open one.
type DuenoHistorial struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VehiculoID uuid.UUID  `gorm:"type:uuid;index;not null"`
	ClienteID  uuid.UUID  `gorm:"type:uuid;not null"`
	DesdeAt    time.Time  `gorm:"not null"`
	HastaAt    *time.Time
	Nota       *string
}

// NormalizarPatente strips every non-alphanumeric rune and uppercases the
// remainder: "ab-123 cd" → "AB123CD". Idempotent.
func NormalizarPatente(patente string) string {
	var b strings.Builder
	b.Grow(len(patente))
	for _, r := range patente {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
