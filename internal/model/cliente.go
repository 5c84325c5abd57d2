package model

import (
	"time"

	"github.com/google/uuid"
)

// Cliente is a shop customer. Telefono is the primary dedup key — creating a
// cliente with an already-registered phone merges into the existing record
// instead of inserting a duplicate. Email is the secondary key.
type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Apellido  string
	Telefono  string  `gorm:"uniqueIndex;not null"`
	Email     *string `gorm:"index"`
	Notas     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
