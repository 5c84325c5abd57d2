package model

import (
	"time"

	"github.com/google/uuid"
)

// RecordatorioJob estados.
const (
	RecordatorioPending = "PENDING"
	RecordatorioSent    = "SENT"
	RecordatorioFailed  = "FAILED"
)

// Supported reminder channels. Only email is wired today; jobs on any other
// channel are failed by the sweep rather than silently dropped.
const (
	CanalEmail = "EMAIL"
)

// RecordatorioJob is a durable point-in-time reminder tied to one cita,
// processed by the cron sweep once RunAt passes. Distinct from the periodic
// day-before sweep, which scans citas directly.
type RecordatorioJob struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CitaID    uuid.UUID `gorm:"type:uuid;index;not null"`
	RunAt     time.Time `gorm:"index;not null"`
	Canal     string    `gorm:"type:varchar(20);not null;default:'EMAIL'"`
	Estado    string    `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Tries     int       `gorm:"not null;default:0"`
	LastError *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
