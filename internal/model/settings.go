package model

import "time"

// RangoBloqueado is a shop-configured interval during which no citas may be
// booked. SoloFecha ranges are date-only and cover each full day they span.
type RangoBloqueado struct {
	Desde     time.Time `json:"desde"`
	Hasta     time.Time `json:"hasta"`
	SoloFecha bool      `json:"solo_fecha"`
	Motivo    string    `json:"motivo,omitempty"`
}

// Cubre reports whether the [startAt, endAt) interval touches the range.
func (r RangoBloqueado) Cubre(startAt, endAt time.Time) bool {
	desde, hasta := r.Desde, r.Hasta
	if r.SoloFecha {
		desde = time.Date(desde.Year(), desde.Month(), desde.Day(), 0, 0, 0, 0, desde.Location())
		hasta = time.Date(hasta.Year(), hasta.Month(), hasta.Day(), 0, 0, 0, 0, hasta.Location()).AddDate(0, 0, 1)
	}
	return startAt.Before(hasta) && endAt.After(desde)
}

// ShopSettings is the single persisted settings row (ID always 1). It is
// loaded per request / per sweep and injected explicitly — never cached in a
// package-level variable.
type ShopSettings struct {
	ID         int    `gorm:"primaryKey"`
	Nombre     string `gorm:"not null;default:'Taller'"`
	Direccion  string
	Telefono   string
	EmailFrom  string
	OwnerEmail string
	LogoUrl    string

	Bloqueos []RangoBloqueado `gorm:"serializer:json"`

	// Reminder24hEnabled gates the day-before sweep entirely.
	Reminder24hEnabled bool `gorm:"not null;default:true"`

	// ResumenEnviadoPara holds the date the owner digest was last sent for,
	// so the periodic sweep mails it once per day.
	ResumenEnviadoPara *time.Time

	// Daily slot grid used when auto-rescheduling overdue citas.
	SlotInicioHora int `gorm:"not null;default:9"`
	SlotFinHora    int `gorm:"not null;default:18"`
	SlotPasoMin    int `gorm:"not null;default:30"`

	UpdatedAt time.Time
}

// Slots materializes the daily grid for a given day, in that day's location.
func (s *ShopSettings) Slots(dia time.Time) []time.Time {
	paso := s.SlotPasoMin
	if paso <= 0 {
		paso = 30
	}
	var slots []time.Time
	t := time.Date(dia.Year(), dia.Month(), dia.Day(), s.SlotInicioHora, 0, 0, 0, dia.Location())
	fin := time.Date(dia.Year(), dia.Month(), dia.Day(), s.SlotFinHora, 0, 0, 0, dia.Location())
	for t.Before(fin) {
		slots = append(slots, t)
		t = t.Add(time.Duration(paso) * time.Minute)
	}
	return slots
}
