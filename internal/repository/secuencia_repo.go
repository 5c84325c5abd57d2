package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// SecuenciaRepository issues monotonically increasing counter values. The
// increment is a single conditional UPDATE so two concurrent callers can
// never read the same value — the database, not the process, serializes it.
type SecuenciaRepository interface {
	// AsegurarMinimo upserts the series row, raising its value to at least
	// minimo. Never lowers an existing value.
	AsegurarMinimo(ctx context.Context, clave string, minimo int64) error
	// Incrementar atomically bumps the counter and returns the new value.
	Incrementar(ctx context.Context, clave string) (int64, error)
}

type secuenciaRepo struct{ db *gorm.DB }

func NewSecuenciaRepository(db *gorm.DB) SecuenciaRepository {
	return &secuenciaRepo{db: db}
}

func (r *secuenciaRepo) AsegurarMinimo(ctx context.Context, clave string, minimo int64) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO secuencias (clave, valor) VALUES (?, ?)
		 ON CONFLICT (clave) DO UPDATE SET valor = GREATEST(secuencias.valor, EXCLUDED.valor)`,
		clave, minimo,
	).Error
}

func (r *secuenciaRepo) Incrementar(ctx context.Context, clave string) (int64, error) {
	var valor int64
	res := r.db.WithContext(ctx).Raw(
		`UPDATE secuencias SET valor = valor + 1 WHERE clave = ? RETURNING valor`,
		clave,
	).Scan(&valor)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, errors.New("secuencia no inicializada: " + clave)
	}
	return valor, nil
}
