package service

import (
	"context"
	"fmt"

	"github.com/badkluster/taller-backend-sub000/internal/repository"
)

// MaxUsadoFn reports the largest numeric suffix already persisted for a
// prefix, so the counter can be reconciled before issuing.
type MaxUsadoFn func(ctx context.Context, prefijo string) (int64, error)

// SecuenciaService issues gapless document numbers per series
// ("{prefijo}{0001}", widening past four digits as needed). Values are
// strictly increasing even across crashes and concurrent callers: the
// counter is raised to the max number actually in use, then atomically
// incremented by the store.
type SecuenciaService interface {
	NextNumber(ctx context.Context, clave, prefijo string, maxUsado MaxUsadoFn) (string, error)
}

type secuenciaService struct {
	repo repository.SecuenciaRepository
}

func NewSecuenciaService(repo repository.SecuenciaRepository) SecuenciaService {
	return &secuenciaService{repo: repo}
}

func (s *secuenciaService) NextNumber(ctx context.Context, clave, prefijo string, maxUsado MaxUsadoFn) (string, error) {
	// Self-heal: if documents exist whose numbers outrun the counter (manual
	// inserts, restored backup, crash between increment and write), raise the
	// counter first so the next value is strictly greater than anything used.
	enUso := int64(0)
	if maxUsado != nil {
		var err error
		enUso, err = maxUsado(ctx, prefijo)
		if err != nil {
			return "", fmt.Errorf("secuencia %s: relevar numeros en uso: %w", clave, err)
		}
	}
	if err := s.repo.AsegurarMinimo(ctx, clave, enUso); err != nil {
		return "", fmt.Errorf("secuencia %s: asegurar minimo: %w", clave, err)
	}

	valor, err := s.repo.Incrementar(ctx, clave)
	if err != nil {
		return "", fmt.Errorf("secuencia %s: incrementar: %w", clave, err)
	}
	return fmt.Sprintf("%s%04d", prefijo, valor), nil
}
