package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badkluster/taller-backend-sub000/internal/repository"
)

type stubSecuenciaRepo struct {
	mu      sync.Mutex
	valores map[string]int64
}

var _ repository.SecuenciaRepository = (*stubSecuenciaRepo)(nil)

func newStubSecuenciaRepo() *stubSecuenciaRepo {
	return &stubSecuenciaRepo{valores: make(map[string]int64)}
}

func (r *stubSecuenciaRepo) AsegurarMinimo(_ context.Context, clave string, minimo int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if minimo > r.valores[clave] {
		r.valores[clave] = minimo
	} else if _, ok := r.valores[clave]; !ok {
		r.valores[clave] = 0
	}
	return nil
}

func (r *stubSecuenciaRepo) Incrementar(_ context.Context, clave string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.valores[clave]; !ok {
		return 0, errors.New("secuencia no inicializada: " + clave)
	}
	r.valores[clave]++
	return r.valores[clave], nil
}

func TestNextNumberFormato(t *testing.T) {
	svc := NewSecuenciaService(newStubSecuenciaRepo())

	n1, err := svc.NextNumber(context.Background(), "presupuesto", "P-", nil)
	require.NoError(t, err)
	assert.Equal(t, "P-0001", n1)

	n2, err := svc.NextNumber(context.Background(), "presupuesto", "P-", nil)
	require.NoError(t, err)
	assert.Equal(t, "P-0002", n2)
}

func TestNextNumberReconciliaConMaximoEnUso(t *testing.T) {
	svc := NewSecuenciaService(newStubSecuenciaRepo())

	// Documents numbered up to 41 already exist; the counter must skip past.
	n, err := svc.NextNumber(context.Background(), "factura", "A-", func(context.Context, string) (int64, error) {
		return 41, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "A-0042", n)
}

func TestNextNumberNuncaRetrocede(t *testing.T) {
	svc := NewSecuenciaService(newStubSecuenciaRepo())

	_, err := svc.NextNumber(context.Background(), "presupuesto", "P-", func(context.Context, string) (int64, error) {
		return 10, nil
	})
	require.NoError(t, err)

	// A stale maxUsado lower than the counter must not shrink it.
	n, err := svc.NextNumber(context.Background(), "presupuesto", "P-", func(context.Context, string) (int64, error) {
		return 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "P-0012", n)
}

func TestNextNumberEnsanchaPasadosCuatroDigitos(t *testing.T) {
	svc := NewSecuenciaService(newStubSecuenciaRepo())

	n, err := svc.NextNumber(context.Background(), "factura", "A-", func(context.Context, string) (int64, error) {
		return 9999, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "A-10000", n)
}

func TestNextNumberConcurrenteSinDuplicados(t *testing.T) {
	svc := NewSecuenciaService(newStubSecuenciaRepo())

	const total = 50
	resultados := make(chan string, total)
	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := svc.NextNumber(context.Background(), "presupuesto", "P-", nil)
			assert.NoError(t, err)
			resultados <- n
		}()
	}
	wg.Wait()
	close(resultados)

	vistos := make(map[string]bool, total)
	for n := range resultados {
		assert.False(t, vistos[n], "numero duplicado: %s", n)
		vistos[n] = true
	}
	assert.Len(t, vistos, total)
}

func TestNextNumberPropagaErrorDeRelevamiento(t *testing.T) {
	svc := NewSecuenciaService(newStubSecuenciaRepo())

	_, err := svc.NextNumber(context.Background(), "presupuesto", "P-", func(context.Context, string) (int64, error) {
		return 0, fmt.Errorf("db caida")
	})
	assert.Error(t, err)
}
