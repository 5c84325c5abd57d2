package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badkluster/taller-backend-sub000/internal/dto"
)

func TestActualizarSettingsParcial(t *testing.T) {
	svc := NewSettingsService(newStubSettingsRepo())

	nombre := "Taller Norte"
	apagado := false
	resp, err := svc.Actualizar(context.Background(), dto.ActualizarSettingsRequest{
		Nombre:             &nombre,
		Reminder24hEnabled: &apagado,
	})
	require.NoError(t, err)
	assert.Equal(t, "Taller Norte", resp.Nombre)
	assert.False(t, resp.Reminder24hEnabled)
	// Untouched fields keep their value.
	assert.Equal(t, 9, resp.SlotInicioHora)
}

func TestActualizarSettingsReemplazaBloqueos(t *testing.T) {
	svc := NewSettingsService(newStubSettingsRepo())

	desde := time.Date(2026, 12, 24, 0, 0, 0, 0, time.Local)
	bloqueos := []dto.RangoBloqueadoRequest{
		{Desde: desde, Hasta: desde.AddDate(0, 0, 1), SoloFecha: true, Motivo: "fiestas"},
	}
	resp, err := svc.Actualizar(context.Background(), dto.ActualizarSettingsRequest{Bloqueos: &bloqueos})
	require.NoError(t, err)
	require.Len(t, resp.Bloqueos, 1)
	assert.Equal(t, "fiestas", resp.Bloqueos[0].Motivo)

	vacio := []dto.RangoBloqueadoRequest{}
	resp, err = svc.Actualizar(context.Background(), dto.ActualizarSettingsRequest{Bloqueos: &vacio})
	require.NoError(t, err)
	assert.Empty(t, resp.Bloqueos)
}

func TestActualizarSettingsRangoInvertidoRechazado(t *testing.T) {
	svc := NewSettingsService(newStubSettingsRepo())

	desde := time.Date(2026, 12, 24, 0, 0, 0, 0, time.Local)
	bloqueos := []dto.RangoBloqueadoRequest{{Desde: desde, Hasta: desde.AddDate(0, 0, -1)}}
	_, err := svc.Actualizar(context.Background(), dto.ActualizarSettingsRequest{Bloqueos: &bloqueos})
	assert.Error(t, err)
}

func TestActualizarSettingsGrillaInvalidaRechazada(t *testing.T) {
	svc := NewSettingsService(newStubSettingsRepo())

	inicio, fin := 18, 9
	_, err := svc.Actualizar(context.Background(), dto.ActualizarSettingsRequest{
		SlotInicioHora: &inicio,
		SlotFinHora:    &fin,
	})
	assert.Error(t, err)
}
