package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badkluster/taller-backend-sub000/internal/dto"
	"github.com/badkluster/taller-backend-sub000/internal/model"
)

type citaFixture struct {
	svc           CitaService
	repo          *stubCitaRepo
	ordenRepo     *stubOrdenRepo
	docRepo       *stubDocumentoRepo
	clientes      *stubClienteRepo
	vehiculos     *stubVehiculoRepo
	settings      *stubSettingsRepo
	recordatorios *stubRecordatorioRepo
	encolador     *fakeEncolador
}

func newCitaFixture() *citaFixture {
	f := &citaFixture{
		repo:          newStubCitaRepo(),
		ordenRepo:     newStubOrdenRepo(),
		docRepo:       newStubDocumentoRepo(),
		clientes:      newStubClienteRepo(),
		vehiculos:     newStubVehiculoRepo(),
		settings:      newStubSettingsRepo(),
		recordatorios: newStubRecordatorioRepo(),
		encolador:     &fakeEncolador{},
	}
	f.svc = NewCitaService(f.repo, f.ordenRepo, f.docRepo, f.clientes, f.vehiculos, f.settings, f.recordatorios, f.encolador)
	return f
}

func (f *citaFixture) sembrarClienteYVehiculo(t *testing.T, email string) (*model.Cliente, *model.Vehiculo) {
	t.Helper()
	cliente := model.Cliente{Nombre: "Ana", Telefono: "1155550000"}
	if email != "" {
		cliente.Email = &email
	}
	require.NoError(t, f.clientes.Create(context.Background(), &cliente))
	vehiculo := model.Vehiculo{
		Patente:            "AB 123 CD",
		PatenteNormalizada: "AB123CD",
		Marca:              "Ford",
		Modelo:             "Fiesta",
		ClienteID:          cliente.ID,
	}
	require.NoError(t, f.vehiculos.Create(context.Background(), &vehiculo))
	return &cliente, &vehiculo
}

func mananaALas(hora int) time.Time {
	m := time.Now().AddDate(0, 0, 1)
	return time.Date(m.Year(), m.Month(), m.Day(), hora, 0, 0, 0, time.Local)
}

func TestCrearCitaNotificaPorEmail(t *testing.T) {
	f := newCitaFixture()
	cliente, vehiculo := f.sembrarClienteYVehiculo(t, "ana@test.local")

	resp, err := f.svc.Crear(context.Background(), dto.CrearCitaRequest{
		VehiculoID: vehiculo.ID.String(),
		ClienteID:  cliente.ID.String(),
		StartAt:    mananaALas(10),
		EndAt:      mananaALas(11),
	})
	require.NoError(t, err)
	assert.Equal(t, model.CitaScheduled, resp.Estado)
	assert.False(t, resp.EmailPendiente)
	require.Len(t, f.encolador.mensajes, 1)
	assert.Equal(t, "ana@test.local", f.encolador.mensajes[0].To)
}

func TestCrearCitaConColaCaidaEsExitoDegradado(t *testing.T) {
	f := newCitaFixture()
	cliente, vehiculo := f.sembrarClienteYVehiculo(t, "ana@test.local")
	f.encolador.falla = true

	resp, err := f.svc.Crear(context.Background(), dto.CrearCitaRequest{
		VehiculoID: vehiculo.ID.String(),
		ClienteID:  cliente.ID.String(),
		StartAt:    mananaALas(10),
		EndAt:      mananaALas(11),
	})
	require.NoError(t, err)
	assert.True(t, resp.EmailPendiente)
}

func TestCrearCitaClienteSinEmailNoQuedaPendiente(t *testing.T) {
	f := newCitaFixture()
	cliente, vehiculo := f.sembrarClienteYVehiculo(t, "")

	resp, err := f.svc.Crear(context.Background(), dto.CrearCitaRequest{
		VehiculoID: vehiculo.ID.String(),
		ClienteID:  cliente.ID.String(),
		StartAt:    mananaALas(10),
		EndAt:      mananaALas(11),
	})
	require.NoError(t, err)
	assert.False(t, resp.EmailPendiente)
	assert.Empty(t, f.encolador.mensajes)
}

func TestCrearCitaDuplicadaEnElDiaRechazada(t *testing.T) {
	f := newCitaFixture()
	cliente, vehiculo := f.sembrarClienteYVehiculo(t, "")

	_, err := f.svc.Crear(context.Background(), dto.CrearCitaRequest{
		VehiculoID: vehiculo.ID.String(),
		ClienteID:  cliente.ID.String(),
		StartAt:    mananaALas(10),
		EndAt:      mananaALas(11),
	})
	require.NoError(t, err)

	// Same vehicle, same day, non-overlapping hours: still rejected.
	_, err = f.svc.Crear(context.Background(), dto.CrearCitaRequest{
		VehiculoID: vehiculo.ID.String(),
		ClienteID:  cliente.ID.String(),
		StartAt:    mananaALas(15),
		EndAt:      mananaALas(16),
	})
	assert.ErrorIs(t, err, ErrCitaDuplicadaEnDia)
}

func TestCancelarLiberaElDiaDelVehiculo(t *testing.T) {
	f := newCitaFixture()
	cliente, vehiculo := f.sembrarClienteYVehiculo(t, "")

	resp, err := f.svc.Crear(context.Background(), dto.CrearCitaRequest{
		VehiculoID: vehiculo.ID.String(),
		ClienteID:  cliente.ID.String(),
		StartAt:    mananaALas(10),
		EndAt:      mananaALas(11),
	})
	require.NoError(t, err)

	_, err = f.svc.Cancelar(context.Background(), uuid.MustParse(resp.ID), dto.CancelarCitaRequest{Motivo: "el cliente avisó"})
	require.NoError(t, err)

	_, err = f.svc.Crear(context.Background(), dto.CrearCitaRequest{
		VehiculoID: vehiculo.ID.String(),
		ClienteID:  cliente.ID.String(),
		StartAt:    mananaALas(15),
		EndAt:      mananaALas(16),
	})
	assert.NoError(t, err)
}

func TestCrearCitaProgramaRecordatorioDurable(t *testing.T) {
	f := newCitaFixture()
	cliente, vehiculo := f.sembrarClienteYVehiculo(t, "ana@test.local")

	resp, err := f.svc.Crear(context.Background(), dto.CrearCitaRequest{
		VehiculoID: vehiculo.ID.String(),
		ClienteID:  cliente.ID.String(),
		StartAt:    mananaALas(10),
		EndAt:      mananaALas(11),
	})
	require.NoError(t, err)

	jobs := f.recordatorios.deCita(uuid.MustParse(resp.ID))
	require.Len(t, jobs, 1)
	assert.Equal(t, model.CanalEmail, jobs[0].Canal)
	assert.Equal(t, model.RecordatorioPending, jobs[0].Estado)
	assert.True(t, jobs[0].RunAt.Equal(mananaALas(10).Add(-2*time.Hour)))
}

func TestCrearCitaInminenteNoProgramaRecordatorio(t *testing.T) {
	f := newCitaFixture()
	cliente, vehiculo := f.sembrarClienteYVehiculo(t, "")

	// Starts within the reminder lead time: a job would already be overdue.
	resp, err := f.svc.Crear(context.Background(), dto.CrearCitaRequest{
		VehiculoID: vehiculo.ID.String(),
		ClienteID:  cliente.ID.String(),
		StartAt:    time.Now().Add(time.Hour),
		EndAt:      time.Now().Add(2 * time.Hour),
	})
	require.NoError(t, err)
	assert.Empty(t, f.recordatorios.deCita(uuid.MustParse(resp.ID)))
}

func TestCancelarCitaLimpiaSusRecordatorios(t *testing.T) {
	f := newCitaFixture()
	cliente, vehiculo := f.sembrarClienteYVehiculo(t, "")

	resp, err := f.svc.Crear(context.Background(), dto.CrearCitaRequest{
		VehiculoID: vehiculo.ID.String(),
		ClienteID:  cliente.ID.String(),
		StartAt:    mananaALas(10),
		EndAt:      mananaALas(11),
	})
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)
	require.Len(t, f.recordatorios.deCita(id), 1)

	_, err = f.svc.Cancelar(context.Background(), id, dto.CancelarCitaRequest{Motivo: "el cliente avisó"})
	require.NoError(t, err)
	assert.Empty(t, f.recordatorios.deCita(id))
}

func TestReprogramarReemplazaElRecordatorio(t *testing.T) {
	f := newCitaFixture()
	cliente, vehiculo := f.sembrarClienteYVehiculo(t, "")

	resp, err := f.svc.Crear(context.Background(), dto.CrearCitaRequest{
		VehiculoID: vehiculo.ID.String(),
		ClienteID:  cliente.ID.String(),
		StartAt:    mananaALas(10),
		EndAt:      mananaALas(11),
	})
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	nuevoInicio, nuevoFin := mananaALas(15), mananaALas(16)
	_, err = f.svc.Actualizar(context.Background(), id, dto.ActualizarCitaRequest{
		StartAt: &nuevoInicio,
		EndAt:   &nuevoFin,
	})
	require.NoError(t, err)

	jobs := f.recordatorios.deCita(id)
	require.Len(t, jobs, 1)
	assert.True(t, jobs[0].RunAt.Equal(nuevoInicio.Add(-2*time.Hour)))
}

func TestCrearCitaEnRangoBloqueadoRechazada(t *testing.T) {
	f := newCitaFixture()
	cliente, vehiculo := f.sembrarClienteYVehiculo(t, "")

	s, _ := f.settings.Get(context.Background())
	s.Bloqueos = []model.RangoBloqueado{{
		Desde: mananaALas(0), Hasta: mananaALas(0), SoloFecha: true, Motivo: "feriado",
	}}
	require.NoError(t, f.settings.Update(context.Background(), s))

	_, err := f.svc.Crear(context.Background(), dto.CrearCitaRequest{
		VehiculoID: vehiculo.ID.String(),
		ClienteID:  cliente.ID.String(),
		StartAt:    mananaALas(10),
		EndAt:      mananaALas(11),
	})
	assert.ErrorIs(t, err, ErrRangoBloqueado)
}

func TestReprogramarRevalidaExcluyendoseASiMisma(t *testing.T) {
	f := newCitaFixture()
	cliente, vehiculo := f.sembrarClienteYVehiculo(t, "")

	resp, err := f.svc.Crear(context.Background(), dto.CrearCitaRequest{
		VehiculoID: vehiculo.ID.String(),
		ClienteID:  cliente.ID.String(),
		StartAt:    mananaALas(10),
		EndAt:      mananaALas(11),
	})
	require.NoError(t, err)

	// Moving within the same day must not trip the same-day guard.
	nuevoInicio, nuevoFin := mananaALas(15), mananaALas(16)
	out, err := f.svc.Actualizar(context.Background(), uuid.MustParse(resp.ID), dto.ActualizarCitaRequest{
		StartAt: &nuevoInicio,
		EndAt:   &nuevoFin,
	})
	require.NoError(t, err)
	assert.Equal(t, nuevoInicio.Format(time.RFC3339), out.StartAt)
}

func TestConvertirAOrdenUnaSolaVez(t *testing.T) {
	f := newCitaFixture()
	cliente, vehiculo := f.sembrarClienteYVehiculo(t, "")

	resp, err := f.svc.Crear(context.Background(), dto.CrearCitaRequest{
		VehiculoID:   vehiculo.ID.String(),
		ClienteID:    cliente.ID.String(),
		StartAt:      mananaALas(10),
		EndAt:        mananaALas(11),
		TipoServicio: "repair",
	})
	require.NoError(t, err)
	citaID := uuid.MustParse(resp.ID)

	orden, err := f.svc.ConvertirAOrden(context.Background(), citaID)
	require.NoError(t, err)
	assert.Equal(t, model.CategoriaReparacion, orden.Categoria)
	assert.Equal(t, model.OrdenPresupuesto, orden.Estado)

	cita, err := f.repo.FindByID(context.Background(), citaID)
	require.NoError(t, err)
	assert.Equal(t, model.CitaInProgress, cita.Estado)

	_, err = f.svc.ConvertirAOrden(context.Background(), citaID)
	require.ErrorIs(t, err, ErrOrdenYaExiste)
	assert.EqualError(t, err, "ya existe una Orden de Trabajo para esta cita")
}

func TestConvertirAOrdenArrastraPresupuestoDeLaCita(t *testing.T) {
	f := newCitaFixture()
	cliente, vehiculo := f.sembrarClienteYVehiculo(t, "")

	resp, err := f.svc.Crear(context.Background(), dto.CrearCitaRequest{
		VehiculoID:   vehiculo.ID.String(),
		ClienteID:    cliente.ID.String(),
		StartAt:      mananaALas(10),
		EndAt:        mananaALas(11),
		TipoServicio: "diagnosis",
	})
	require.NoError(t, err)
	citaID := uuid.MustParse(resp.ID)

	p := model.Presupuesto{
		Numero:     "P-0005",
		VehiculoID: vehiculo.ID,
		ClienteID:  cliente.ID,
		CitaID:     &citaID,
		PdfUrl:     strPtr("http://blobs.test/raw/presupuestos/P-0005.pdf"),
	}
	require.NoError(t, f.docRepo.CreatePresupuesto(context.Background(), &p))

	orden, err := f.svc.ConvertirAOrden(context.Background(), citaID)
	require.NoError(t, err)
	require.NotNil(t, orden.PresupuestoNumero)
	assert.Equal(t, "P-0005", *orden.PresupuestoNumero)

	// The quote now points back at the orden.
	vinculado, err := f.docRepo.FindPresupuestoByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, vinculado.OrdenID)
	assert.Equal(t, orden.ID, vinculado.OrdenID.String())
}

func TestConvertirCitaCanceladaRechazada(t *testing.T) {
	f := newCitaFixture()
	cita := model.Cita{VehiculoID: uuid.New(), ClienteID: uuid.New(), Estado: model.CitaCancelled}
	require.NoError(t, f.repo.Create(context.Background(), &cita))

	_, err := f.svc.ConvertirAOrden(context.Background(), cita.ID)
	assert.Error(t, err)
}

func TestCrearSolicitudExigeTresDiasDistintos(t *testing.T) {
	f := newCitaFixture()

	base := dto.CrearSolicitudRequest{
		NombreCliente: "Pedro",
		Telefono:      "1166660000",
		Vehiculo:      dto.VehiculoSnapshotRequest{Patente: "CD 456 EF"},
		TipoSolicitud: "diagnosis",
	}

	// Three dates but only two distinct days.
	base.FechasSugeridas = []time.Time{mananaALas(9), mananaALas(15), mananaALas(9).AddDate(0, 0, 1)}
	_, err := f.svc.CrearSolicitud(context.Background(), base)
	assert.Error(t, err)

	base.FechasSugeridas = []time.Time{mananaALas(9), mananaALas(9).AddDate(0, 0, 1), mananaALas(9).AddDate(0, 0, 2)}
	resp, err := f.svc.CrearSolicitud(context.Background(), base)
	require.NoError(t, err)
	assert.Equal(t, model.SolicitudPending, resp.Estado)
}

func TestConfirmarSolicitudCreaClienteVehiculoYCita(t *testing.T) {
	f := newCitaFixture()

	sol, err := f.svc.CrearSolicitud(context.Background(), dto.CrearSolicitudRequest{
		NombreCliente:   "Pedro",
		Telefono:        "1166660000",
		Vehiculo:        dto.VehiculoSnapshotRequest{Patente: "cd-456 ef", Marca: "Peugeot", Modelo: "208"},
		TipoSolicitud:   "repair",
		FechasSugeridas: []time.Time{mananaALas(9), mananaALas(9).AddDate(0, 0, 1), mananaALas(9).AddDate(0, 0, 2)},
	})
	require.NoError(t, err)

	resp, err := f.svc.ConfirmarSolicitud(context.Background(), uuid.MustParse(sol.ID), dto.ConfirmarSolicitudRequest{
		StartAt: mananaALas(9),
		EndAt:   mananaALas(10),
	})
	require.NoError(t, err)
	assert.Equal(t, model.SolicitudConfirmed, resp.Estado)
	require.NotNil(t, resp.CitaID)

	cita, err := f.repo.FindByID(context.Background(), uuid.MustParse(*resp.CitaID))
	require.NoError(t, err)
	assert.Equal(t, model.CitaConfirmed, cita.Estado)

	// Cliente found by phone, vehiculo by normalized plate.
	cliente, err := f.clientes.FindByTelefono(context.Background(), "1166660000")
	require.NoError(t, err)
	assert.Equal(t, "Pedro", cliente.Nombre)
	vehiculo, err := f.vehiculos.FindByPatenteNormalizada(context.Background(), "CD456EF")
	require.NoError(t, err)
	assert.Equal(t, cliente.ID, vehiculo.ClienteID)

	// Resolving twice is rejected.
	_, err = f.svc.RechazarSolicitud(context.Background(), uuid.MustParse(sol.ID), dto.RechazarSolicitudRequest{Motivo: "sin lugar"})
	assert.Error(t, err)
}

func TestConfirmarSolicitudReutilizaClienteExistente(t *testing.T) {
	f := newCitaFixture()
	existente := model.Cliente{Nombre: "Pedro", Telefono: "1166660000"}
	require.NoError(t, f.clientes.Create(context.Background(), &existente))

	sol, err := f.svc.CrearSolicitud(context.Background(), dto.CrearSolicitudRequest{
		NombreCliente:   "Pedro Gómez",
		Telefono:        "1166660000",
		Vehiculo:        dto.VehiculoSnapshotRequest{Patente: "GH 789 IJ"},
		TipoSolicitud:   "diagnosis",
		FechasSugeridas: []time.Time{mananaALas(9), mananaALas(9).AddDate(0, 0, 1), mananaALas(9).AddDate(0, 0, 2)},
	})
	require.NoError(t, err)

	resp, err := f.svc.ConfirmarSolicitud(context.Background(), uuid.MustParse(sol.ID), dto.ConfirmarSolicitudRequest{
		StartAt: mananaALas(11),
		EndAt:   mananaALas(12),
	})
	require.NoError(t, err)

	cita, err := f.repo.FindByID(context.Background(), uuid.MustParse(*resp.CitaID))
	require.NoError(t, err)
	assert.Equal(t, existente.ID, cita.ClienteID)
}
