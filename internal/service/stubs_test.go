package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/badkluster/taller-backend-sub000/internal/infra"
	"github.com/badkluster/taller-backend-sub000/internal/model"
	"github.com/badkluster/taller-backend-sub000/internal/repository"
)

var errNoEncontrado = errors.New("not found")

func mismoDia(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// ── orden ─────────────────────────────────────────────────────────────────────

type stubOrdenRepo struct {
	mu      sync.Mutex
	ordenes map[uuid.UUID]*model.OrdenTrabajo
}

var _ repository.OrdenRepository = (*stubOrdenRepo)(nil)

func newStubOrdenRepo() *stubOrdenRepo {
	return &stubOrdenRepo{ordenes: make(map[uuid.UUID]*model.OrdenTrabajo)}
}

func (r *stubOrdenRepo) Create(_ context.Context, o *model.OrdenTrabajo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = time.Now()
	copia := *o
	r.ordenes[o.ID] = &copia
	return nil
}

func (r *stubOrdenRepo) FindByID(_ context.Context, id uuid.UUID) (*model.OrdenTrabajo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.ordenes[id]
	if !ok {
		return nil, errNoEncontrado
	}
	copia := *o
	return &copia, nil
}

func (r *stubOrdenRepo) FindByCitaID(_ context.Context, citaID uuid.UUID) (*model.OrdenTrabajo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.ordenes {
		if o.CitaID != nil && *o.CitaID == citaID {
			copia := *o
			return &copia, nil
		}
	}
	return nil, errNoEncontrado
}

func (r *stubOrdenRepo) Update(_ context.Context, o *model.OrdenTrabajo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ordenes[o.ID]; !ok {
		return errNoEncontrado
	}
	copia := *o
	r.ordenes[o.ID] = &copia
	return nil
}

func (r *stubOrdenRepo) ReplaceItems(_ context.Context, ordenID uuid.UUID, items []model.OrdenItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.ordenes[ordenID]
	if !ok {
		return errNoEncontrado
	}
	o.Items = append([]model.OrdenItem(nil), items...)
	return nil
}

func (r *stubOrdenRepo) AppendEvidencia(_ context.Context, e *model.Evidencia) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.ordenes[e.OrdenID]
	if !ok {
		return errNoEncontrado
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	o.Evidencias = append(o.Evidencias, *e)
	return nil
}

func (r *stubOrdenRepo) List(_ context.Context, estado string, vehiculoID *uuid.UUID, limit, offset int) ([]model.OrdenTrabajo, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.OrdenTrabajo
	for _, o := range r.ordenes {
		if estado != "" && o.Estado != estado {
			continue
		}
		if vehiculoID != nil && o.VehiculoID != *vehiculoID {
			continue
		}
		res = append(res, *o)
	}
	return res, int64(len(res)), nil
}

func (r *stubOrdenRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ordenes[id]; !ok {
		return errNoEncontrado
	}
	delete(r.ordenes, id)
	return nil
}

func (r *stubOrdenRepo) MantenimientoVencidas(_ context.Context, ahora, corte time.Time) ([]model.OrdenTrabajo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.OrdenTrabajo
	for _, o := range r.ordenes {
		if o.MaintenanceDueAt == nil || o.MaintenanceDueAt.After(ahora) {
			continue
		}
		if o.MaintenanceLastNotifiedAt != nil && !o.MaintenanceLastNotifiedAt.Before(corte) {
			continue
		}
		res = append(res, *o)
	}
	return res, nil
}

// ── cita ──────────────────────────────────────────────────────────────────────

type stubCitaRepo struct {
	mu          sync.Mutex
	citas       map[uuid.UUID]*model.Cita
	solicitudes map[uuid.UUID]*model.SolicitudCita
}

var _ repository.CitaRepository = (*stubCitaRepo)(nil)

func newStubCitaRepo() *stubCitaRepo {
	return &stubCitaRepo{
		citas:       make(map[uuid.UUID]*model.Cita),
		solicitudes: make(map[uuid.UUID]*model.SolicitudCita),
	}
}

func (r *stubCitaRepo) Create(_ context.Context, c *model.Cita) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	copia := *c
	r.citas[c.ID] = &copia
	return nil
}

func (r *stubCitaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cita, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.citas[id]
	if !ok {
		return nil, errNoEncontrado
	}
	copia := *c
	return &copia, nil
}

func (r *stubCitaRepo) Update(_ context.Context, c *model.Cita) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.citas[c.ID]; !ok {
		return errNoEncontrado
	}
	copia := *c
	r.citas[c.ID] = &copia
	return nil
}

func (r *stubCitaRepo) List(_ context.Context, desde, hasta *time.Time, estado string, limit, offset int) ([]model.Cita, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Cita
	for _, c := range r.citas {
		if estado != "" && c.Estado != estado {
			continue
		}
		if desde != nil && c.StartAt.Before(*desde) {
			continue
		}
		if hasta != nil && !c.StartAt.Before(*hasta) {
			continue
		}
		res = append(res, *c)
	}
	return res, int64(len(res)), nil
}

func (r *stubCitaRepo) ActivasEnDia(_ context.Context, vehiculoID uuid.UUID, dia time.Time, excluirID uuid.UUID) ([]model.Cita, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Cita
	for _, c := range r.citas {
		if c.VehiculoID != vehiculoID || c.ID == excluirID || !c.Activa() {
			continue
		}
		if mismoDia(c.StartAt, dia) {
			res = append(res, *c)
		}
	}
	return res, nil
}

func (r *stubCitaRepo) ActivasDelDia(_ context.Context, dia time.Time) ([]model.Cita, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Cita
	for _, c := range r.citas {
		if c.Activa() && mismoDia(c.StartAt, dia) {
			res = append(res, *c)
		}
	}
	return res, nil
}

func (r *stubCitaRepo) Vencidas(_ context.Context, corte time.Time) ([]model.Cita, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Cita
	for _, c := range r.citas {
		if (c.Estado == model.CitaConfirmed || c.Estado == model.CitaInProgress) && c.EndAt.Before(corte) {
			res = append(res, *c)
		}
	}
	return res, nil
}

func (r *stubCitaRepo) ConfirmadasEntre(_ context.Context, desde, hasta time.Time) ([]model.Cita, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Cita
	for _, c := range r.citas {
		if c.Estado == model.CitaConfirmed && !c.StartAt.Before(desde) && c.StartAt.Before(hasta) {
			res = append(res, *c)
		}
	}
	return res, nil
}

func (r *stubCitaRepo) DelDia(_ context.Context, dia time.Time) ([]model.Cita, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Cita
	for _, c := range r.citas {
		if mismoDia(c.StartAt, dia) {
			res = append(res, *c)
		}
	}
	return res, nil
}

func (r *stubCitaRepo) CreateSolicitud(_ context.Context, s *model.SolicitudCita) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	copia := *s
	r.solicitudes[s.ID] = &copia
	return nil
}

func (r *stubCitaRepo) FindSolicitudByID(_ context.Context, id uuid.UUID) (*model.SolicitudCita, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.solicitudes[id]
	if !ok {
		return nil, errNoEncontrado
	}
	copia := *s
	return &copia, nil
}

func (r *stubCitaRepo) UpdateSolicitud(_ context.Context, s *model.SolicitudCita) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.solicitudes[s.ID]; !ok {
		return errNoEncontrado
	}
	copia := *s
	r.solicitudes[s.ID] = &copia
	return nil
}

func (r *stubCitaRepo) ListSolicitudes(_ context.Context, estado string) ([]model.SolicitudCita, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.SolicitudCita
	for _, s := range r.solicitudes {
		if estado == "" || s.Estado == estado {
			res = append(res, *s)
		}
	}
	return res, nil
}

// ── documentos ────────────────────────────────────────────────────────────────

type stubDocumentoRepo struct {
	mu           sync.Mutex
	presupuestos map[uuid.UUID]*model.Presupuesto
	facturas     map[uuid.UUID]*model.Factura
}

var _ repository.DocumentoRepository = (*stubDocumentoRepo)(nil)

func newStubDocumentoRepo() *stubDocumentoRepo {
	return &stubDocumentoRepo{
		presupuestos: make(map[uuid.UUID]*model.Presupuesto),
		facturas:     make(map[uuid.UUID]*model.Factura),
	}
}

func (r *stubDocumentoRepo) CreatePresupuesto(_ context.Context, p *model.Presupuesto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	copia := *p
	r.presupuestos[p.ID] = &copia
	return nil
}

func (r *stubDocumentoRepo) FindPresupuestoByID(_ context.Context, id uuid.UUID) (*model.Presupuesto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.presupuestos[id]
	if !ok {
		return nil, errNoEncontrado
	}
	copia := *p
	return &copia, nil
}

func (r *stubDocumentoRepo) UpdatePresupuesto(_ context.Context, p *model.Presupuesto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.presupuestos[p.ID]; !ok {
		return errNoEncontrado
	}
	copia := *p
	r.presupuestos[p.ID] = &copia
	return nil
}

func (r *stubDocumentoRepo) ListPresupuestos(_ context.Context, limit, offset int) ([]model.Presupuesto, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Presupuesto
	for _, p := range r.presupuestos {
		res = append(res, *p)
	}
	return res, int64(len(res)), nil
}

func (r *stubDocumentoRepo) UltimoPresupuestoDeOrden(_ context.Context, ordenID uuid.UUID, citaID *uuid.UUID) (*model.Presupuesto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ultimo *model.Presupuesto
	for _, p := range r.presupuestos {
		vinculado := (p.OrdenID != nil && *p.OrdenID == ordenID) ||
			(citaID != nil && p.CitaID != nil && *p.CitaID == *citaID)
		if !vinculado {
			continue
		}
		if ultimo == nil || p.CreatedAt.After(ultimo.CreatedAt) {
			ultimo = p
		}
	}
	if ultimo == nil {
		return nil, errNoEncontrado
	}
	copia := *ultimo
	return &copia, nil
}

func (r *stubDocumentoRepo) UltimoPresupuestoDeCita(_ context.Context, citaID uuid.UUID) (*model.Presupuesto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ultimo *model.Presupuesto
	for _, p := range r.presupuestos {
		if p.CitaID == nil || *p.CitaID != citaID {
			continue
		}
		if ultimo == nil || p.CreatedAt.After(ultimo.CreatedAt) {
			ultimo = p
		}
	}
	if ultimo == nil {
		return nil, errNoEncontrado
	}
	copia := *ultimo
	return &copia, nil
}

func (r *stubDocumentoRepo) PresupuestosDeOrden(_ context.Context, ordenID uuid.UUID) ([]model.Presupuesto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Presupuesto
	for _, p := range r.presupuestos {
		if p.OrdenID != nil && *p.OrdenID == ordenID {
			res = append(res, *p)
		}
	}
	return res, nil
}

func (r *stubDocumentoRepo) DeletePresupuestosDeOrden(_ context.Context, ordenID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.presupuestos {
		if p.OrdenID != nil && *p.OrdenID == ordenID {
			delete(r.presupuestos, id)
		}
	}
	return nil
}

func maxSufijo(numeros []string, prefijo string) int64 {
	var max int64
	for _, n := range numeros {
		if !strings.HasPrefix(n, prefijo) {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimPrefix(n, prefijo), 10, 64)
		if err == nil && v > max {
			max = v
		}
	}
	return max
}

func (r *stubDocumentoRepo) MaxSufijoPresupuesto(_ context.Context, prefijo string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var numeros []string
	for _, p := range r.presupuestos {
		numeros = append(numeros, p.Numero)
	}
	return maxSufijo(numeros, prefijo), nil
}

func (r *stubDocumentoRepo) CreateFactura(_ context.Context, f *model.Factura) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.Estado == "" {
		// Mirrors the column default declared on model.Factura.Estado.
		f.Estado = model.DocumentoEmitido
	}
	f.CreatedAt = time.Now()
	copia := *f
	r.facturas[f.ID] = &copia
	return nil
}

func (r *stubDocumentoRepo) FindFacturaByID(_ context.Context, id uuid.UUID) (*model.Factura, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.facturas[id]
	if !ok {
		return nil, errNoEncontrado
	}
	copia := *f
	return &copia, nil
}

func (r *stubDocumentoRepo) UpdateFactura(_ context.Context, f *model.Factura) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.facturas[f.ID]; !ok {
		return errNoEncontrado
	}
	copia := *f
	r.facturas[f.ID] = &copia
	return nil
}

func (r *stubDocumentoRepo) ListFacturas(_ context.Context, limit, offset int) ([]model.Factura, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Factura
	for _, f := range r.facturas {
		res = append(res, *f)
	}
	return res, int64(len(res)), nil
}

func (r *stubDocumentoRepo) FacturasDeOrden(_ context.Context, ordenID uuid.UUID) ([]model.Factura, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Factura
	for _, f := range r.facturas {
		if f.OrdenID == ordenID {
			res = append(res, *f)
		}
	}
	return res, nil
}

func (r *stubDocumentoRepo) DeleteFacturasDeOrden(_ context.Context, ordenID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, f := range r.facturas {
		if f.OrdenID == ordenID {
			delete(r.facturas, id)
		}
	}
	return nil
}

func (r *stubDocumentoRepo) MaxSufijoFactura(_ context.Context, prefijo string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var numeros []string
	for _, f := range r.facturas {
		numeros = append(numeros, f.Numero)
	}
	return maxSufijo(numeros, prefijo), nil
}

// ── clientes / vehiculos / settings ───────────────────────────────────────────

type stubClienteRepo struct {
	mu           sync.Mutex
	clientes     map[uuid.UUID]*model.Cliente
	referenciado map[uuid.UUID]bool
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{
		clientes:     make(map[uuid.UUID]*model.Cliente),
		referenciado: make(map[uuid.UUID]bool),
	}
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	copia := *c
	r.clientes[c.ID] = &copia
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clientes[id]
	if !ok {
		return nil, errNoEncontrado
	}
	copia := *c
	return &copia, nil
}

func (r *stubClienteRepo) FindByTelefono(_ context.Context, telefono string) (*model.Cliente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clientes {
		if c.Telefono == telefono {
			copia := *c
			return &copia, nil
		}
	}
	return nil, errNoEncontrado
}

func (r *stubClienteRepo) FindByEmail(_ context.Context, email string) (*model.Cliente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clientes {
		if c.Email != nil && *c.Email == email {
			copia := *c
			return &copia, nil
		}
	}
	return nil, errNoEncontrado
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clientes[c.ID]; !ok {
		return errNoEncontrado
	}
	copia := *c
	r.clientes[c.ID] = &copia
	return nil
}

func (r *stubClienteRepo) List(_ context.Context, busqueda string, limit, offset int) ([]model.Cliente, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Cliente
	for _, c := range r.clientes {
		res = append(res, *c)
	}
	return res, int64(len(res)), nil
}

func (r *stubClienteRepo) TieneReferencias(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.referenciado[id], nil
}

func (r *stubClienteRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clientes, id)
	return nil
}

type stubVehiculoRepo struct {
	mu        sync.Mutex
	vehiculos map[uuid.UUID]*model.Vehiculo
}

var _ repository.VehiculoRepository = (*stubVehiculoRepo)(nil)

func newStubVehiculoRepo() *stubVehiculoRepo {
	return &stubVehiculoRepo{vehiculos: make(map[uuid.UUID]*model.Vehiculo)}
}

func (r *stubVehiculoRepo) Create(_ context.Context, v *model.Vehiculo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	copia := *v
	r.vehiculos[v.ID] = &copia
	return nil
}

func (r *stubVehiculoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Vehiculo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehiculos[id]
	if !ok {
		return nil, errNoEncontrado
	}
	copia := *v
	return &copia, nil
}

func (r *stubVehiculoRepo) FindByPatenteNormalizada(_ context.Context, patente string) (*model.Vehiculo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.vehiculos {
		if v.PatenteNormalizada == patente {
			copia := *v
			return &copia, nil
		}
	}
	return nil, errNoEncontrado
}

func (r *stubVehiculoRepo) Update(_ context.Context, v *model.Vehiculo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehiculos[v.ID]; !ok {
		return errNoEncontrado
	}
	copia := *v
	r.vehiculos[v.ID] = &copia
	return nil
}

func (r *stubVehiculoRepo) List(_ context.Context, clienteID *uuid.UUID, limit, offset int) ([]model.Vehiculo, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Vehiculo
	for _, v := range r.vehiculos {
		if clienteID != nil && v.ClienteID != *clienteID {
			continue
		}
		res = append(res, *v)
	}
	return res, int64(len(res)), nil
}

func (r *stubVehiculoRepo) CambiarDueno(_ context.Context, vehiculoID, nuevoClienteID uuid.UUID, nota *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehiculos[vehiculoID]
	if !ok {
		return errNoEncontrado
	}
	ahora := time.Now()
	for i := range v.Historial {
		if v.Historial[i].HastaAt == nil {
			v.Historial[i].HastaAt = &ahora
		}
	}
	v.Historial = append(v.Historial, model.DuenoHistorial{
		ID:         uuid.New(),
		VehiculoID: vehiculoID,
		ClienteID:  nuevoClienteID,
		DesdeAt:    ahora,
		Nota:       nota,
	})
	v.ClienteID = nuevoClienteID
	return nil
}

func (r *stubVehiculoRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.vehiculos, id)
	return nil
}

type stubSettingsRepo struct {
	mu       sync.Mutex
	settings model.ShopSettings
}

var _ repository.SettingsRepository = (*stubSettingsRepo)(nil)

func newStubSettingsRepo() *stubSettingsRepo {
	return &stubSettingsRepo{settings: model.ShopSettings{
		ID:                 1,
		Nombre:             "Taller Test",
		EmailFrom:          "taller@test.local",
		OwnerEmail:         "dueno@test.local",
		Reminder24hEnabled: true,
		SlotInicioHora:     9,
		SlotFinHora:        18,
		SlotPasoMin:        30,
	}}
}

func (r *stubSettingsRepo) Get(_ context.Context) (*model.ShopSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := r.settings
	return &copia, nil
}

func (r *stubSettingsRepo) Update(_ context.Context, s *model.ShopSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = *s
	return nil
}

// ── infra fakes ───────────────────────────────────────────────────────────────

type fakeBlobStore struct {
	mu        sync.Mutex
	subidos   map[string][]byte
	borrados  []string
	fallaSube bool
}

var _ infra.BlobStore = (*fakeBlobStore)(nil)

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{subidos: make(map[string][]byte)}
}

func (s *fakeBlobStore) Upload(_ context.Context, data []byte, opts infra.UploadOptions) (*infra.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fallaSube {
		return nil, errors.New("storage no disponible")
	}
	id := opts.Folder + "/" + opts.PublicID
	s.subidos[id] = data
	tipo := opts.ResourceType
	if tipo == "" {
		tipo = infra.RecursoRaw
	}
	return &infra.UploadResult{ID: id, URL: "http://blobs.test/" + tipo + "/" + id}, nil
}

func (s *fakeBlobStore) Delete(_ context.Context, id, resourceType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subidos[id]; !ok {
		return errors.New("blob inexistente")
	}
	delete(s.subidos, id)
	s.borrados = append(s.borrados, id)
	return nil
}

type fakePdfRenderer struct{ falla bool }

var _ infra.PdfRenderer = (*fakePdfRenderer)(nil)

func (r *fakePdfRenderer) GenerarPresupuestoPDF(doc *infra.DocumentoPDF) ([]byte, error) {
	if r.falla {
		return nil, errors.New("render fallido")
	}
	return []byte("%PDF presupuesto " + doc.Numero), nil
}

func (r *fakePdfRenderer) GenerarFacturaPDF(doc *infra.DocumentoPDF) ([]byte, error) {
	if r.falla {
		return nil, errors.New("render fallido")
	}
	return []byte("%PDF factura " + doc.Numero), nil
}

type fakeMailer struct {
	mu       sync.Mutex
	enviados []infra.Mensaje
	falla    bool
}

var _ infra.Mailer = (*fakeMailer)(nil)

func (m *fakeMailer) Send(msg infra.Mensaje) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.falla {
		return errors.New("smtp caido")
	}
	m.enviados = append(m.enviados, msg)
	return nil
}

type stubRecordatorioRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*model.RecordatorioJob
}

var _ repository.RecordatorioRepository = (*stubRecordatorioRepo)(nil)

func newStubRecordatorioRepo() *stubRecordatorioRepo {
	return &stubRecordatorioRepo{jobs: make(map[uuid.UUID]*model.RecordatorioJob)}
}

func (r *stubRecordatorioRepo) Create(_ context.Context, j *model.RecordatorioJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	copia := *j
	r.jobs[j.ID] = &copia
	return nil
}

func (r *stubRecordatorioRepo) Update(_ context.Context, j *model.RecordatorioJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[j.ID]; !ok {
		return errNoEncontrado
	}
	copia := *j
	r.jobs[j.ID] = &copia
	return nil
}

func (r *stubRecordatorioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.RecordatorioJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, errNoEncontrado
	}
	copia := *j
	return &copia, nil
}

func (r *stubRecordatorioRepo) Vencidos(_ context.Context, corte time.Time, limit int) ([]model.RecordatorioJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.RecordatorioJob
	for _, j := range r.jobs {
		if j.Estado == model.RecordatorioPending && !j.RunAt.After(corte) {
			res = append(res, *j)
		}
		if len(res) == limit {
			break
		}
	}
	return res, nil
}

func (r *stubRecordatorioRepo) DeleteDeCita(_ context.Context, citaID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, j := range r.jobs {
		if j.CitaID == citaID {
			delete(r.jobs, id)
		}
	}
	return nil
}

// deCita lists the stored jobs for one cita, for assertions.
func (r *stubRecordatorioRepo) deCita(citaID uuid.UUID) []model.RecordatorioJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.RecordatorioJob
	for _, j := range r.jobs {
		if j.CitaID == citaID {
			res = append(res, *j)
		}
	}
	return res
}

type fakeEncolador struct {
	mu       sync.Mutex
	mensajes []infra.Mensaje
	falla    bool
}

var _ EncoladorEmail = (*fakeEncolador)(nil)

func (e *fakeEncolador) EncolarEmail(_ context.Context, msg infra.Mensaje) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.falla {
		return errors.New("cola no disponible")
	}
	e.mensajes = append(e.mensajes, msg)
	return nil
}
