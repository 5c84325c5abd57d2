package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/badkluster/taller-backend-sub000/internal/dto"
	"github.com/badkluster/taller-backend-sub000/internal/infra"
	"github.com/badkluster/taller-backend-sub000/internal/model"
	"github.com/badkluster/taller-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrCitaDuplicadaEnDia = errors.New("ya existe una cita activa para este vehículo en ese día")
	ErrOrdenYaExiste      = errors.New("ya existe una Orden de Trabajo para esta cita")
	ErrRangoBloqueado     = errors.New("el horario elegido cae dentro de un rango bloqueado por el taller")
)

// EncoladorEmail queues an outbound email for asynchronous delivery. The
// worker dispatcher implements it; creating or cancelling a cita never fails
// because the queue is down — the response flags the pending email instead.
type EncoladorEmail interface {
	EncolarEmail(ctx context.Context, msg infra.Mensaje) error
}

type CitaService interface {
	Crear(ctx context.Context, req dto.CrearCitaRequest) (*dto.CitaResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.CitaResponse, error)
	Listar(ctx context.Context, filter dto.CitaFilter) (*dto.CitaListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCitaRequest) (*dto.CitaResponse, error)
	Cancelar(ctx context.Context, id uuid.UUID, req dto.CancelarCitaRequest) (*dto.CitaResponse, error)
	// ConvertirAOrden creates the work order for a cita, seeding vehicle,
	// client and category from it. One orden per cita, ever.
	ConvertirAOrden(ctx context.Context, id uuid.UUID) (*dto.OrdenResponse, error)

	CrearSolicitud(ctx context.Context, req dto.CrearSolicitudRequest) (*dto.SolicitudResponse, error)
	ListarSolicitudes(ctx context.Context, estado string) ([]dto.SolicitudResponse, error)
	ConfirmarSolicitud(ctx context.Context, id uuid.UUID, req dto.ConfirmarSolicitudRequest) (*dto.SolicitudResponse, error)
	RechazarSolicitud(ctx context.Context, id uuid.UUID, req dto.RechazarSolicitudRequest) (*dto.SolicitudResponse, error)
}

type citaService struct {
	repo             repository.CitaRepository
	ordenRepo        repository.OrdenRepository
	docRepo          repository.DocumentoRepository
	clienteRepo      repository.ClienteRepository
	vehiculoRepo     repository.VehiculoRepository
	settingsRepo     repository.SettingsRepository
	recordatorioRepo repository.RecordatorioRepository
	emails           EncoladorEmail
}

func NewCitaService(
	repo repository.CitaRepository,
	ordenRepo repository.OrdenRepository,
	docRepo repository.DocumentoRepository,
	clienteRepo repository.ClienteRepository,
	vehiculoRepo repository.VehiculoRepository,
	settingsRepo repository.SettingsRepository,
	recordatorioRepo repository.RecordatorioRepository,
	emails EncoladorEmail,
) CitaService {
	return &citaService{
		repo:             repo,
		ordenRepo:        ordenRepo,
		docRepo:          docRepo,
		clienteRepo:      clienteRepo,
		vehiculoRepo:     vehiculoRepo,
		settingsRepo:     settingsRepo,
		recordatorioRepo: recordatorioRepo,
		emails:           emails,
	}
}

func (s *citaService) Crear(ctx context.Context, req dto.CrearCitaRequest) (*dto.CitaResponse, error) {
	vehiculoID, err := uuid.Parse(req.VehiculoID)
	if err != nil {
		return nil, fmt.Errorf("vehiculo_id inválido: %w", err)
	}
	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("cliente_id inválido: %w", err)
	}
	if err := s.validarHorario(ctx, req.StartAt, req.EndAt, vehiculoID, uuid.Nil); err != nil {
		return nil, err
	}

	cita := model.Cita{
		VehiculoID:   vehiculoID,
		ClienteID:    clienteID,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
		Estado:       model.CitaScheduled,
		TipoServicio: req.TipoServicio,
		Notas:        req.Notas,
	}
	if req.AsignadaA != nil {
		aid, err := uuid.Parse(*req.AsignadaA)
		if err != nil {
			return nil, fmt.Errorf("asignada_a inválido: %w", err)
		}
		cita.AsignadaA = &aid
	}
	if err := s.repo.Create(ctx, &cita); err != nil {
		return nil, err
	}
	s.programarRecordatorio(ctx, &cita)

	resp := citaToResponse(&cita)
	resp.EmailPendiente = !s.notificar(ctx, clienteID, "Cita agendada",
		fmt.Sprintf("Tu cita fue agendada para el %s.", cita.StartAt.Format("02/01/2006 15:04")))
	return resp, nil
}

func (s *citaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.CitaResponse, error) {
	cita, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cita no encontrada")
	}
	return citaToResponse(cita), nil
}

func (s *citaService) Listar(ctx context.Context, filter dto.CitaFilter) (*dto.CitaListResponse, error) {
	page, limit := normalizarPagina(filter.Page, filter.Limit)
	var desde, hasta *time.Time
	if filter.Desde != "" {
		d, err := time.ParseInLocation("2006-01-02", filter.Desde, time.Local)
		if err != nil {
			return nil, fmt.Errorf("desde inválido: %w", err)
		}
		desde = &d
	}
	if filter.Hasta != "" {
		h, err := time.ParseInLocation("2006-01-02", filter.Hasta, time.Local)
		if err != nil {
			return nil, fmt.Errorf("hasta inválido: %w", err)
		}
		fin := h.AddDate(0, 0, 1)
		hasta = &fin
	}
	citas, total, err := s.repo.List(ctx, desde, hasta, filter.Estado, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.CitaResponse, 0, len(citas))
	for i := range citas {
		data = append(data, *citaToResponse(&citas[i]))
	}
	return &dto.CitaListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *citaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCitaRequest) (*dto.CitaResponse, error) {
	cita, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cita no encontrada")
	}
	if cita.Estado == model.CitaCancelled || cita.Estado == model.CitaNoShow {
		return nil, errors.New("una cita cancelada o con ausencia no puede modificarse")
	}

	reprogramada := false
	startAt, endAt := cita.StartAt, cita.EndAt
	if req.StartAt != nil {
		startAt = *req.StartAt
		reprogramada = true
	}
	if req.EndAt != nil {
		endAt = *req.EndAt
		reprogramada = true
	}
	if reprogramada {
		// A reschedule re-runs every booking rule, excluding the cita itself
		// from the same-day guard.
		if err := s.validarHorario(ctx, startAt, endAt, cita.VehiculoID, cita.ID); err != nil {
			return nil, err
		}
		cita.StartAt = startAt
		cita.EndAt = endAt
	}

	if req.Estado != nil {
		cita.Estado = *req.Estado
	}
	if req.TipoServicio != nil {
		cita.TipoServicio = *req.TipoServicio
	}
	if req.Notas != nil {
		cita.Notas = req.Notas
	}
	if req.AsignadaA != nil {
		aid, err := uuid.Parse(*req.AsignadaA)
		if err != nil {
			return nil, fmt.Errorf("asignada_a inválido: %w", err)
		}
		cita.AsignadaA = &aid
	}

	if err := s.repo.Update(ctx, cita); err != nil {
		return nil, err
	}
	if reprogramada {
		// The pending reminder points at the old slot; replace it.
		s.limpiarRecordatorios(ctx, cita.ID)
		s.programarRecordatorio(ctx, cita)
	}

	resp := citaToResponse(cita)
	if reprogramada {
		resp.EmailPendiente = !s.notificar(ctx, cita.ClienteID, "Cita reprogramada",
			fmt.Sprintf("Tu cita fue reprogramada para el %s.", cita.StartAt.Format("02/01/2006 15:04")))
	}
	return resp, nil
}

func (s *citaService) Cancelar(ctx context.Context, id uuid.UUID, req dto.CancelarCitaRequest) (*dto.CitaResponse, error) {
	cita, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cita no encontrada")
	}
	if !cita.Activa() {
		return nil, errors.New("la cita ya está cancelada o marcada como ausencia")
	}
	if cita.Estado == model.CitaCompleted {
		return nil, errors.New("una cita completada no puede cancelarse")
	}
	cita.Estado = model.CitaCancelled
	cita.MotivoCancel = &req.Motivo
	if err := s.repo.Update(ctx, cita); err != nil {
		return nil, err
	}
	s.limpiarRecordatorios(ctx, cita.ID)
	resp := citaToResponse(cita)
	resp.EmailPendiente = !s.notificar(ctx, cita.ClienteID, "Cita cancelada",
		fmt.Sprintf("Tu cita del %s fue cancelada. Motivo: %s", cita.StartAt.Format("02/01/2006 15:04"), req.Motivo))
	return resp, nil
}

func (s *citaService) ConvertirAOrden(ctx context.Context, id uuid.UUID) (*dto.OrdenResponse, error) {
	cita, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cita no encontrada")
	}
	if !cita.Activa() {
		return nil, errors.New("una cita cancelada o con ausencia no puede convertirse en orden")
	}
	if _, err := s.ordenRepo.FindByCitaID(ctx, cita.ID); err == nil {
		return nil, ErrOrdenYaExiste
	}

	citaID := cita.ID
	orden := model.OrdenTrabajo{
		VehiculoID: cita.VehiculoID,
		ClienteID:  cita.ClienteID,
		CitaID:     &citaID,
		Categoria:  categoriaPorServicio(cita.TipoServicio),
		Estado:     model.OrdenPresupuesto,
		Descripcion: cita.Notas,
	}

	// A quote issued against the cita before conversion carries over.
	if p, err := s.docRepo.UltimoPresupuestoDeCita(ctx, cita.ID); err == nil {
		numero := p.Numero
		orden.PresupuestoNumero = &numero
		orden.PresupuestoPdfUrl = p.PdfUrl
	}

	if err := s.ordenRepo.Create(ctx, &orden); err != nil {
		return nil, err
	}

	// Link the quote back to the freshly created orden.
	if p, err := s.docRepo.UltimoPresupuestoDeCita(ctx, cita.ID); err == nil && p.OrdenID == nil {
		p.OrdenID = &orden.ID
		if err := s.docRepo.UpdatePresupuesto(ctx, p); err != nil {
			log.Warn().Str("presupuesto", p.Numero).Err(err).Msg("cita: no se pudo vincular presupuesto a la orden")
		}
	}

	cita.Estado = model.CitaInProgress
	if err := s.repo.Update(ctx, cita); err != nil {
		log.Warn().Str("cita_id", cita.ID.String()).Err(err).Msg("cita: no se pudo marcar en progreso tras conversión")
	}

	return ordenToResponse(&orden), nil
}

// ── solicitudes ───────────────────────────────────────────────────────────────

func (s *citaService) CrearSolicitud(ctx context.Context, req dto.CrearSolicitudRequest) (*dto.SolicitudResponse, error) {
	ahora := time.Now()
	dias := make(map[string]struct{})
	for _, f := range req.FechasSugeridas {
		if f.Before(ahora) {
			return nil, errors.New("las fechas sugeridas deben ser futuras")
		}
		dias[f.Format("2006-01-02")] = struct{}{}
	}
	if len(dias) < 3 {
		return nil, errors.New("se requieren al menos tres fechas sugeridas en días distintos")
	}

	sol := model.SolicitudCita{
		NombreCliente: req.NombreCliente,
		Telefono:      req.Telefono,
		Email:         req.Email,
		Vehiculo: model.VehiculoSnapshot{
			Patente: req.Vehiculo.Patente,
			Marca:   req.Vehiculo.Marca,
			Modelo:  req.Vehiculo.Modelo,
			Anio:    req.Vehiculo.Anio,
		},
		TipoSolicitud:   req.TipoSolicitud,
		FechasSugeridas: req.FechasSugeridas,
		Estado:          model.SolicitudPending,
	}
	if err := s.repo.CreateSolicitud(ctx, &sol); err != nil {
		return nil, err
	}
	return solicitudToResponse(&sol), nil
}

func (s *citaService) ListarSolicitudes(ctx context.Context, estado string) ([]dto.SolicitudResponse, error) {
	sols, err := s.repo.ListSolicitudes(ctx, estado)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SolicitudResponse, 0, len(sols))
	for i := range sols {
		data = append(data, *solicitudToResponse(&sols[i]))
	}
	return data, nil
}

// ConfirmarSolicitud materializes the visitor's data: the cliente is found by
// phone or created, the vehiculo by normalized plate or created, then a real
// cita is booked under the usual rules.
func (s *citaService) ConfirmarSolicitud(ctx context.Context, id uuid.UUID, req dto.ConfirmarSolicitudRequest) (*dto.SolicitudResponse, error) {
	sol, err := s.repo.FindSolicitudByID(ctx, id)
	if err != nil {
		return nil, errors.New("solicitud no encontrada")
	}
	if sol.Estado != model.SolicitudPending {
		return nil, errors.New("la solicitud ya fue resuelta")
	}

	cliente, err := s.clienteRepo.FindByTelefono(ctx, sol.Telefono)
	if err != nil {
		cliente = &model.Cliente{
			Nombre:   sol.NombreCliente,
			Telefono: sol.Telefono,
			Email:    sol.Email,
		}
		if err := s.clienteRepo.Create(ctx, cliente); err != nil {
			return nil, err
		}
	}

	normalizada := model.NormalizarPatente(sol.Vehiculo.Patente)
	vehiculo, err := s.vehiculoRepo.FindByPatenteNormalizada(ctx, normalizada)
	if err != nil {
		vehiculo = &model.Vehiculo{
			Patente:            sol.Vehiculo.Patente,
			PatenteNormalizada: normalizada,
			Marca:              sol.Vehiculo.Marca,
			Modelo:             sol.Vehiculo.Modelo,
			Anio:               sol.Vehiculo.Anio,
			ClienteID:          cliente.ID,
		}
		if err := s.vehiculoRepo.Create(ctx, vehiculo); err != nil {
			return nil, err
		}
	}

	if err := s.validarHorario(ctx, req.StartAt, req.EndAt, vehiculo.ID, uuid.Nil); err != nil {
		return nil, err
	}
	cita := model.Cita{
		VehiculoID:   vehiculo.ID,
		ClienteID:    cliente.ID,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
		Estado:       model.CitaConfirmed,
		TipoServicio: sol.TipoSolicitud,
	}
	if err := s.repo.Create(ctx, &cita); err != nil {
		return nil, err
	}
	s.programarRecordatorio(ctx, &cita)

	sol.Estado = model.SolicitudConfirmed
	sol.CitaID = &cita.ID
	if err := s.repo.UpdateSolicitud(ctx, sol); err != nil {
		return nil, err
	}

	s.notificar(ctx, cliente.ID, "Cita confirmada",
		fmt.Sprintf("Tu solicitud fue aceptada: te esperamos el %s.", cita.StartAt.Format("02/01/2006 15:04")))
	return solicitudToResponse(sol), nil
}

func (s *citaService) RechazarSolicitud(ctx context.Context, id uuid.UUID, req dto.RechazarSolicitudRequest) (*dto.SolicitudResponse, error) {
	sol, err := s.repo.FindSolicitudByID(ctx, id)
	if err != nil {
		return nil, errors.New("solicitud no encontrada")
	}
	if sol.Estado != model.SolicitudPending {
		return nil, errors.New("la solicitud ya fue resuelta")
	}
	sol.Estado = model.SolicitudRejected
	sol.MotivoRechazo = &req.Motivo
	if err := s.repo.UpdateSolicitud(ctx, sol); err != nil {
		return nil, err
	}
	return solicitudToResponse(sol), nil
}

// ── internals ─────────────────────────────────────────────────────────────────

// validarHorario enforces every booking rule: future start, coherent range,
// shop blackout ranges, and the one-active-cita-per-vehicle-per-day guard.
func (s *citaService) validarHorario(ctx context.Context, startAt, endAt time.Time, vehiculoID, excluirID uuid.UUID) error {
	if startAt.Before(time.Now()) {
		return errors.New("la cita debe comenzar en el futuro")
	}
	if endAt.Before(startAt) {
		return errors.New("el fin de la cita no puede ser anterior al inicio")
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}
	for _, rango := range settings.Bloqueos {
		if rango.Cubre(startAt, endAt) {
			return ErrRangoBloqueado
		}
	}

	activas, err := s.repo.ActivasEnDia(ctx, vehiculoID, startAt, excluirID)
	if err != nil {
		return err
	}
	if len(activas) > 0 {
		return ErrCitaDuplicadaEnDia
	}
	return nil
}

// antelacionRecordatorio is how long before the cita the durable same-day
// reminder fires. The day-before sweep covers the 24h notice separately.
const antelacionRecordatorio = 2 * time.Hour

// programarRecordatorio enqueues the durable same-day reminder job for the
// cron sweep. Best effort: a cita too close to start gets no job, and a
// write failure never fails the booking.
func (s *citaService) programarRecordatorio(ctx context.Context, cita *model.Cita) {
	if s.recordatorioRepo == nil {
		return
	}
	runAt := cita.StartAt.Add(-antelacionRecordatorio)
	if !runAt.After(time.Now()) {
		return
	}
	job := model.RecordatorioJob{
		CitaID: cita.ID,
		RunAt:  runAt,
		Canal:  model.CanalEmail,
		Estado: model.RecordatorioPending,
	}
	if err := s.recordatorioRepo.Create(ctx, &job); err != nil {
		log.Warn().Str("cita_id", cita.ID.String()).Err(err).Msg("cita: no se pudo programar el recordatorio")
	}
}

func (s *citaService) limpiarRecordatorios(ctx context.Context, citaID uuid.UUID) {
	if s.recordatorioRepo == nil {
		return
	}
	if err := s.recordatorioRepo.DeleteDeCita(ctx, citaID); err != nil {
		log.Warn().Str("cita_id", citaID.String()).Err(err).Msg("cita: no se pudieron limpiar los recordatorios")
	}
}

// notificar queues a client email best-effort and reports success. A client
// without email counts as delivered — there is nothing pending to retry.
func (s *citaService) notificar(ctx context.Context, clienteID uuid.UUID, subject, text string) bool {
	if s.emails == nil {
		return true
	}
	cliente, err := s.clienteRepo.FindByID(ctx, clienteID)
	if err != nil || cliente.Email == nil || *cliente.Email == "" {
		return true
	}
	msg := infra.Mensaje{To: *cliente.Email, Subject: subject, Text: text}
	if err := s.emails.EncolarEmail(ctx, msg); err != nil {
		log.Warn().Str("cliente_id", clienteID.String()).Err(err).Msg("cita: no se pudo encolar email de notificación")
		return false
	}
	return true
}

func categoriaPorServicio(tipoServicio string) string {
	switch tipoServicio {
	case "repair", "reparacion":
		return model.CategoriaReparacion
	case "diagnosis", "diagnostico", "presupuesto":
		return model.CategoriaPresupuesto
	}
	return model.CategoriaGeneral
}

func citaToResponse(c *model.Cita) *dto.CitaResponse {
	resp := &dto.CitaResponse{
		ID:           c.ID.String(),
		VehiculoID:   c.VehiculoID.String(),
		ClienteID:    c.ClienteID.String(),
		StartAt:      c.StartAt.Format(time.RFC3339),
		EndAt:        c.EndAt.Format(time.RFC3339),
		Estado:       c.Estado,
		TipoServicio: c.TipoServicio,
		Notas:        c.Notas,
		MotivoCancel: c.MotivoCancel,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
	if c.AsignadaA != nil {
		aid := c.AsignadaA.String()
		resp.AsignadaA = &aid
	}
	return resp
}

func solicitudToResponse(s *model.SolicitudCita) *dto.SolicitudResponse {
	fechas := make([]string, 0, len(s.FechasSugeridas))
	for _, f := range s.FechasSugeridas {
		fechas = append(fechas, f.Format(time.RFC3339))
	}
	resp := &dto.SolicitudResponse{
		ID:              s.ID.String(),
		NombreCliente:   s.NombreCliente,
		Telefono:        s.Telefono,
		Email:           s.Email,
		TipoSolicitud:   s.TipoSolicitud,
		FechasSugeridas: fechas,
		Estado:          s.Estado,
		MotivoRechazo:   s.MotivoRechazo,
		CreatedAt:       s.CreatedAt.Format(time.RFC3339),
	}
	if s.CitaID != nil {
		cid := s.CitaID.String()
		resp.CitaID = &cid
	}
	return resp
}
