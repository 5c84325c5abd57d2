package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/badkluster/taller-backend-sub000/internal/dto"
	"github.com/badkluster/taller-backend-sub000/internal/infra"
	"github.com/badkluster/taller-backend-sub000/internal/model"
	"github.com/badkluster/taller-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// citaEstadoPorOrden maps an order transition onto its linked cita. Unmapped
// order states leave the cita untouched.
var citaEstadoPorOrden = map[string]string{
	model.OrdenEnProceso:  model.CitaInProgress,
	model.OrdenCompletada: model.CitaCompleted,
	model.OrdenCancelada:  model.CitaCancelled,
}

type OrdenService interface {
	Crear(ctx context.Context, req dto.CrearOrdenRequest) (*dto.OrdenResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.OrdenResponse, error)
	Listar(ctx context.Context, filter dto.OrdenFilter) (*dto.OrdenListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarOrdenRequest) (*dto.OrdenResponse, error)
	// Reabrir moves a COMPLETADA order back to an open state. Status-only:
	// the original-estimate snapshot and document references stay untouched.
	Reabrir(ctx context.Context, id uuid.UUID, nuevoEstado string) (*dto.OrdenResponse, error)
	AgregarEvidencia(ctx context.Context, id uuid.UUID, req dto.AgregarEvidenciaRequest) (*dto.OrdenResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	// CompletarPorFactura records an issued invoice on the order and forces
	// it into COMPLETADA through the regular transition path: first-time
	// WorkStartedAt stamp, original-estimate snapshot and cita propagation.
	CompletarPorFactura(ctx context.Context, id uuid.UUID, numero string, pdfUrl, pdfID *string) error
}

type ordenService struct {
	repo     repository.OrdenRepository
	citaRepo repository.CitaRepository
	docRepo  repository.DocumentoRepository
	blobs    infra.BlobStore
}

func NewOrdenService(
	repo repository.OrdenRepository,
	citaRepo repository.CitaRepository,
	docRepo repository.DocumentoRepository,
	blobs infra.BlobStore,
) OrdenService {
	return &ordenService{repo: repo, citaRepo: citaRepo, docRepo: docRepo, blobs: blobs}
}

func (s *ordenService) Crear(ctx context.Context, req dto.CrearOrdenRequest) (*dto.OrdenResponse, error) {
	vehiculoID, err := uuid.Parse(req.VehiculoID)
	if err != nil {
		return nil, fmt.Errorf("vehiculo_id inválido: %w", err)
	}
	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("cliente_id inválido: %w", err)
	}

	categoria := req.Categoria
	if categoria == "" {
		categoria = model.CategoriaGeneral
	}

	orden := model.OrdenTrabajo{
		VehiculoID:       vehiculoID,
		ClienteID:        clienteID,
		Categoria:        categoria,
		Estado:           model.OrdenPresupuesto,
		Descripcion:      req.Descripcion,
		ManoObra:         req.ManoObra,
		Descuento:        req.Descuento,
		MaintenanceDueAt: req.MaintenanceDueAt,
	}
	for _, it := range req.Items {
		orden.Items = append(orden.Items, model.OrdenItem{
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
		})
	}
	orden.Total = orden.CalcularTotal()

	if err := s.repo.Create(ctx, &orden); err != nil {
		return nil, err
	}
	return ordenToResponse(&orden), nil
}

func (s *ordenService) Obtener(ctx context.Context, id uuid.UUID) (*dto.OrdenResponse, error) {
	orden, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("orden de trabajo no encontrada")
	}
	return ordenToResponse(orden), nil
}

func (s *ordenService) Listar(ctx context.Context, filter dto.OrdenFilter) (*dto.OrdenListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	var vehiculoID *uuid.UUID
	if filter.VehiculoID != "" {
		vid, err := uuid.Parse(filter.VehiculoID)
		if err != nil {
			return nil, fmt.Errorf("vehiculo_id inválido: %w", err)
		}
		vehiculoID = &vid
	}
	ordenes, total, err := s.repo.List(ctx, filter.Estado, vehiculoID, filter.Limit, (filter.Page-1)*filter.Limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrdenResponse, 0, len(ordenes))
	for i := range ordenes {
		items = append(items, *ordenToResponse(&ordenes[i]))
	}
	return &dto.OrdenListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Actualizar applies the state machine:
//   - items/manoObra/descuento changes recompute Total; if that happens with
//     work already started, the existing invoice PDF is invalidated (blob
//     deleted, number and URL cleared) so it cannot silently go stale.
//   - the first transition into EN_PROCESO or COMPLETADA stamps
//     WorkStartedAt and snapshots the current quote as the original estimate.
//   - a COMPLETADA order only accepts estado changes (reopen); any other
//     field is rejected.
//   - estado changes propagate a mapped status onto the linked cita.
func (s *ordenService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarOrdenRequest) (*dto.OrdenResponse, error) {
	orden, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("orden de trabajo no encontrada")
	}

	reabre := req.Estado != nil && *req.Estado != model.OrdenCompletada
	if orden.Estado == model.OrdenCompletada && !reabre {
		if req.Items != nil || req.ManoObra != nil || req.Descuento != nil ||
			req.Categoria != nil || req.Descripcion != nil || req.MaintenanceDueAt != nil {
			return nil, errors.New("la orden está completada: solo se puede modificar el estado o agregar evidencias")
		}
	}

	if req.Estado != nil && !estadoOrdenValido(*req.Estado) {
		return nil, fmt.Errorf("estado inválido: %s", *req.Estado)
	}
	if req.Estado != nil && orden.Estado == model.OrdenCancelada && *req.Estado != model.OrdenCancelada {
		return nil, errors.New("una orden cancelada no puede cambiar de estado")
	}

	// Apply field changes and recompute the total when money inputs move.
	totalesTocados := false
	if req.Categoria != nil {
		orden.Categoria = *req.Categoria
	}
	if req.Descripcion != nil {
		orden.Descripcion = req.Descripcion
	}
	if req.MaintenanceDueAt != nil {
		orden.MaintenanceDueAt = req.MaintenanceDueAt
	}
	if req.Items != nil {
		items := make([]model.OrdenItem, 0, len(*req.Items))
		for _, it := range *req.Items {
			items = append(items, model.OrdenItem{
				OrdenID:        orden.ID,
				Descripcion:    it.Descripcion,
				Cantidad:       it.Cantidad,
				PrecioUnitario: it.PrecioUnitario,
			})
		}
		orden.Items = items
		totalesTocados = true
	}
	if req.ManoObra != nil {
		orden.ManoObra = *req.ManoObra
		totalesTocados = true
	}
	if req.Descuento != nil {
		orden.Descuento = *req.Descuento
		totalesTocados = true
	}

	estadoAnterior := orden.Estado
	if req.Estado != nil {
		orden.Estado = *req.Estado
	}

	if totalesTocados {
		orden.Total = orden.CalcularTotal()
		// Totals moved after work started: the issued invoice no longer
		// reflects reality and must be regenerated, not served stale.
		if orden.TrabajoIniciado() && (orden.FacturaNumero != nil || orden.FacturaPdfUrl != nil) {
			s.invalidarFactura(ctx, orden)
		}
	}

	if orden.TrabajoIniciado() {
		s.marcarInicioTrabajo(ctx, orden)
	}

	if req.Items != nil {
		if err := s.repo.ReplaceItems(ctx, orden.ID, orden.Items); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, orden); err != nil {
		return nil, err
	}

	if req.Estado != nil && orden.Estado != estadoAnterior {
		s.propagarACita(ctx, orden)
	}

	return ordenToResponse(orden), nil
}

func (s *ordenService) Reabrir(ctx context.Context, id uuid.UUID, nuevoEstado string) (*dto.OrdenResponse, error) {
	if nuevoEstado != model.OrdenEnProceso && nuevoEstado != model.OrdenPresupuesto {
		return nil, fmt.Errorf("no se puede reabrir hacia el estado %s", nuevoEstado)
	}
	orden, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("orden de trabajo no encontrada")
	}
	if orden.Estado != model.OrdenCompletada {
		return nil, errors.New("solo una orden completada puede reabrirse")
	}
	orden.Estado = nuevoEstado
	if err := s.repo.Update(ctx, orden); err != nil {
		return nil, err
	}
	s.propagarACita(ctx, orden)
	return ordenToResponse(orden), nil
}

func (s *ordenService) AgregarEvidencia(ctx context.Context, id uuid.UUID, req dto.AgregarEvidenciaRequest) (*dto.OrdenResponse, error) {
	orden, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("orden de trabajo no encontrada")
	}
	if req.Texto == nil && req.URL == nil {
		return nil, errors.New("la evidencia requiere texto o url")
	}
	ev := model.Evidencia{
		OrdenID:   orden.ID,
		Tipo:      req.Tipo,
		Texto:     req.Texto,
		URL:       req.URL,
		CreatedAt: time.Now(),
	}
	if err := s.repo.AppendEvidencia(ctx, &ev); err != nil {
		return nil, err
	}
	orden.Evidencias = append(orden.Evidencias, ev)
	return ordenToResponse(orden), nil
}

// Eliminar cascades: linked presupuestos/facturas are removed first, every
// referenced PDF/evidence blob is collected into a set and best-effort
// deleted (probing image, raw then video types), and finally the order row
// with its items and evidencias goes away.
func (s *ordenService) Eliminar(ctx context.Context, id uuid.UUID) error {
	orden, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("orden de trabajo no encontrada")
	}

	blobIDs := make(map[string]struct{})
	agregar := func(id *string) {
		if id != nil && *id != "" {
			blobIDs[*id] = struct{}{}
		}
	}

	presupuestos, err := s.docRepo.PresupuestosDeOrden(ctx, orden.ID)
	if err != nil {
		return err
	}
	for i := range presupuestos {
		agregar(presupuestos[i].PdfID)
	}
	facturas, err := s.docRepo.FacturasDeOrden(ctx, orden.ID)
	if err != nil {
		return err
	}
	for i := range facturas {
		agregar(facturas[i].PdfID)
	}
	agregar(orden.FacturaPdfID)
	for i := range orden.Evidencias {
		if orden.Evidencias[i].URL != nil {
			if bid := blobIDDesdeURL(*orden.Evidencias[i].URL); bid != "" {
				blobIDs[bid] = struct{}{}
			}
		}
	}

	if err := s.docRepo.DeletePresupuestosDeOrden(ctx, orden.ID); err != nil {
		return err
	}
	if err := s.docRepo.DeleteFacturasDeOrden(ctx, orden.ID); err != nil {
		return err
	}

	for bid := range blobIDs {
		if err := infra.BorrarConFallback(ctx, s.blobs, bid); err != nil {
			log.Warn().Str("blob_id", bid).Err(err).Msg("orden: no se pudo borrar blob durante cascada")
		}
	}

	return s.repo.Delete(ctx, orden.ID)
}

func (s *ordenService) CompletarPorFactura(ctx context.Context, id uuid.UUID, numero string, pdfUrl, pdfID *string) error {
	orden, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("orden de trabajo no encontrada")
	}
	if orden.Estado == model.OrdenCancelada {
		return errors.New("no se puede facturar una orden cancelada")
	}

	orden.Estado = model.OrdenCompletada
	orden.FacturaNumero = &numero
	orden.FacturaPdfUrl = pdfUrl
	orden.FacturaPdfID = pdfID
	s.marcarInicioTrabajo(ctx, orden)

	if err := s.repo.Update(ctx, orden); err != nil {
		return err
	}
	s.propagarACita(ctx, orden)
	return nil
}

// ── internals ─────────────────────────────────────────────────────────────────

// marcarInicioTrabajo stamps WorkStartedAt once and freezes the original
// estimate snapshot if none exists yet. Idempotent on every later call.
func (s *ordenService) marcarInicioTrabajo(ctx context.Context, orden *model.OrdenTrabajo) {
	if orden.WorkStartedAt == nil {
		ahora := time.Now()
		orden.WorkStartedAt = &ahora
	}
	if orden.PresupuestoOriginalPdfUrl != nil || orden.PresupuestoOriginalNumero != nil {
		return
	}
	p, err := s.docRepo.UltimoPresupuestoDeOrden(ctx, orden.ID, orden.CitaID)
	if err != nil {
		return // no quote existed before work began — nothing to snapshot
	}
	orden.PresupuestoOriginalPdfUrl = p.PdfUrl
	numero := p.Numero
	orden.PresupuestoOriginalNumero = &numero
}

// invalidarFactura deletes the stored invoice blob and clears the order's
// invoice references so a fresh one must be issued.
func (s *ordenService) invalidarFactura(ctx context.Context, orden *model.OrdenTrabajo) {
	if orden.FacturaPdfID != nil {
		if err := infra.BorrarConFallback(ctx, s.blobs, *orden.FacturaPdfID); err != nil {
			log.Warn().Str("orden_id", orden.ID.String()).Err(err).Msg("orden: no se pudo borrar PDF de factura invalidada")
		}
	}
	orden.FacturaPdfUrl = nil
	orden.FacturaPdfID = nil
	orden.FacturaNumero = nil
	log.Info().Str("orden_id", orden.ID.String()).Msg("orden: factura invalidada por cambio de totales")
}

func (s *ordenService) propagarACita(ctx context.Context, orden *model.OrdenTrabajo) {
	if orden.CitaID == nil {
		return
	}
	estadoCita, ok := citaEstadoPorOrden[orden.Estado]
	if !ok {
		return
	}
	cita, err := s.citaRepo.FindByID(ctx, *orden.CitaID)
	if err != nil {
		return
	}
	if cita.Estado == estadoCita {
		return
	}
	cita.Estado = estadoCita
	if err := s.citaRepo.Update(ctx, cita); err != nil {
		log.Warn().Str("cita_id", cita.ID.String()).Err(err).Msg("orden: no se pudo propagar estado a la cita")
	}
}

func estadoOrdenValido(estado string) bool {
	switch estado {
	case model.OrdenPresupuesto, model.OrdenEnProceso, model.OrdenCompletada, model.OrdenCancelada:
		return true
	}
	return false
}

// blobIDDesdeURL recovers "{folder}/{publicID}" from a public blob URL. The
// store addresses blobs as {base}/{resourceType}/{folder}/{publicID}.
func blobIDDesdeURL(url string) string {
	partes := strings.Split(strings.TrimRight(url, "/"), "/")
	if len(partes) < 2 {
		return ""
	}
	return partes[len(partes)-2] + "/" + partes[len(partes)-1]
}

func ordenToResponse(o *model.OrdenTrabajo) *dto.OrdenResponse {
	items := make([]dto.ItemOrdenResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.ItemOrdenResponse{
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Total:          it.PrecioUnitario.Mul(decimal.NewFromInt(int64(it.Cantidad))),
		})
	}
	evidencias := make([]dto.EvidenciaResponse, 0, len(o.Evidencias))
	for _, ev := range o.Evidencias {
		evidencias = append(evidencias, dto.EvidenciaResponse{
			ID:        ev.ID.String(),
			Tipo:      ev.Tipo,
			Texto:     ev.Texto,
			URL:       ev.URL,
			CreatedAt: ev.CreatedAt.Format(time.RFC3339),
		})
	}
	resp := &dto.OrdenResponse{
		ID:          o.ID.String(),
		VehiculoID:  o.VehiculoID.String(),
		ClienteID:   o.ClienteID.String(),
		Categoria:   o.Categoria,
		Estado:      o.Estado,
		Descripcion: o.Descripcion,
		Items:       items,
		ManoObra:    o.ManoObra,
		Descuento:   o.Descuento,
		Total:       o.Total,

		PresupuestoNumero:         o.PresupuestoNumero,
		PresupuestoPdfUrl:         o.PresupuestoPdfUrl,
		PresupuestoOriginalNumero: o.PresupuestoOriginalNumero,
		PresupuestoOriginalPdfUrl: o.PresupuestoOriginalPdfUrl,
		FacturaNumero:             o.FacturaNumero,
		FacturaPdfUrl:             o.FacturaPdfUrl,

		Evidencias: evidencias,
		CreatedAt:  o.CreatedAt.Format(time.RFC3339),
	}
	if o.CitaID != nil {
		cid := o.CitaID.String()
		resp.CitaID = &cid
	}
	if o.WorkStartedAt != nil {
		ws := o.WorkStartedAt.Format(time.RFC3339)
		resp.WorkStartedAt = &ws
	}
	return resp
}
