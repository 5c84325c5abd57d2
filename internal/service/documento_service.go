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
	"github.com/shopspring/decimal"
)

var (
	ErrPresupuestoVacio = errors.New("no se puede generar un presupuesto sin items ni mano de obra")
	ErrFacturaVacia     = errors.New("no se puede generar una factura sin items ni mano de obra")
)

type DocumentoService interface {
	CrearPresupuesto(ctx context.Context, req dto.CrearPresupuestoRequest) (*dto.DocumentoResponse, error)
	ObtenerPresupuesto(ctx context.Context, id uuid.UUID) (*dto.DocumentoResponse, error)
	ListarPresupuestos(ctx context.Context, page, limit int) (*dto.DocumentoListResponse, error)
	EnviarPresupuestoEmail(ctx context.Context, id uuid.UUID) (*dto.DocumentoResponse, error)

	CrearFactura(ctx context.Context, req dto.CrearFacturaRequest) (*dto.DocumentoResponse, error)
	ObtenerFactura(ctx context.Context, id uuid.UUID) (*dto.DocumentoResponse, error)
	ListarFacturas(ctx context.Context, page, limit int) (*dto.DocumentoListResponse, error)
	EnviarFacturaEmail(ctx context.Context, id uuid.UUID) (*dto.DocumentoResponse, error)
}

type documentoService struct {
	repo         repository.DocumentoRepository
	ordenRepo    repository.OrdenRepository
	citaRepo     repository.CitaRepository
	clienteRepo  repository.ClienteRepository
	vehiculoRepo repository.VehiculoRepository
	settingsRepo repository.SettingsRepository
	ordenes      OrdenService
	secuencias   SecuenciaService
	pdf          infra.PdfRenderer
	blobs        infra.BlobStore
	mailer       infra.Mailer
}

func NewDocumentoService(
	repo repository.DocumentoRepository,
	ordenRepo repository.OrdenRepository,
	citaRepo repository.CitaRepository,
	clienteRepo repository.ClienteRepository,
	vehiculoRepo repository.VehiculoRepository,
	settingsRepo repository.SettingsRepository,
	ordenes OrdenService,
	secuencias SecuenciaService,
	pdf infra.PdfRenderer,
	blobs infra.BlobStore,
	mailer infra.Mailer,
) DocumentoService {
	return &documentoService{
		repo:         repo,
		ordenRepo:    ordenRepo,
		citaRepo:     citaRepo,
		clienteRepo:  clienteRepo,
		vehiculoRepo: vehiculoRepo,
		settingsRepo: settingsRepo,
		ordenes:      ordenes,
		secuencias:   secuencias,
		pdf:          pdf,
		blobs:        blobs,
		mailer:       mailer,
	}
}

// CrearPresupuesto issues a numbered quote. Context resolves either from the
// request directly or through the linked orden/cita; item lines default to the
// order's current lines. PDF rendering and upload are best effort: on failure
// the quote still exists with pdf_pendiente set, retriable through the resend
// action.
func (s *documentoService) CrearPresupuesto(ctx context.Context, req dto.CrearPresupuestoRequest) (*dto.DocumentoResponse, error) {
	var (
		orden      *model.OrdenTrabajo
		vehiculoID uuid.UUID
		clienteID  uuid.UUID
		citaID     *uuid.UUID
		ordenID    *uuid.UUID
	)

	if req.OrdenID != nil {
		oid, err := uuid.Parse(*req.OrdenID)
		if err != nil {
			return nil, fmt.Errorf("orden_id inválido: %w", err)
		}
		orden, err = s.ordenRepo.FindByID(ctx, oid)
		if err != nil {
			return nil, errors.New("orden de trabajo no encontrada")
		}
		ordenID = &orden.ID
		vehiculoID = orden.VehiculoID
		clienteID = orden.ClienteID
		citaID = orden.CitaID
	}
	if req.CitaID != nil {
		cid, err := uuid.Parse(*req.CitaID)
		if err != nil {
			return nil, fmt.Errorf("cita_id inválido: %w", err)
		}
		cita, err := s.citaRepo.FindByID(ctx, cid)
		if err != nil {
			return nil, errors.New("cita no encontrada")
		}
		citaID = &cita.ID
		if orden == nil {
			vehiculoID = cita.VehiculoID
			clienteID = cita.ClienteID
		}
	}
	if req.VehiculoID != nil {
		vid, err := uuid.Parse(*req.VehiculoID)
		if err != nil {
			return nil, fmt.Errorf("vehiculo_id inválido: %w", err)
		}
		vehiculoID = vid
	}
	if req.ClienteID != nil {
		cid, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, fmt.Errorf("cliente_id inválido: %w", err)
		}
		clienteID = cid
	}
	if vehiculoID == uuid.Nil || clienteID == uuid.Nil {
		return nil, errors.New("se requiere vehiculo y cliente, directamente o a través de una orden o cita")
	}

	items := req.Items
	manoObra := req.ManoObra
	descuento := req.Descuento
	if len(items) == 0 && orden != nil {
		for _, it := range orden.Items {
			items = append(items, dto.ItemRequest{
				Descripcion:    it.Descripcion,
				Cantidad:       it.Cantidad,
				PrecioUnitario: it.PrecioUnitario,
			})
		}
		if manoObra.IsZero() {
			manoObra = orden.ManoObra
		}
		if descuento.IsZero() {
			descuento = orden.Descuento
		}
	}

	snapshot, total := snapshotItems(items, manoObra, descuento)
	if subtotalItems(snapshot).LessThanOrEqual(decimal.Zero) && manoObra.LessThanOrEqual(decimal.Zero) {
		return nil, ErrPresupuestoVacio
	}

	numero, err := s.secuencias.NextNumber(ctx, model.SeriePresupuesto, model.PrefijoPresupuesto, s.repo.MaxSufijoPresupuesto)
	if err != nil {
		return nil, err
	}

	p := model.Presupuesto{
		Numero:     numero,
		VehiculoID: vehiculoID,
		ClienteID:  clienteID,
		OrdenID:    ordenID,
		CitaID:     citaID,
		Items:      snapshot,
		ManoObra:   manoObra,
		Descuento:  descuento,
		Total:      total,
		Estado:     model.DocumentoEmitido,
	}
	if err := s.repo.CreatePresupuesto(ctx, &p); err != nil {
		return nil, err
	}

	pdfPendiente := false
	if url, id, err := s.generarYSubir(ctx, "presupuestos", numero, &p, nil, req.Notas); err != nil {
		pdfPendiente = true
		log.Error().Str("numero", numero).Err(err).Msg("documento: fallo generar/subir PDF de presupuesto")
	} else {
		p.PdfUrl = &url
		p.PdfID = &id
		if err := s.repo.UpdatePresupuesto(ctx, &p); err != nil {
			return nil, err
		}
	}

	// An order whose work has not started yet tracks its latest quote.
	if orden != nil && !orden.TrabajoIniciado() {
		orden.PresupuestoNumero = &numero
		orden.PresupuestoPdfUrl = p.PdfUrl
		if err := s.ordenRepo.Update(ctx, orden); err != nil {
			log.Warn().Str("orden_id", orden.ID.String()).Err(err).Msg("documento: no se pudo reflejar presupuesto en la orden")
		}
	}

	resp := presupuestoToResponse(&p)
	resp.PdfPendiente = pdfPendiente
	return resp, nil
}

func (s *documentoService) ObtenerPresupuesto(ctx context.Context, id uuid.UUID) (*dto.DocumentoResponse, error) {
	p, err := s.repo.FindPresupuestoByID(ctx, id)
	if err != nil {
		return nil, errors.New("presupuesto no encontrado")
	}
	return presupuestoToResponse(p), nil
}

func (s *documentoService) ListarPresupuestos(ctx context.Context, page, limit int) (*dto.DocumentoListResponse, error) {
	page, limit = normalizarPagina(page, limit)
	ps, total, err := s.repo.ListPresupuestos(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.DocumentoResponse, 0, len(ps))
	for i := range ps {
		data = append(data, *presupuestoToResponse(&ps[i]))
	}
	return &dto.DocumentoListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// EnviarPresupuestoEmail regenerates the PDF for attachment, backfills the
// stored blob when missing, emails the client and records the send.
func (s *documentoService) EnviarPresupuestoEmail(ctx context.Context, id uuid.UUID) (*dto.DocumentoResponse, error) {
	p, err := s.repo.FindPresupuestoByID(ctx, id)
	if err != nil {
		return nil, errors.New("presupuesto no encontrado")
	}
	cliente, err := s.clienteRepo.FindByID(ctx, p.ClienteID)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	if cliente.Email == nil || *cliente.Email == "" {
		return nil, errors.New("el cliente no tiene email registrado")
	}

	datos, err := s.renderizar(ctx, p, nil, "")
	if err != nil {
		return nil, fmt.Errorf("generar PDF del presupuesto: %w", err)
	}
	if p.PdfUrl == nil {
		if res, err := s.subir(ctx, "presupuestos", p.Numero, datos); err == nil {
			p.PdfUrl = &res.URL
			p.PdfID = &res.ID
		} else {
			log.Warn().Str("numero", p.Numero).Err(err).Msg("documento: no se pudo subir PDF al reenviar")
		}
	}

	settings, _ := s.settingsRepo.Get(ctx)
	msg := infra.Mensaje{
		To:      *cliente.Email,
		Subject: fmt.Sprintf("Presupuesto %s - %s", p.Numero, nombreTaller(settings)),
		Text:    fmt.Sprintf("Hola %s,\n\nTe enviamos el presupuesto %s por un total de $%s.\n\nSaludos,\n%s", cliente.Nombre, p.Numero, p.Total.StringFixed(2), nombreTaller(settings)),
		Adjuntos: []infra.Adjunto{{
			Nombre:      p.Numero + ".pdf",
			ContentType: "application/pdf",
			Datos:       datos,
		}},
	}
	if err := s.mailer.Send(msg); err != nil {
		return nil, fmt.Errorf("enviar presupuesto por email: %w", err)
	}

	ahora := time.Now()
	p.SentAt = &ahora
	p.Estado = model.DocumentoEnviado
	if !contiene(p.ChannelsUsed, "EMAIL") {
		p.ChannelsUsed = append(p.ChannelsUsed, "EMAIL")
	}
	if err := s.repo.UpdatePresupuesto(ctx, p); err != nil {
		return nil, err
	}
	return presupuestoToResponse(p), nil
}

// CrearFactura issues a numbered invoice against a work order. Issuing forces
// the order into COMPLETADA, since billing implies the work is done.
func (s *documentoService) CrearFactura(ctx context.Context, req dto.CrearFacturaRequest) (*dto.DocumentoResponse, error) {
	oid, err := uuid.Parse(req.OrdenID)
	if err != nil {
		return nil, fmt.Errorf("orden_id inválido: %w", err)
	}
	orden, err := s.ordenRepo.FindByID(ctx, oid)
	if err != nil {
		return nil, errors.New("orden de trabajo no encontrada")
	}
	if orden.Estado == model.OrdenCancelada {
		return nil, errors.New("no se puede facturar una orden cancelada")
	}

	items := req.Items
	manoObra := orden.ManoObra
	descuento := orden.Descuento
	if req.ManoObra != nil {
		manoObra = *req.ManoObra
	}
	if req.Descuento != nil {
		descuento = *req.Descuento
	}
	if len(items) == 0 {
		for _, it := range orden.Items {
			items = append(items, dto.ItemRequest{
				Descripcion:    it.Descripcion,
				Cantidad:       it.Cantidad,
				PrecioUnitario: it.PrecioUnitario,
			})
		}
	}

	snapshot, total := snapshotItems(items, manoObra, descuento)
	if subtotalItems(snapshot).LessThanOrEqual(decimal.Zero) && manoObra.LessThanOrEqual(decimal.Zero) {
		return nil, ErrFacturaVacia
	}

	numero, err := s.secuencias.NextNumber(ctx, model.SerieFactura, model.PrefijoFactura, s.repo.MaxSufijoFactura)
	if err != nil {
		return nil, err
	}

	f := model.Factura{
		Numero:     numero,
		VehiculoID: orden.VehiculoID,
		ClienteID:  orden.ClienteID,
		OrdenID:    orden.ID,
		CitaID:     orden.CitaID,
		Items:      snapshot,
		ManoObra:   manoObra,
		Descuento:  descuento,
		Total:      total,
		Estado:     model.DocumentoEmitido,
	}
	if err := s.repo.CreateFactura(ctx, &f); err != nil {
		return nil, err
	}

	pdfPendiente := false
	if url, id, err := s.generarYSubir(ctx, "facturas", numero, nil, &f, req.Notas); err != nil {
		pdfPendiente = true
		log.Error().Str("numero", numero).Err(err).Msg("documento: fallo generar/subir PDF de factura")
	} else {
		f.PdfUrl = &url
		f.PdfID = &id
		if err := s.repo.UpdateFactura(ctx, &f); err != nil {
			return nil, err
		}
	}

	// Completion goes through the order state machine so the first
	// transition stamps WorkStartedAt, freezes the estimate snapshot and
	// propagates COMPLETADA onto the linked cita.
	if err := s.ordenes.CompletarPorFactura(ctx, orden.ID, numero, f.PdfUrl, f.PdfID); err != nil {
		return nil, err
	}

	resp := facturaToResponse(&f)
	resp.PdfPendiente = pdfPendiente
	return resp, nil
}

func (s *documentoService) ObtenerFactura(ctx context.Context, id uuid.UUID) (*dto.DocumentoResponse, error) {
	f, err := s.repo.FindFacturaByID(ctx, id)
	if err != nil {
		return nil, errors.New("factura no encontrada")
	}
	return facturaToResponse(f), nil
}

func (s *documentoService) ListarFacturas(ctx context.Context, page, limit int) (*dto.DocumentoListResponse, error) {
	page, limit = normalizarPagina(page, limit)
	fs, total, err := s.repo.ListFacturas(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.DocumentoResponse, 0, len(fs))
	for i := range fs {
		data = append(data, *facturaToResponse(&fs[i]))
	}
	return &dto.DocumentoListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *documentoService) EnviarFacturaEmail(ctx context.Context, id uuid.UUID) (*dto.DocumentoResponse, error) {
	f, err := s.repo.FindFacturaByID(ctx, id)
	if err != nil {
		return nil, errors.New("factura no encontrada")
	}
	cliente, err := s.clienteRepo.FindByID(ctx, f.ClienteID)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	if cliente.Email == nil || *cliente.Email == "" {
		return nil, errors.New("el cliente no tiene email registrado")
	}

	datos, err := s.renderizar(ctx, nil, f, "")
	if err != nil {
		return nil, fmt.Errorf("generar PDF de la factura: %w", err)
	}
	if f.PdfUrl == nil {
		if res, err := s.subir(ctx, "facturas", f.Numero, datos); err == nil {
			f.PdfUrl = &res.URL
			f.PdfID = &res.ID
		} else {
			log.Warn().Str("numero", f.Numero).Err(err).Msg("documento: no se pudo subir PDF al reenviar")
		}
	}

	settings, _ := s.settingsRepo.Get(ctx)
	msg := infra.Mensaje{
		To:      *cliente.Email,
		Subject: fmt.Sprintf("Factura %s - %s", f.Numero, nombreTaller(settings)),
		Text:    fmt.Sprintf("Hola %s,\n\nTe enviamos la factura %s por un total de $%s.\n\nGracias por confiar en nosotros.\n%s", cliente.Nombre, f.Numero, f.Total.StringFixed(2), nombreTaller(settings)),
		Adjuntos: []infra.Adjunto{{
			Nombre:      f.Numero + ".pdf",
			ContentType: "application/pdf",
			Datos:       datos,
		}},
	}
	if err := s.mailer.Send(msg); err != nil {
		return nil, fmt.Errorf("enviar factura por email: %w", err)
	}

	ahora := time.Now()
	f.SentAt = &ahora
	f.Estado = model.DocumentoEnviado
	if err := s.repo.UpdateFactura(ctx, f); err != nil {
		return nil, err
	}
	return facturaToResponse(f), nil
}

// ── internals ─────────────────────────────────────────────────────────────────

// renderizar builds the PDF payload from settings + client + vehicle and
// renders it. Exactly one of p / f is non-nil.
func (s *documentoService) renderizar(ctx context.Context, p *model.Presupuesto, f *model.Factura, notas string) ([]byte, error) {
	var (
		numero     string
		vehiculoID uuid.UUID
		clienteID  uuid.UUID
		items      []model.DocumentoItem
		manoObra   decimal.Decimal
		descuento  decimal.Decimal
		total      decimal.Decimal
		fecha      time.Time
	)
	if p != nil {
		numero, vehiculoID, clienteID = p.Numero, p.VehiculoID, p.ClienteID
		items, manoObra, descuento, total, fecha = p.Items, p.ManoObra, p.Descuento, p.Total, p.CreatedAt
	} else {
		numero, vehiculoID, clienteID = f.Numero, f.VehiculoID, f.ClienteID
		items, manoObra, descuento, total, fecha = f.Items, f.ManoObra, f.Descuento, f.Total, f.CreatedAt
	}
	if fecha.IsZero() {
		fecha = time.Now()
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	doc := infra.DocumentoPDF{
		Numero:    numero,
		Fecha:     fecha,
		Taller:    *settings,
		Items:     items,
		ManoObra:  manoObra,
		Descuento: descuento,
		Total:     total,
		Notas:     notas,
	}
	if cliente, err := s.clienteRepo.FindByID(ctx, clienteID); err == nil {
		doc.Cliente = fmt.Sprintf("%s %s", cliente.Nombre, cliente.Apellido)
		doc.Telefono = cliente.Telefono
	}
	if vehiculo, err := s.vehiculoRepo.FindByID(ctx, vehiculoID); err == nil {
		doc.Vehiculo = fmt.Sprintf("%s %s - %s", vehiculo.Marca, vehiculo.Modelo, vehiculo.Patente)
	}

	if p != nil {
		return s.pdf.GenerarPresupuestoPDF(&doc)
	}
	return s.pdf.GenerarFacturaPDF(&doc)
}

func (s *documentoService) subir(ctx context.Context, folder, numero string, datos []byte) (*infra.UploadResult, error) {
	return s.blobs.Upload(ctx, datos, infra.UploadOptions{
		Folder:       folder,
		ResourceType: infra.RecursoRaw,
		PublicID:     numero + ".pdf",
	})
}

func (s *documentoService) generarYSubir(ctx context.Context, folder, numero string, p *model.Presupuesto, f *model.Factura, notas string) (url, id string, err error) {
	datos, err := s.renderizar(ctx, p, f, notas)
	if err != nil {
		return "", "", err
	}
	res, err := s.subir(ctx, folder, numero, datos)
	if err != nil {
		return "", "", err
	}
	return res.URL, res.ID, nil
}

func snapshotItems(items []dto.ItemRequest, manoObra, descuento decimal.Decimal) ([]model.DocumentoItem, decimal.Decimal) {
	snapshot := make([]model.DocumentoItem, 0, len(items))
	total := decimal.Zero
	for _, it := range items {
		linea := it.PrecioUnitario.Mul(decimal.NewFromInt(int64(it.Cantidad)))
		snapshot = append(snapshot, model.DocumentoItem{
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Total:          linea,
		})
		total = total.Add(linea)
	}
	return snapshot, total.Add(manoObra).Sub(descuento)
}

func subtotalItems(items []model.DocumentoItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Total)
	}
	return total
}

func normalizarPagina(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	return page, limit
}

func nombreTaller(s *model.ShopSettings) string {
	if s == nil || s.Nombre == "" {
		return "Taller"
	}
	return s.Nombre
}

func contiene(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func presupuestoToResponse(p *model.Presupuesto) *dto.DocumentoResponse {
	resp := &dto.DocumentoResponse{
		ID:           p.ID.String(),
		Numero:       p.Numero,
		VehiculoID:   p.VehiculoID.String(),
		ClienteID:    p.ClienteID.String(),
		Items:        documentoItemsToResponse(p.Items),
		ManoObra:     p.ManoObra,
		Descuento:    p.Descuento,
		Total:        p.Total,
		PdfUrl:       p.PdfUrl,
		Estado:       p.Estado,
		ChannelsUsed: p.ChannelsUsed,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
	if p.OrdenID != nil {
		oid := p.OrdenID.String()
		resp.OrdenID = &oid
	}
	if p.CitaID != nil {
		cid := p.CitaID.String()
		resp.CitaID = &cid
	}
	if p.SentAt != nil {
		sa := p.SentAt.Format(time.RFC3339)
		resp.SentAt = &sa
	}
	return resp
}

func facturaToResponse(f *model.Factura) *dto.DocumentoResponse {
	oid := f.OrdenID.String()
	resp := &dto.DocumentoResponse{
		ID:         f.ID.String(),
		Numero:     f.Numero,
		VehiculoID: f.VehiculoID.String(),
		ClienteID:  f.ClienteID.String(),
		OrdenID:    &oid,
		Items:      documentoItemsToResponse(f.Items),
		ManoObra:   f.ManoObra,
		Descuento:  f.Descuento,
		Total:      f.Total,
		PdfUrl:     f.PdfUrl,
		Estado:     f.Estado,
		CreatedAt:  f.CreatedAt.Format(time.RFC3339),
	}
	if f.CitaID != nil {
		cid := f.CitaID.String()
		resp.CitaID = &cid
	}
	if f.SentAt != nil {
		sa := f.SentAt.Format(time.RFC3339)
		resp.SentAt = &sa
	}
	return resp
}

func documentoItemsToResponse(items []model.DocumentoItem) []dto.DocumentoItemResponse {
	out := make([]dto.DocumentoItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.DocumentoItemResponse{
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Total:          it.Total,
		})
	}
	return out
}
