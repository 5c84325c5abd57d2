package worker

// cron.go
// Background sweeps over citas, reminder jobs and maintenance dates. Every
// sweep is idempotent and isolates per-item failures: one bad row never
// aborts the batch. Each returns a counts struct so the scheduler and the
// manual trigger endpoints can log outcomes uniformly.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/badkluster/taller-backend-sub000/internal/infra"
	"github.com/badkluster/taller-backend-sub000/internal/model"
	"github.com/badkluster/taller-backend-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

const reminderBatchSize = 50

// duracionMinimaCita floors the preserved duration when auto-rescheduling.
const duracionMinimaCita = 30 * time.Minute

type ReminderSweepResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

type RescheduleSweepResult struct {
	Processed   int `json:"processed"`
	NoShow      int `json:"no_show"`
	Rescheduled int `json:"rescheduled"`
	Failed      int `json:"failed"`
}

type DayBeforeSweepResult struct {
	Candidates int  `json:"candidates"`
	Sent       int  `json:"sent"`
	Skipped    int  `json:"skipped"`
	Failed     int  `json:"failed"`
	Disabled   bool `json:"disabled,omitempty"`
}

type MaintenanceSweepResult struct {
	Due     int `json:"due"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type SummarySweepResult struct {
	Citas   int  `json:"citas"`
	Sent    bool `json:"sent"`
	Skipped bool `json:"skipped"`
}

// Sweeper runs the periodic maintenance passes. All collaborators are
// injected; shop settings are loaded fresh per sweep.
type Sweeper struct {
	citaRepo         repository.CitaRepository
	ordenRepo        repository.OrdenRepository
	recordatorioRepo repository.RecordatorioRepository
	clienteRepo      repository.ClienteRepository
	settingsRepo     repository.SettingsRepository
	mailer           infra.Mailer
	cb               *infra.CircuitBreaker
}

func NewSweeper(
	citaRepo repository.CitaRepository,
	ordenRepo repository.OrdenRepository,
	recordatorioRepo repository.RecordatorioRepository,
	clienteRepo repository.ClienteRepository,
	settingsRepo repository.SettingsRepository,
	mailer infra.Mailer,
	cb *infra.CircuitBreaker,
) *Sweeper {
	return &Sweeper{
		citaRepo:         citaRepo,
		ordenRepo:        ordenRepo,
		recordatorioRepo: recordatorioRepo,
		clienteRepo:      clienteRepo,
		settingsRepo:     settingsRepo,
		mailer:           mailer,
		cb:               cb,
	}
}

// Start launches the ticker goroutine running every sweep each interval.
// It respects the context for graceful shutdown.
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("cron: sweeper started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("cron: sweeper shutting down")
				return
			case <-ticker.C:
				s.runAll(ctx)
			}
		}
	}()
}

func (s *Sweeper) runAll(ctx context.Context) {
	r1 := s.ProcessReminders(ctx)
	r2 := s.RescheduleOverdueAppointments(ctx)
	r3 := s.SendDayBeforeReminders(ctx, 1)
	r4 := s.ProcessMaintenanceReminders(ctx)
	r5 := s.SendOwnerDailySummary(ctx)
	log.Info().
		Interface("reminders", r1).
		Interface("reschedule", r2).
		Interface("day_before", r3).
		Interface("maintenance", r4).
		Interface("owner_summary", r5).
		Msg("cron: sweep tick finished")
}

// ProcessReminders delivers every PENDING RecordatorioJob whose run_at has
// passed. Jobs pointing at missing or inactive citas, clients without email
// or unsupported channels are marked FAILED with the reason — they would
// never succeed on retry.
func (s *Sweeper) ProcessReminders(ctx context.Context) ReminderSweepResult {
	var res ReminderSweepResult
	jobs, err := s.recordatorioRepo.Vencidos(ctx, time.Now(), reminderBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("cron: no se pudieron cargar recordatorios vencidos")
		return res
	}

	for i := range jobs {
		job := &jobs[i]
		res.Processed++
		if err := s.procesarRecordatorio(ctx, job); err != nil {
			res.Failed++
			job.Estado = model.RecordatorioFailed
			job.Tries++
			msg := err.Error()
			job.LastError = &msg
		} else {
			res.Sent++
			job.Estado = model.RecordatorioSent
			job.LastError = nil
		}
		if err := s.recordatorioRepo.Update(ctx, job); err != nil {
			log.Error().Str("job_id", job.ID.String()).Err(err).Msg("cron: no se pudo actualizar recordatorio")
		}
	}
	return res
}

func (s *Sweeper) procesarRecordatorio(ctx context.Context, job *model.RecordatorioJob) error {
	if job.Canal != model.CanalEmail {
		return fmt.Errorf("canal no soportado: %s", job.Canal)
	}
	cita, err := s.citaRepo.FindByID(ctx, job.CitaID)
	if err != nil {
		return fmt.Errorf("cita no encontrada: %s", job.CitaID)
	}
	if !cita.Activa() {
		return fmt.Errorf("cita %s en estado %s", cita.ID, cita.Estado)
	}
	cliente, err := s.clienteRepo.FindByID(ctx, cita.ClienteID)
	if err != nil {
		return fmt.Errorf("cliente no encontrado: %s", cita.ClienteID)
	}
	if cliente.Email == nil || *cliente.Email == "" {
		return fmt.Errorf("cliente %s sin email", cliente.ID)
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}
	return s.cb.Execute(func() error {
		return s.mailer.Send(infra.Mensaje{
			To:      *cliente.Email,
			Subject: fmt.Sprintf("Recordatorio de cita - %s", settings.Nombre),
			Text: fmt.Sprintf("Hola %s,\n\nTe recordamos tu cita del %s.\n\n%s",
				cliente.Nombre, cita.StartAt.Format("02/01/2006 15:04"), settings.Nombre),
		})
	})
}

// RescheduleOverdueAppointments resolves citas whose end passed before today
// began. CONFIRMED overdue citas become NO_SHOW. IN_PROGRESS overdue citas
// become NO_SHOW too, unless an active orden is attached — work is genuinely
// underway, so the cita moves to the earliest free slot tomorrow (earliest
// occupied slot when the whole grid is taken), keeping its duration and
// its IN_PROGRESS status. Running the sweep twice back to back is a no-op:
// the first pass leaves nothing overdue.
func (s *Sweeper) RescheduleOverdueAppointments(ctx context.Context) RescheduleSweepResult {
	var res RescheduleSweepResult
	hoy := inicioDelDiaCron(time.Now())
	vencidas, err := s.citaRepo.Vencidas(ctx, hoy)
	if err != nil {
		log.Error().Err(err).Msg("cron: no se pudieron cargar citas vencidas")
		return res
	}

	for i := range vencidas {
		cita := &vencidas[i]
		res.Processed++

		if cita.Estado == model.CitaInProgress {
			if orden, err := s.ordenRepo.FindByCitaID(ctx, cita.ID); err == nil && orden.Activa() {
				if err := s.reprogramar(ctx, cita); err != nil {
					res.Failed++
					log.Error().Str("cita_id", cita.ID.String()).Err(err).Msg("cron: no se pudo reprogramar cita")
				} else {
					res.Rescheduled++
				}
				continue
			}
		}

		cita.Estado = model.CitaNoShow
		if err := s.citaRepo.Update(ctx, cita); err != nil {
			res.Failed++
			log.Error().Str("cita_id", cita.ID.String()).Err(err).Msg("cron: no se pudo marcar no-show")
		} else {
			res.NoShow++
		}
	}
	return res
}

func (s *Sweeper) reprogramar(ctx context.Context, cita *model.Cita) error {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}
	manana := inicioDelDiaCron(time.Now()).AddDate(0, 0, 1)
	slots := settings.Slots(manana)
	if len(slots) == 0 {
		return fmt.Errorf("sin grilla de turnos configurada")
	}

	duracion := cita.EndAt.Sub(cita.StartAt)
	if duracion < duracionMinimaCita {
		duracion = duracionMinimaCita
	}

	ocupadas, err := s.citaRepo.ActivasDelDia(ctx, manana)
	if err != nil {
		return err
	}

	inicio := slots[0] // fallback: earliest slot even if occupied
	for _, slot := range slots {
		libre := true
		for j := range ocupadas {
			if ocupadas[j].ID == cita.ID {
				continue
			}
			if slot.Before(ocupadas[j].EndAt) && slot.Add(duracion).After(ocupadas[j].StartAt) {
				libre = false
				break
			}
		}
		if libre {
			inicio = slot
			break
		}
	}

	cita.StartAt = inicio
	cita.EndAt = inicio.Add(duracion)
	return s.citaRepo.Update(ctx, cita)
}

// SendDayBeforeReminders emails CONFIRMED citas landing lookaheadDias ahead.
// The reminded-for-date marker (not a boolean) makes the sweep idempotent
// within a day while still re-reminding after a reschedule.
func (s *Sweeper) SendDayBeforeReminders(ctx context.Context, lookaheadDias int) DayBeforeSweepResult {
	var res DayBeforeSweepResult
	if lookaheadDias < 1 {
		lookaheadDias = 1
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		log.Error().Err(err).Msg("cron: no se pudo cargar configuración del taller")
		return res
	}
	if !settings.Reminder24hEnabled {
		res.Disabled = true
		return res
	}

	dia := inicioDelDiaCron(time.Now()).AddDate(0, 0, lookaheadDias)
	citas, err := s.citaRepo.ConfirmadasEntre(ctx, dia, dia.AddDate(0, 0, 1))
	if err != nil {
		log.Error().Err(err).Msg("cron: no se pudieron cargar citas confirmadas")
		return res
	}

	for i := range citas {
		cita := &citas[i]
		res.Candidates++

		fecha := inicioDelDiaCron(cita.StartAt)
		if cita.RecordatorioEnviadoPara != nil && cita.RecordatorioEnviadoPara.Equal(fecha) {
			res.Skipped++
			continue
		}
		cliente, err := s.clienteRepo.FindByID(ctx, cita.ClienteID)
		if err != nil || cliente.Email == nil || *cliente.Email == "" {
			res.Skipped++
			continue
		}

		err = s.cb.Execute(func() error {
			return s.mailer.Send(infra.Mensaje{
				To:      *cliente.Email,
				Subject: fmt.Sprintf("Mañana te esperamos - %s", settings.Nombre),
				Text: fmt.Sprintf("Hola %s,\n\nTe recordamos tu cita de mañana a las %s.\n\n%s",
					cliente.Nombre, cita.StartAt.Format("15:04"), settings.Nombre),
			})
		})
		if err != nil {
			res.Failed++
			log.Error().Str("cita_id", cita.ID.String()).Err(err).Msg("cron: fallo recordatorio 24h")
			continue
		}

		cita.RecordatorioEnviadoPara = &fecha
		if err := s.citaRepo.Update(ctx, cita); err != nil {
			log.Error().Str("cita_id", cita.ID.String()).Err(err).Msg("cron: no se pudo marcar recordatorio enviado")
		}
		res.Sent++
	}
	return res
}

// ProcessMaintenanceReminders notices clients whose orden has a maintenance
// date already due. Dedup: last notice absent or before the start of today.
func (s *Sweeper) ProcessMaintenanceReminders(ctx context.Context) MaintenanceSweepResult {
	var res MaintenanceSweepResult
	ahora := time.Now()
	hoy := inicioDelDiaCron(ahora)
	ordenes, err := s.ordenRepo.MantenimientoVencidas(ctx, ahora, hoy)
	if err != nil {
		log.Error().Err(err).Msg("cron: no se pudieron cargar mantenimientos vencidos")
		return res
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		log.Error().Err(err).Msg("cron: no se pudo cargar configuración del taller")
		return res
	}

	for i := range ordenes {
		orden := &ordenes[i]
		res.Due++
		cliente, err := s.clienteRepo.FindByID(ctx, orden.ClienteID)
		if err != nil || cliente.Email == nil || *cliente.Email == "" {
			res.Skipped++
			continue
		}

		err = s.cb.Execute(func() error {
			return s.mailer.Send(infra.Mensaje{
				To:      *cliente.Email,
				Subject: fmt.Sprintf("Mantenimiento pendiente - %s", settings.Nombre),
				Text: fmt.Sprintf("Hola %s,\n\nTu vehículo tiene un mantenimiento programado pendiente. Escribinos para coordinar una visita.\n\n%s",
					cliente.Nombre, settings.Nombre),
			})
		})
		if err != nil {
			res.Failed++
			log.Error().Str("orden_id", orden.ID.String()).Err(err).Msg("cron: fallo aviso de mantenimiento")
			continue
		}

		orden.MaintenanceLastNotifiedAt = &ahora
		if err := s.ordenRepo.Update(ctx, orden); err != nil {
			log.Error().Str("orden_id", orden.ID.String()).Err(err).Msg("cron: no se pudo marcar aviso de mantenimiento")
		}
		res.Sent++
	}
	return res
}

// SendOwnerDailySummary mails the owner today's agenda. No owner email
// configured means nothing to do; the sent-for-date marker keeps the
// periodic tick from mailing the digest more than once per day.
func (s *Sweeper) SendOwnerDailySummary(ctx context.Context) SummarySweepResult {
	var res SummarySweepResult
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil || settings.OwnerEmail == "" {
		return res
	}

	hoy := inicioDelDiaCron(time.Now())
	if settings.ResumenEnviadoPara != nil && !settings.ResumenEnviadoPara.Before(hoy) {
		res.Skipped = true
		return res
	}
	citas, err := s.citaRepo.DelDia(ctx, hoy)
	if err != nil {
		log.Error().Err(err).Msg("cron: no se pudieron cargar las citas del día")
		return res
	}
	res.Citas = len(citas)

	var b strings.Builder
	fmt.Fprintf(&b, "Resumen del %s\n\nCitas del día: %d\n\n", hoy.Format("02/01/2006"), len(citas))
	for i := range citas {
		c := &citas[i]
		nombre := "-"
		if cliente, err := s.clienteRepo.FindByID(ctx, c.ClienteID); err == nil {
			nombre = fmt.Sprintf("%s %s", cliente.Nombre, cliente.Apellido)
		}
		fmt.Fprintf(&b, "- %s  %s  [%s]  %s\n", c.StartAt.Format("15:04"), nombre, c.Estado, c.TipoServicio)
	}

	err = s.cb.Execute(func() error {
		return s.mailer.Send(infra.Mensaje{
			To:      settings.OwnerEmail,
			Subject: fmt.Sprintf("Resumen diario - %s", settings.Nombre),
			Text:    b.String(),
		})
	})
	if err != nil {
		log.Error().Err(err).Msg("cron: fallo el resumen diario")
		return res
	}
	res.Sent = true

	settings.ResumenEnviadoPara = &hoy
	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		log.Warn().Err(err).Msg("cron: no se pudo marcar el resumen como enviado")
	}
	return res
}

func inicioDelDiaCron(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
