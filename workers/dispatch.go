package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"prospecta/models"
	"prospecta/tools"
)

// SendResult é o desfecho de uma tentativa de envio. FallbackURL vem
// preenchido quando o envio WhatsApp saiu como link wa.me acionável por
// um humano.
type SendResult struct {
	Success     bool
	Error       string
	FallbackURL string
}

// Dispatcher transforma um job agendado numa tentativa de envio.
// Clients nil significam "não configurado" e ativam os fallbacks.
type Dispatcher struct {
	WhatsApp *tools.WhatsAppClient
	Email    *tools.EmailClient
}

func NewDispatcherFromEnv() *Dispatcher {
	return &Dispatcher{
		WhatsApp: tools.NewWhatsAppClientFromEnv(),
		Email:    tools.NewEmailClientFromEnv(),
	}
}

// Send tenta entregar o job pelo canal configurado.
func (d *Dispatcher) Send(ctx context.Context, job models.MessageJob, lead models.Lead) SendResult {
	switch job.Channel {
	case models.CHANNEL_EMAIL:
		return d.sendEmail(ctx, job, lead)
	default:
		return d.sendWhatsApp(ctx, job, lead)
	}
}

// sendWhatsApp: Cloud API quando há credencial; em falha do provider ou
// sem credencial, o link wa.me é o fallback garantido — o job continua
// acionável por um humano, por isso conta como sucesso.
func (d *Dispatcher) sendWhatsApp(ctx context.Context, job models.MessageJob, lead models.Lead) SendResult {
	phone, err := tools.NormalizePhone(lead.Phone)
	if err != nil {
		return SendResult{Error: fmt.Sprintf("invalid phone %q: %v", lead.Phone, err)}
	}

	if d.WhatsApp != nil {
		if err := d.WhatsApp.SendText(ctx, phone, job.Content); err == nil {
			return SendResult{Success: true}
		} else {
			log.Printf("dispatcher: whatsapp api failed, falling back to wa.me link: %v", err)
		}
	}

	return SendResult{
		Success:     true,
		FallbackURL: tools.ClickToChatURL(phone, job.Content),
	}
}

// sendEmail: provider quando há credencial; sem credencial o envio é
// simulado (modo demo) e logado.
func (d *Dispatcher) sendEmail(ctx context.Context, job models.MessageJob, lead models.Lead) SendResult {
	if lead.Email == "" {
		return SendResult{Error: "lead has no email"}
	}

	if d.Email == nil {
		log.Printf("dispatcher: email provider not configured, simulating send to %s (job %d)", lead.Email, job.ID)
		return SendResult{Success: true}
	}

	if err := d.Email.Send(ctx, lead.Email, job.Subject, job.Content); err != nil {
		return SendResult{Error: err.Error()}
	}
	return SendResult{Success: true}
}

/************************************************
/**** MARK: DISPATCH PHASE ****/
/************************************************/

// runDispatchPhase processa os jobs pendentes já devidos. Automação
// desligada cancela o job; quiet hours deixam-no intocado (attempts
// inclusive); caso contrário tenta o envio com orçamento de 3 tentativas.
func (s *Scheduler) runDispatchPhase(now time.Time) {
	var jobs []models.MessageJob
	if err := s.DB.
		Where("status = ?", models.JOB_STATUS_PENDING).
		Where("scheduled_at IS NOT NULL AND scheduled_at <= ?", now).
		Order("scheduled_at asc, id asc").
		Limit(100).
		Find(&jobs).Error; err != nil {
		log.Printf("scheduler: dispatch query error: %v", err)
		return
	}

	for _, job := range jobs {
		s.dispatchJob(now, job)
	}
}

func (s *Scheduler) dispatchJob(now time.Time, job models.MessageJob) {
	var settings models.AutomationSettings
	settingsFound := s.DB.Where("customer_id = ?", job.CustomerID).First(&settings).Error == nil

	if !settingsFound || !settings.Enabled {
		s.DB.Model(&models.MessageJob{}).
			Where("id = ? AND status = ?", job.ID, models.JOB_STATUS_PENDING).
			Update("status", models.JOB_STATUS_CANCELLED)
		log.Printf("scheduler: job %d cancelled (automation disabled for customer %d)", job.ID, job.CustomerID)
		return
	}

	if InQuietHours(now.Hour(), settings.QuietHoursStart, settings.QuietHoursEnd) {
		return
	}

	metric := models.USAGE_METRIC_WHATSAPP
	if job.Channel == models.CHANNEL_EMAIL {
		metric = models.USAGE_METRIC_EMAIL
	}
	if !s.withinPlanLimit(job.CustomerID, metric, now) {
		log.Printf("scheduler: job %d deferred, customer %d over %s plan limit", job.ID, job.CustomerID, metric)
		return
	}

	var lead models.Lead
	if err := s.DB.First(&lead, job.LeadID).Error; err != nil {
		s.failJob(job, "lead not found")
		return
	}
	if lead.OptOut {
		s.DB.Model(&models.MessageJob{}).
			Where("id = ?", job.ID).
			Update("status", models.JOB_STATUS_CANCELLED)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	result := s.Dispatcher.Send(ctx, job, lead)
	cancel()

	if result.Success {
		s.markSent(now, job, lead, result)
		return
	}
	s.recordFailure(now, job, result.Error)
}

func (s *Scheduler) markSent(now time.Time, job models.MessageJob, lead models.Lead, result SendResult) {
	updates := map[string]any{
		"status":  models.JOB_STATUS_SENT,
		"sent_at": now,
	}
	if err := s.DB.Model(&models.MessageJob{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
		log.Printf("scheduler: mark sent error (job %d): %v", job.ID, err)
		return
	}

	s.DB.Model(&models.Lead{}).Where("id = ?", lead.ID).Update("last_contact", now)

	meta, _ := json.Marshal(map[string]any{
		"automated":    true,
		"trigger":      job.Trigger,
		"job_id":       job.ID,
		"fallback_url": result.FallbackURL,
	})
	interactionType := models.INTERACTION_TYPE_WHATSAPP
	if job.Channel == models.CHANNEL_EMAIL {
		interactionType = models.INTERACTION_TYPE_EMAIL
	}
	entry := models.Interaction{
		LeadID:     lead.ID,
		CustomerID: job.CustomerID,
		Type:       interactionType,
		Content:    job.Content,
		Metadata:   string(meta),
		Automated:  true,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		log.Printf("scheduler: sent interaction error (job %d): %v", job.ID, err)
	}

	metric := models.USAGE_METRIC_WHATSAPP
	if job.Channel == models.CHANNEL_EMAIL {
		metric = models.USAGE_METRIC_EMAIL
	}
	RecordUsage(s.DB, job.CustomerID, metric, 1, models.USAGE_SOURCE_AUTOMATION)

	log.Printf("scheduler: job %d sent (%s, lead %d)", job.ID, job.Channel, lead.ID)
}

// recordFailure incrementa attempts; na terceira falha o job fica failed
// terminal e queryable com lastError, senão é reagendado uns minutos à
// frente.
func (s *Scheduler) recordFailure(now time.Time, job models.MessageJob, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= models.MaxJobAttempts {
		s.DB.Model(&models.MessageJob{}).Where("id = ?", job.ID).Updates(map[string]any{
			"status":     models.JOB_STATUS_FAILED,
			"attempts":   attempts,
			"last_error": errMsg,
		})
		log.Printf("scheduler: job %d failed terminally after %d attempts: %s", job.ID, attempts, errMsg)
		return
	}

	delay := s.SendDelay
	if delay <= 0 {
		delay = 5 * time.Minute
	}
	retryAt := now.Add(delay)
	s.DB.Model(&models.MessageJob{}).Where("id = ?", job.ID).Updates(map[string]any{
		"attempts":     attempts,
		"last_error":   errMsg,
		"scheduled_at": retryAt,
	})
	log.Printf("scheduler: job %d attempt %d failed, retrying at %s: %s",
		job.ID, attempts, retryAt.Format(time.RFC3339), errMsg)
}

func (s *Scheduler) failJob(job models.MessageJob, errMsg string) {
	s.DB.Model(&models.MessageJob{}).Where("id = ?", job.ID).Updates(map[string]any{
		"status":     models.JOB_STATUS_FAILED,
		"last_error": errMsg,
	})
}
