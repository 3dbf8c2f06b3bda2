package workers

import (
	"context"
	"log"
	"time"

	"prospecta/config"
	"prospecta/leads"
	"prospecta/models"
	"prospecta/sources"
	"prospecta/tools"

	"github.com/jinzhu/gorm"
)

// Searcher é o que o scheduler precisa de um chain de adapters.
type Searcher interface {
	Search(ctx context.Context, params sources.SearchParams) []models.Listing
}

// Scheduler é o loop de orquestração. É um objeto com dono explícito,
// criado uma vez no arranque e com ciclo de vida Start/Stop — nada de
// flag global de "já está a correr". Assume uma única instância contra
// o store partilhado; ver DESIGN.md sobre escala horizontal.
type Scheduler struct {
	DB             *gorm.DB
	Interval       time.Duration
	AdapterTimeout time.Duration
	SendDelay      time.Duration

	Classifier *leads.Classifier
	Composer   *leads.Composer
	Dispatcher *Dispatcher

	// ChainFor monta o chain de adapters a partir da configuração do
	// customer; injetável nos testes.
	ChainFor func(names []string) Searcher

	// now é injetável para testar cadência e quiet hours.
	now func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
}

// NewScheduler monta o scheduler com os clients construídos do ambiente.
func NewScheduler(database *gorm.DB, cfg config.Configuration) *Scheduler {
	ai := tools.NewOpenAIClientFromEnv()
	return &Scheduler{
		DB:             database,
		Interval:       time.Duration(cfg.Automation.TickSeconds) * time.Second,
		AdapterTimeout: time.Duration(cfg.Automation.AdapterTimeoutSecs) * time.Second,
		SendDelay:      time.Duration(cfg.Automation.SendDelayMinutes) * time.Minute,
		Classifier:     leads.NewClassifier(ai),
		Composer:       leads.NewComposer(ai),
		Dispatcher:     NewDispatcherFromEnv(),
		ChainFor: func(names []string) Searcher {
			return sources.NewChain(names)
		},
		now:  time.Now,
		stop: make(chan struct{}),
	}
}

// Start arranca o loop num goroutine. Cada tick corre as fases em
// sequência; um tick lento apenas atrasa o seguinte, nunca sobrepõe.
func (s *Scheduler) Start() {
	if s.Interval <= 0 {
		s.Interval = 60 * time.Second
	}
	s.ticker = time.NewTicker(s.Interval)
	log.Printf("scheduler: started (tick=%s)", s.Interval)

	go func() {
		for {
			select {
			case <-s.stop:
				return
			case <-s.ticker.C:
				s.runTick(s.clock())
			}
		}
	}()
}

// Stop para o loop. Um tick em curso termina o trabalho em mãos.
func (s *Scheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stop)
	log.Printf("scheduler: stopped")
}

func (s *Scheduler) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// runTick corre as três fases em sequência, sempre relendo o estado do
// store — nenhum estado de automação sobrevive em memória entre ticks.
func (s *Scheduler) runTick(now time.Time) {
	s.runSearchPhase(now)
	s.runFollowupPhase(now)
	s.runDispatchPhase(now)
}

/************************************************
/**** MARK: FOLLOW-UP PHASE ****/
/************************************************/

// runFollowupPhase agenda follow-ups de 3 e 7 dias para leads sem
// contacto recente. Um lead com qualquer job pendente é saltado (no
// máximo um job em aberto por lead); opt-out nunca é contactado.
func (s *Scheduler) runFollowupPhase(now time.Time) {
	var settingsList []models.AutomationSettings
	if err := s.DB.Where("enabled = ?", true).Find(&settingsList).Error; err != nil {
		log.Printf("scheduler: followup settings query error: %v", err)
		return
	}

	for _, settings := range settingsList {
		if !settings.Followup3d && !settings.Followup7d {
			continue
		}

		var customerLeads []models.Lead
		if err := s.DB.
			Where("customer_id = ? AND opt_out = ?", settings.CustomerID, false).
			Find(&customerLeads).Error; err != nil {
			log.Printf("scheduler: followup leads query error (customer %d): %v", settings.CustomerID, err)
			continue
		}

		for _, lead := range customerLeads {
			s.maybeScheduleFollowup(now, settings, lead)
		}
	}
}

func (s *Scheduler) maybeScheduleFollowup(now time.Time, settings models.AutomationSettings, lead models.Lead) {
	last := lead.CreatedAt
	if lead.LastContact != nil {
		last = lead.LastContact
	}
	if last == nil {
		return
	}
	days := int(now.Sub(*last).Hours() / 24)

	var trigger string
	switch {
	case days >= 7 && settings.Followup7d:
		trigger = models.JOB_TRIGGER_FOLLOWUP_7D
	case days >= 3 && days < 7 && settings.Followup3d:
		trigger = models.JOB_TRIGGER_FOLLOWUP_3D
	default:
		return
	}

	var pending int
	s.DB.Model(&models.MessageJob{}).
		Where("lead_id = ? AND status = ?", lead.ID, models.JOB_STATUS_PENDING).
		Count(&pending)
	if pending > 0 {
		return
	}

	// no máximo um job por (lead, trigger), em qualquer estado
	var existing int
	s.DB.Model(&models.MessageJob{}).
		Where("lead_id = ? AND trigger_type = ?", lead.ID, trigger).
		Count(&existing)
	if existing > 0 {
		return
	}

	s.scheduleMessage(now, settings, lead, trigger)
}

// scheduleMessage compõe o conteúdo e cria o job pending. O horário de
// envio é daqui a SendDelay, ou o fim das quiet hours se estamos dentro
// delas.
func (s *Scheduler) scheduleMessage(now time.Time, settings models.AutomationSettings, lead models.Lead, trigger string) {
	channel := settings.PreferredChannel
	if channel == models.CHANNEL_WHATSAPP && lead.Phone == "" && lead.Email != "" {
		channel = models.CHANNEL_EMAIL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	msg := s.Composer.Compose(ctx, lead, trigger, channel)

	at := s.nextSendTime(now, settings)
	job := models.MessageJob{
		CustomerID:  settings.CustomerID,
		LeadID:      lead.ID,
		Channel:     channel,
		Content:     msg.Content,
		Subject:     msg.Subject,
		Status:      models.JOB_STATUS_PENDING,
		Trigger:     trigger,
		ScheduledAt: &at,
	}
	if err := s.DB.Create(&job).Error; err != nil {
		log.Printf("scheduler: create job error (lead %d, %s): %v", lead.ID, trigger, err)
		return
	}
	log.Printf("scheduler: scheduled %s %s for lead %d at %s", channel, trigger, lead.ID, at.Format(time.RFC3339))
}

// nextSendTime: daqui a SendDelay fora das quiet hours; senão a próxima
// ocorrência da hora de fim (amanhã se a hora atual já passou do início).
func (s *Scheduler) nextSendTime(now time.Time, settings models.AutomationSettings) time.Time {
	delay := s.SendDelay
	if delay <= 0 {
		delay = 5 * time.Minute
	}
	if !InQuietHours(now.Hour(), settings.QuietHoursStart, settings.QuietHoursEnd) {
		return now.Add(delay)
	}
	end := time.Date(now.Year(), now.Month(), now.Day(), settings.QuietHoursEnd, 0, 0, 0, now.Location())
	if !end.After(now) {
		end = end.Add(24 * time.Hour)
	}
	return end
}

// InQuietHours aplica a janela diária com suporte a wrap-around:
// start=21 end=9 significa silêncio das 21:00 às 09:00.
func InQuietHours(hour, start, end int) bool {
	if start == end {
		return false
	}
	if start > end {
		return hour >= start || hour < end
	}
	return hour >= start && hour < end
}

/************************************************
/**** MARK: SEARCH CADENCE ****/
/************************************************/

// cadenceDue decide se a pesquisa do customer dispara neste tick. O
// watermark LastSearchSlot (data+hora) é a fonte de verdade: a cadência
// nunca dispara duas vezes dentro da mesma hora, mesmo que o intervalo
// do tick derive.
func cadenceDue(settings models.AutomationSettings, now time.Time) bool {
	slot := now.Format("2006-01-02-15")
	if settings.LastSearchSlot == slot {
		return false
	}
	hour := now.Hour()

	switch settings.SearchCadence {
	case models.SEARCH_CADENCE_HOURLY:
		return true
	case models.SEARCH_CADENCE_TWICE_DAILY:
		return hour == 9 || hour == 15
	case models.SEARCH_CADENCE_WEEKLY:
		return now.Weekday() == time.Monday && hour == 9
	default: // daily
		return hour == 9
	}
}
