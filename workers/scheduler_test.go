package workers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	dbpkg "prospecta/db"
	"prospecta/leads"
	"prospecta/models"
	"prospecta/sources"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	database.LogMode(false)
	dbpkg.AutoMigrate(database)
	t.Cleanup(func() { database.Close() })
	return database
}

type fakeChain struct {
	listings []models.Listing
	calls    *int
}

func (f fakeChain) Search(_ context.Context, _ sources.SearchParams) []models.Listing {
	if f.calls != nil {
		*f.calls++
	}
	return f.listings
}

func newTestScheduler(t *testing.T, database *gorm.DB, chain Searcher) *Scheduler {
	t.Helper()
	return &Scheduler{
		DB:             database,
		Interval:       time.Minute,
		AdapterTimeout: time.Second,
		SendDelay:      5 * time.Minute,
		Classifier:     leads.NewClassifier(nil),
		Composer:       leads.NewComposer(nil),
		Dispatcher:     &Dispatcher{},
		ChainFor:       func([]string) Searcher { return chain },
		stop:           make(chan struct{}),
	}
}

func seedCustomer(t *testing.T, database *gorm.DB, settings models.AutomationSettings) models.AutomationSettings {
	t.Helper()
	customer := models.Customer{Name: "Agência Teste", Email: "agencia@example.com"}
	require.NoError(t, database.Create(&customer).Error)
	settings.CustomerID = customer.ID
	require.NoError(t, database.Create(&settings).Error)
	return settings
}

/************************************************
/**** MARK: QUIET HOURS ****/
/************************************************/

func TestInQuietHoursWraparound(t *testing.T) {
	// start=21 end=9: 22,23,0,5 em silêncio; 9,10,15,20 não
	for _, h := range []int{21, 22, 23, 0, 5, 8} {
		assert.True(t, InQuietHours(h, 21, 9), "hora %d devia ser quiet", h)
	}
	for _, h := range []int{9, 10, 15, 20} {
		assert.False(t, InQuietHours(h, 21, 9), "hora %d não devia ser quiet", h)
	}
}

func TestInQuietHoursSameDayWindow(t *testing.T) {
	assert.True(t, InQuietHours(14, 13, 15))
	assert.False(t, InQuietHours(15, 13, 15))
	assert.False(t, InQuietHours(12, 13, 15))
}

func TestInQuietHoursDisabled(t *testing.T) {
	assert.False(t, InQuietHours(3, 9, 9))
}

func TestNextSendTime(t *testing.T) {
	s := &Scheduler{SendDelay: 5 * time.Minute}
	settings := models.AutomationSettings{QuietHoursStart: 21, QuietHoursEnd: 9}

	// fora das quiet hours: daqui a 5 minutos
	noon := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, noon.Add(5*time.Minute), s.nextSendTime(noon, settings))

	// dentro, depois do início: amanhã às 9
	night := time.Date(2026, 9, 1, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC), s.nextSendTime(night, settings))

	// madrugada, antes do fim: hoje às 9
	dawn := time.Date(2026, 9, 1, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC), s.nextSendTime(dawn, settings))
}

/************************************************
/**** MARK: CADÊNCIA ****/
/************************************************/

func TestCadenceDue(t *testing.T) {
	nineAM := time.Date(2026, 9, 1, 9, 10, 0, 0, time.UTC) // terça
	monday := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)

	daily := models.AutomationSettings{SearchCadence: models.SEARCH_CADENCE_DAILY}
	assert.True(t, cadenceDue(daily, nineAM))
	assert.False(t, cadenceDue(daily, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)))

	// watermark da mesma hora bloqueia o segundo disparo
	daily.LastSearchSlot = "2026-09-01-09"
	assert.False(t, cadenceDue(daily, nineAM))

	twice := models.AutomationSettings{SearchCadence: models.SEARCH_CADENCE_TWICE_DAILY}
	assert.True(t, cadenceDue(twice, time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)))
	assert.False(t, cadenceDue(twice, time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)))

	weekly := models.AutomationSettings{SearchCadence: models.SEARCH_CADENCE_WEEKLY}
	assert.True(t, cadenceDue(weekly, monday))
	assert.False(t, cadenceDue(weekly, nineAM))

	hourly := models.AutomationSettings{SearchCadence: models.SEARCH_CADENCE_HOURLY}
	assert.True(t, cadenceDue(hourly, time.Date(2026, 9, 1, 3, 0, 0, 0, time.UTC)))
}

func TestSearchPhaseFiresOncePerSlot(t *testing.T) {
	database := newTestDB(t)
	calls := 0
	chain := fakeChain{calls: &calls}
	s := newTestScheduler(t, database, chain)

	seedCustomer(t, database, models.AutomationSettings{
		Enabled:       true,
		SearchEnabled: true,
		SearchCadence: models.SEARCH_CADENCE_DAILY,
	})

	now := time.Date(2026, 9, 1, 9, 5, 0, 0, time.UTC)
	s.runSearchPhase(now)
	s.runSearchPhase(now.Add(time.Minute))

	// uma combinação (localização×tipo) => uma chamada, só no primeiro tick
	assert.Equal(t, 1, calls)

	var settings models.AutomationSettings
	require.NoError(t, database.First(&settings).Error)
	assert.Equal(t, "2026-09-01-09", settings.LastSearchSlot)
	require.NotNil(t, settings.LastSearchAt)
}

/************************************************
/**** MARK: SEARCH + DEDUP ****/
/************************************************/

func lisbonListing() models.Listing {
	return models.Listing{
		Title:        "T2 em Lisboa",
		Price:        250000,
		PriceDisplay: "250 000 €",
		Location:     "Lisboa",
		PropertyType: models.PROPERTY_TYPE_APARTMENT,
		Phone:        "+351912345678",
		Source:       "demo",
		SourceURL:    "https://demo.prospecta.local/listing/abc-1",
		Description:  "Apartamento renovado",
	}
}

func TestRunSearchPersistsAndDeduplicates(t *testing.T) {
	database := newTestDB(t)
	s := newTestScheduler(t, database, fakeChain{listings: []models.Listing{lisbonListing()}})

	settings := seedCustomer(t, database, models.AutomationSettings{
		Enabled:       true,
		SearchEnabled: true,
		MinScore:      40,
	})

	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, s.RunSearch(now, settings, models.USAGE_SOURCE_AUTOMATION))

	// mesma pesquisa outra vez: o telefone normalizado bate => duplicado
	assert.Equal(t, 0, s.RunSearch(now, settings, models.USAGE_SOURCE_AUTOMATION))

	var count int
	database.Model(&models.Lead{}).Count(&count)
	assert.Equal(t, 1, count)

	var lead models.Lead
	require.NoError(t, database.First(&lead).Error)
	require.NotNil(t, lead.AIScore)
	// fallback: base 50 + contacto 20 + Lisboa premium 15
	assert.Equal(t, 85, *lead.AIScore)
	assert.Equal(t, models.LEAD_STATUS_HOT, lead.Status)

	// entrada de descoberta no histórico
	var interactions int
	database.Model(&models.Interaction{}).Where("lead_id = ?", lead.ID).Count(&interactions)
	assert.Equal(t, 1, interactions)

	// ledger: 2 pesquisas + 1 listing analisado
	period := models.PeriodFor(time.Now())
	assert.Equal(t, int64(2), UsageTotal(database, settings.CustomerID, models.USAGE_METRIC_SEARCH, period))
	assert.Equal(t, int64(1), UsageTotal(database, settings.CustomerID, models.USAGE_METRIC_LEAD_ANALYZED, period))
}

func TestRunSearchRejectsBelowMinScore(t *testing.T) {
	database := newTestDB(t)
	listing := lisbonListing()
	listing.Phone = ""
	listing.Location = "Aldeia Remota" // fallback: 50, sem bónus
	s := newTestScheduler(t, database, fakeChain{listings: []models.Listing{listing}})

	settings := seedCustomer(t, database, models.AutomationSettings{
		Enabled:       true,
		SearchEnabled: true,
		MinScore:      60,
	})

	assert.Equal(t, 0, s.RunSearch(time.Now(), settings, models.USAGE_SOURCE_AUTOMATION))

	var count int
	database.Model(&models.Lead{}).Count(&count)
	assert.Equal(t, 0, count)
}

func TestRunSearchSchedulesNewLeadJob(t *testing.T) {
	database := newTestDB(t)
	s := newTestScheduler(t, database, fakeChain{listings: []models.Listing{lisbonListing()}})

	settings := seedCustomer(t, database, models.AutomationSettings{
		Enabled:            true,
		SearchEnabled:      true,
		AutoMessageNewLead: true,
		PreferredChannel:   models.CHANNEL_WHATSAPP,
		QuietHoursStart:    21,
		QuietHoursEnd:      9,
	})

	noon := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	s.RunSearch(noon, settings, models.USAGE_SOURCE_AUTOMATION)

	var job models.MessageJob
	require.NoError(t, database.First(&job).Error)
	assert.Equal(t, models.JOB_TRIGGER_NEW_LEAD, job.Trigger)
	assert.Equal(t, models.JOB_STATUS_PENDING, job.Status)
	assert.Equal(t, models.CHANNEL_WHATSAPP, job.Channel)
	assert.NotEmpty(t, job.Content)
	require.NotNil(t, job.ScheduledAt)
	assert.Equal(t, noon.Add(5*time.Minute).Unix(), job.ScheduledAt.Unix())
}

/************************************************
/**** MARK: FOLLOW-UPS ****/
/************************************************/

func seedLead(t *testing.T, database *gorm.DB, customerID int64, lastContact time.Time, optOut bool) models.Lead {
	t.Helper()
	lead := models.Lead{
		CustomerID:  customerID,
		Name:        "João Santos",
		Phone:       "351912000111",
		Location:    "Porto",
		OptOut:      optOut,
		LastContact: &lastContact,
	}
	require.NoError(t, database.Create(&lead).Error)
	return lead
}

func TestFollowup3dScheduledOnce(t *testing.T) {
	database := newTestDB(t)
	s := newTestScheduler(t, database, fakeChain{})

	settings := seedCustomer(t, database, models.AutomationSettings{
		Enabled:    true,
		Followup3d: true,
		Followup7d: true,
	})

	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	lead := seedLead(t, database, settings.CustomerID, now.AddDate(0, 0, -4), false)

	s.runFollowupPhase(now)

	var jobs []models.MessageJob
	require.NoError(t, database.Find(&jobs).Error)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JOB_TRIGGER_FOLLOWUP_3D, jobs[0].Trigger)
	assert.Equal(t, lead.ID, jobs[0].LeadID)

	// segundo tick sem nada novo: job pendente => lead saltado, sem duplicado
	s.runFollowupPhase(now.Add(time.Minute))
	database.Find(&jobs)
	assert.Len(t, jobs, 1)
}

func TestFollowup7dAfterWindow(t *testing.T) {
	database := newTestDB(t)
	s := newTestScheduler(t, database, fakeChain{})

	settings := seedCustomer(t, database, models.AutomationSettings{
		Enabled:    true,
		Followup7d: true,
	})

	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	seedLead(t, database, settings.CustomerID, now.AddDate(0, 0, -8), false)

	s.runFollowupPhase(now)

	var job models.MessageJob
	require.NoError(t, database.First(&job).Error)
	assert.Equal(t, models.JOB_TRIGGER_FOLLOWUP_7D, job.Trigger)
}

func TestFollowupSkipsOptOut(t *testing.T) {
	database := newTestDB(t)
	s := newTestScheduler(t, database, fakeChain{})

	settings := seedCustomer(t, database, models.AutomationSettings{
		Enabled:    true,
		Followup7d: true,
	})

	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	seedLead(t, database, settings.CustomerID, now.AddDate(0, 0, -10), true)

	s.runFollowupPhase(now)

	var count int
	database.Model(&models.MessageJob{}).Count(&count)
	assert.Equal(t, 0, count)
}

func TestFollowupNeverDuplicatesTrigger(t *testing.T) {
	database := newTestDB(t)
	s := newTestScheduler(t, database, fakeChain{})

	settings := seedCustomer(t, database, models.AutomationSettings{
		Enabled:    true,
		Followup3d: true,
	})

	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	lead := seedLead(t, database, settings.CustomerID, now.AddDate(0, 0, -4), false)

	// um followup_3d já enviado no passado conta como "já criado"
	sentAt := now.AddDate(0, 0, -1)
	require.NoError(t, database.Create(&models.MessageJob{
		CustomerID:  settings.CustomerID,
		LeadID:      lead.ID,
		Channel:     models.CHANNEL_WHATSAPP,
		Status:      models.JOB_STATUS_SENT,
		Trigger:     models.JOB_TRIGGER_FOLLOWUP_3D,
		ScheduledAt: &sentAt,
	}).Error)

	s.runFollowupPhase(now)

	var count int
	database.Model(&models.MessageJob{}).Count(&count)
	assert.Equal(t, 1, count)
}

/************************************************
/**** MARK: DISPATCH ****/
/************************************************/

func seedJob(t *testing.T, database *gorm.DB, customerID, leadID int64, channel string, scheduledAt time.Time) models.MessageJob {
	t.Helper()
	job := models.MessageJob{
		CustomerID:  customerID,
		LeadID:      leadID,
		Channel:     channel,
		Content:     "Olá João",
		Status:      models.JOB_STATUS_PENDING,
		Trigger:     models.JOB_TRIGGER_NEW_LEAD,
		ScheduledAt: &scheduledAt,
	}
	require.NoError(t, database.Create(&job).Error)
	return job
}

func TestDispatchCancelsWhenAutomationDisabled(t *testing.T) {
	database := newTestDB(t)
	s := newTestScheduler(t, database, fakeChain{})

	settings := seedCustomer(t, database, models.AutomationSettings{Enabled: false})
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	lead := seedLead(t, database, settings.CustomerID, now, false)
	job := seedJob(t, database, settings.CustomerID, lead.ID, models.CHANNEL_WHATSAPP, now.Add(-time.Minute))

	s.runDispatchPhase(now)

	var got models.MessageJob
	require.NoError(t, database.First(&got, job.ID).Error)
	assert.Equal(t, models.JOB_STATUS_CANCELLED, got.Status)
	assert.Equal(t, 0, got.Attempts)
}

func TestDispatchQuietHoursLeavesJobUntouched(t *testing.T) {
	database := newTestDB(t)
	s := newTestScheduler(t, database, fakeChain{})

	settings := seedCustomer(t, database, models.AutomationSettings{
		Enabled:         true,
		QuietHoursStart: 21,
		QuietHoursEnd:   9,
	})
	// hora atual 22: dentro das quiet hours
	now := time.Date(2026, 9, 1, 22, 0, 0, 0, time.UTC)
	lead := seedLead(t, database, settings.CustomerID, now, false)
	job := seedJob(t, database, settings.CustomerID, lead.ID, models.CHANNEL_WHATSAPP, now.Add(-time.Hour))

	s.runDispatchPhase(now)

	var got models.MessageJob
	require.NoError(t, database.First(&got, job.ID).Error)
	assert.Equal(t, models.JOB_STATUS_PENDING, got.Status)
	assert.Equal(t, 0, got.Attempts)
	assert.Nil(t, got.SentAt)
}

func TestDispatchWhatsAppFallbackSends(t *testing.T) {
	database := newTestDB(t)
	s := newTestScheduler(t, database, fakeChain{})

	settings := seedCustomer(t, database, models.AutomationSettings{Enabled: true})
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	lead := seedLead(t, database, settings.CustomerID, now.AddDate(0, 0, -1), false)
	job := seedJob(t, database, settings.CustomerID, lead.ID, models.CHANNEL_WHATSAPP, now.Add(-time.Minute))

	s.runDispatchPhase(now)

	var got models.MessageJob
	require.NoError(t, database.First(&got, job.ID).Error)
	assert.Equal(t, models.JOB_STATUS_SENT, got.Status)
	require.NotNil(t, got.SentAt)

	// last_contact atualizado e interação registada
	var gotLead models.Lead
	require.NoError(t, database.First(&gotLead, lead.ID).Error)
	require.NotNil(t, gotLead.LastContact)
	assert.Equal(t, now.Unix(), gotLead.LastContact.Unix())

	var interaction models.Interaction
	require.NoError(t, database.Where("lead_id = ?", lead.ID).First(&interaction).Error)
	assert.Equal(t, models.INTERACTION_TYPE_WHATSAPP, interaction.Type)
	assert.True(t, interaction.Automated)
	assert.Contains(t, interaction.Metadata, "wa.me/351912000111")

	assert.Equal(t, int64(1), UsageTotal(database, settings.CustomerID, models.USAGE_METRIC_WHATSAPP, models.PeriodFor(time.Now())))
}

func TestDispatchRetriesThenFailsTerminally(t *testing.T) {
	database := newTestDB(t)
	s := newTestScheduler(t, database, fakeChain{})

	settings := seedCustomer(t, database, models.AutomationSettings{Enabled: true})
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	// lead sem email: envio por email falha sempre
	lead := models.Lead{CustomerID: settings.CustomerID, Name: "Sem Email"}
	require.NoError(t, database.Create(&lead).Error)
	job := seedJob(t, database, settings.CustomerID, lead.ID, models.CHANNEL_EMAIL, now.Add(-time.Minute))

	for i := 0; i < 3; i++ {
		s.runDispatchPhase(now)
		now = now.Add(6 * time.Minute) // passa do reagendamento de 5 minutos
	}

	var got models.MessageJob
	require.NoError(t, database.First(&got, job.ID).Error)
	assert.Equal(t, models.JOB_STATUS_FAILED, got.Status)
	assert.Equal(t, models.MaxJobAttempts, got.Attempts)
	assert.NotEmpty(t, got.LastError)

	// terminal: mais um tick não mexe em nada
	s.runDispatchPhase(now)
	var after models.MessageJob
	require.NoError(t, database.First(&after, job.ID).Error)
	assert.Equal(t, models.MaxJobAttempts, after.Attempts)
	assert.Equal(t, models.JOB_STATUS_FAILED, after.Status)
}

func TestDispatchCancelsOptedOutLead(t *testing.T) {
	database := newTestDB(t)
	s := newTestScheduler(t, database, fakeChain{})

	settings := seedCustomer(t, database, models.AutomationSettings{Enabled: true})
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	lead := seedLead(t, database, settings.CustomerID, now, true)
	job := seedJob(t, database, settings.CustomerID, lead.ID, models.CHANNEL_WHATSAPP, now.Add(-time.Minute))

	s.runDispatchPhase(now)

	var got models.MessageJob
	require.NoError(t, database.First(&got, job.ID).Error)
	assert.Equal(t, models.JOB_STATUS_CANCELLED, got.Status)
}

/************************************************
/**** MARK: PLAN LIMITS ****/
/************************************************/

func TestDispatchDefersOverPlanLimit(t *testing.T) {
	database := newTestDB(t)
	s := newTestScheduler(t, database, fakeChain{})

	plan := models.Plan{Name: "Base", MonthlyWhatsAppLimit: 1}
	require.NoError(t, database.Create(&plan).Error)

	customer := models.Customer{Name: "Agência", Email: "plano@example.com", PlanID: plan.ID}
	require.NoError(t, database.Create(&customer).Error)
	require.NoError(t, database.Create(&models.AutomationSettings{CustomerID: customer.ID, Enabled: true}).Error)

	// relógio real: o período do ledger tem de bater com o do enforcement
	now := time.Now()
	lead := seedLead(t, database, customer.ID, now, false)

	// período corrente já consumiu o limite
	RecordUsage(database, customer.ID, models.USAGE_METRIC_WHATSAPP, 1, models.USAGE_SOURCE_AUTOMATION)

	job := seedJob(t, database, customer.ID, lead.ID, models.CHANNEL_WHATSAPP, now.Add(-time.Minute))
	s.runDispatchPhase(now)

	var got models.MessageJob
	require.NoError(t, database.First(&got, job.ID).Error)
	assert.Equal(t, models.JOB_STATUS_PENDING, got.Status)
	assert.Equal(t, 0, got.Attempts)
}
