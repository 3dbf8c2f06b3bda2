package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"prospecta/leads"
	"prospecta/models"
	"prospecta/sources"
)

/************************************************
/**** MARK: SEARCH PHASE ****/
/************************************************/

// runSearchPhase corre a pesquisa para cada customer cuja cadência está
// devida neste tick. Falha de um customer não aborta os restantes.
func (s *Scheduler) runSearchPhase(now time.Time) {
	var settingsList []models.AutomationSettings
	if err := s.DB.
		Where("enabled = ? AND search_enabled = ?", true, true).
		Find(&settingsList).Error; err != nil {
		log.Printf("scheduler: search settings query error: %v", err)
		return
	}

	for _, settings := range settingsList {
		if !cadenceDue(settings, now) {
			continue
		}
		if !s.withinPlanLimit(settings.CustomerID, models.USAGE_METRIC_SEARCH, now) {
			log.Printf("scheduler: customer %d over search plan limit, skipping", settings.CustomerID)
			continue
		}

		// watermark antes de correr: mesmo que a pesquisa falhe a meio,
		// não repetimos dentro da mesma hora
		slot := now.Format("2006-01-02-15")
		if err := s.DB.Model(&models.AutomationSettings{}).
			Where("id = ?", settings.ID).
			Updates(map[string]any{"last_search_slot": slot, "last_search_at": now}).Error; err != nil {
			log.Printf("scheduler: watermark update error (customer %d): %v", settings.CustomerID, err)
			continue
		}

		s.RunSearch(now, settings, models.USAGE_SOURCE_AUTOMATION)
	}
}

// RunSearch executa uma pesquisa completa para um customer: adapters por
// (localização × tipo), dedup, classificação, score mínimo, persistência
// e — se configurado — agendamento da primeira mensagem. Também é o
// caminho do disparo manual via API.
func (s *Scheduler) RunSearch(now time.Time, settings models.AutomationSettings, usageSource string) int {
	locations := splitCSV(settings.SearchLocations)
	if len(locations) == 0 {
		locations = []string{""}
	}
	types := splitCSV(settings.SearchPropertyTypes)
	if len(types) == 0 {
		types = []string{models.PROPERTY_TYPE_APARTMENT}
	}

	chain := s.ChainFor(splitCSV(settings.SearchSources))

	var existing []models.Lead
	if err := s.DB.Where("customer_id = ?", settings.CustomerID).Find(&existing).Error; err != nil {
		log.Printf("scheduler: existing leads query error (customer %d): %v", settings.CustomerID, err)
		return 0
	}

	var all []models.Listing
	for _, location := range locations {
		for _, ptype := range types {
			params := sources.SearchParams{
				Location:     strings.TrimSpace(location),
				PropertyType: models.NormalizePropertyType(ptype),
				Operation:    settings.SearchOperation,
				PriceMin:     settings.PriceMin,
				PriceMax:     settings.PriceMax,
				MaxItems:     20,
			}

			// timeout por combinação: um adapter pendurado não mata o tick
			ctx, cancel := context.WithTimeout(context.Background(), s.adapterTimeout())
			listings := chain.Search(ctx, params)
			cancel()

			all = append(all, listings...)
		}
	}

	RecordUsage(s.DB, settings.CustomerID, models.USAGE_METRIC_SEARCH, 1, usageSource)

	accepted := 0
	for _, listing := range all {
		if leads.IsDuplicate(listing, existing) {
			continue
		}
		lead, ok := s.analyzeListing(settings, listing)
		if !ok {
			continue
		}
		if err := s.DB.Create(&lead).Error; err != nil {
			log.Printf("scheduler: create lead error (customer %d): %v", settings.CustomerID, err)
			continue
		}
		existing = append(existing, lead)
		accepted++

		s.appendDiscovery(lead, listing)

		if settings.AutoMessageNewLead && !lead.OptOut {
			s.scheduleMessage(now, settings, lead, models.JOB_TRIGGER_NEW_LEAD)
		}
	}

	log.Printf("scheduler: search done (customer %d): %d listings, %d accepted",
		settings.CustomerID, len(all), accepted)
	return accepted
}

// analyzeListing classifica o listing e aplica o score mínimo do customer.
func (s *Scheduler) analyzeListing(settings models.AutomationSettings, listing models.Listing) (models.Lead, bool) {
	lead := models.FromListing(settings.CustomerID, listing)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	verdict := s.Classifier.Classify(ctx, lead)

	RecordUsage(s.DB, settings.CustomerID, models.USAGE_METRIC_LEAD_ANALYZED, 1, models.USAGE_SOURCE_AUTOMATION)

	if verdict.Score < settings.MinScore {
		return models.Lead{}, false
	}

	score := verdict.Score
	lead.AIScore = &score
	lead.AIReasoning = verdict.Reasoning
	lead.Status = verdict.Status
	return lead, true
}

func (s *Scheduler) appendDiscovery(lead models.Lead, listing models.Listing) {
	meta, _ := json.Marshal(map[string]any{
		"automated":  true,
		"source":     listing.Source,
		"source_url": listing.SourceURL,
	})
	entry := models.Interaction{
		LeadID:     lead.ID,
		CustomerID: lead.CustomerID,
		Type:       models.INTERACTION_TYPE_NOTE,
		Content:    fmt.Sprintf("Lead captado automaticamente via %s (%s)", listing.Source, listing.Location),
		Metadata:   string(meta),
		Automated:  true,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		log.Printf("scheduler: discovery interaction error (lead %d): %v", lead.ID, err)
	}
}

func (s *Scheduler) adapterTimeout() time.Duration {
	if s.AdapterTimeout <= 0 {
		return 30 * time.Second
	}
	return s.AdapterTimeout
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
