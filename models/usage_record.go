package models

import "time"

/************************************************
/**** MARK: USAGE METRICS ****/
/************************************************/
const USAGE_METRIC_WHATSAPP = "whatsapp_message"
const USAGE_METRIC_EMAIL = "email_message"
const USAGE_METRIC_LEAD_ANALYZED = "lead_analyzed"
const USAGE_METRIC_AI_TOKENS = "ai_tokens"
const USAGE_METRIC_SEARCH = "search_run"

/************************************************
/**** MARK: USAGE SOURCES ****/
/************************************************/
const USAGE_SOURCE_AUTOMATION = "automation"
const USAGE_SOURCE_MANUAL = "manual"

// UsageRecord é o ledger append-only de consumo medido por customer e
// período de billing (YYYY-MM). Nunca é atualizado in place; relatórios
// e enforcement de limite de plano somam as linhas do período.
type UsageRecord struct {
	ID         int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CustomerID int64      `gorm:"not null;index" json:"customer_id"`
	Metric     string     `gorm:"not null;index" json:"metric"`
	Quantity   int64      `gorm:"not null;default:1" json:"quantity"`
	Period     string     `gorm:"not null;index" json:"period"` // "2006-01"
	Source     string     `gorm:"not null;default:'automation'" json:"source"`
	CreatedAt  *time.Time `json:"created_at"`
}

// PeriodFor formata o período de billing de um instante.
func PeriodFor(t time.Time) string {
	return t.Format("2006-01")
}
