package models

import "time"

// Plan representa um plano comercial com limites mensais de consumo.
// Os limites são comparados contra o UsageRecord do período corrente;
// 0 significa "sem limite" (ou limite não configurado).
type Plan struct {
	ID          int64  `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Name        string `gorm:"not null;unique" json:"name" form:"name"`
	Description string `gorm:"type:text" json:"description" form:"description"`
	PriceCents  int64  `gorm:"not null;default:0" json:"price_cents" form:"price_cents"`

	MonthlyWhatsAppLimit int64 `gorm:"not null;default:0" json:"monthly_whatsapp_limit" form:"monthly_whatsapp_limit"`
	MonthlyEmailLimit    int64 `gorm:"not null;default:0" json:"monthly_email_limit" form:"monthly_email_limit"`
	MonthlySearchLimit   int64 `gorm:"not null;default:0" json:"monthly_search_limit" form:"monthly_search_limit"`

	Currency  string     `gorm:"not null;default:'EUR'" json:"currency" form:"currency"`
	Interval  string     `gorm:"not null;default:'monthly'" json:"interval" form:"interval"` // monthly|yearly|one_time
	IsActive  bool       `gorm:"not null;default:true" json:"is_active" form:"is_active"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// LimitFor devolve o limite mensal do plano para uma métrica de uso.
// Métricas sem limite configurável retornam 0 (ilimitado).
func (p Plan) LimitFor(metric string) int64 {
	switch metric {
	case USAGE_METRIC_WHATSAPP:
		return p.MonthlyWhatsAppLimit
	case USAGE_METRIC_EMAIL:
		return p.MonthlyEmailLimit
	case USAGE_METRIC_SEARCH:
		return p.MonthlySearchLimit
	}
	return 0
}
