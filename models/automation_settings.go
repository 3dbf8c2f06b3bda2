package models

import "time"

/************************************************
/**** MARK: SEARCH CADENCE ****/
/************************************************/
const SEARCH_CADENCE_HOURLY = "hourly"
const SEARCH_CADENCE_DAILY = "daily"
const SEARCH_CADENCE_TWICE_DAILY = "twice_daily"
const SEARCH_CADENCE_WEEKLY = "weekly"

// AutomationSettings guarda a configuração de automação de um customer.
// É criado preguiçosamente no primeiro save (upsert) e apagado junto com
// o customer. Uma linha por customer.
type AutomationSettings struct {
	ID         int64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CustomerID int64 `gorm:"not null;unique_index" json:"customer_id"`

	Enabled bool `gorm:"not null;default:false" json:"enabled" form:"enabled"`

	AutoMessageNewLead bool `gorm:"not null;default:false" json:"auto_message_new_lead" form:"auto_message_new_lead"`
	Followup3d         bool `gorm:"not null;default:false" json:"followup_3d" form:"followup_3d"`
	Followup7d         bool `gorm:"not null;default:false" json:"followup_7d" form:"followup_7d"`

	PreferredChannel string `gorm:"not null;default:'whatsapp'" json:"preferred_channel" form:"preferred_channel"`

	// Quiet hours em hora do dia, com wrap-around (start=21 end=9 => 21:00-09:00).
	QuietHoursStart int `gorm:"not null;default:21" json:"quiet_hours_start" form:"quiet_hours_start"`
	QuietHoursEnd   int `gorm:"not null;default:9" json:"quiet_hours_end" form:"quiet_hours_end"`

	SearchEnabled       bool    `gorm:"not null;default:false" json:"search_enabled" form:"search_enabled"`
	SearchSources       string  `gorm:"default:'idealista,olx,casafari'" json:"search_sources" form:"search_sources"`
	SearchLocations     string  `gorm:"default:''" json:"search_locations" form:"search_locations"`
	SearchPropertyTypes string  `gorm:"default:''" json:"search_property_types" form:"search_property_types"`
	SearchOperation     string  `gorm:"not null;default:'sale'" json:"search_operation" form:"search_operation"`
	PriceMin            float64 `gorm:"not null;default:0" json:"price_min" form:"price_min"`
	PriceMax            float64 `gorm:"not null;default:0" json:"price_max" form:"price_max"`
	AreaMin             float64 `gorm:"not null;default:0" json:"area_min" form:"area_min"`
	AreaMax             float64 `gorm:"not null;default:0" json:"area_max" form:"area_max"`
	SearchCadence       string  `gorm:"not null;default:'daily'" json:"search_cadence" form:"search_cadence"`
	MinScore            int     `gorm:"not null;default:40" json:"min_score" form:"min_score"`

	LastSearchAt *time.Time `gorm:"column:last_search_at" json:"last_search_at"`
	// Watermark de disparo com granularidade data+hora ("2006-01-02-15").
	// É a fonte de verdade contra disparo duplo dentro da mesma hora.
	LastSearchSlot string `gorm:"column:last_search_slot;default:''" json:"last_search_slot"`

	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// BeforeSave aplica defaults canônicos na fronteira de persistência.
func (s *AutomationSettings) BeforeSave() error {
	if s.PreferredChannel != CHANNEL_WHATSAPP && s.PreferredChannel != CHANNEL_EMAIL {
		s.PreferredChannel = CHANNEL_WHATSAPP
	}
	switch s.SearchCadence {
	case SEARCH_CADENCE_HOURLY, SEARCH_CADENCE_DAILY, SEARCH_CADENCE_TWICE_DAILY, SEARCH_CADENCE_WEEKLY:
	default:
		s.SearchCadence = SEARCH_CADENCE_DAILY
	}
	if s.SearchOperation != OPERATION_SALE && s.SearchOperation != OPERATION_RENT {
		s.SearchOperation = OPERATION_SALE
	}
	if s.QuietHoursStart < 0 || s.QuietHoursStart > 23 {
		s.QuietHoursStart = 21
	}
	if s.QuietHoursEnd < 0 || s.QuietHoursEnd > 23 {
		s.QuietHoursEnd = 9
	}
	if s.MinScore < 0 {
		s.MinScore = 0
	}
	if s.MinScore > 100 {
		s.MinScore = 100
	}
	return nil
}
