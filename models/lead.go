package models

import (
	"time"

	"github.com/google/uuid"
)

/************************************************
/**** MARK: LEAD STATUS (temperatura) ****/
/************************************************/
const LEAD_STATUS_HOT = "quente"
const LEAD_STATUS_WARM = "morno"
const LEAD_STATUS_COLD = "frio"

/************************************************
/**** MARK: LEAD QUALIFICATION (pipeline de visita) ****/
/************************************************/
const LEAD_QUALIFICATION_VISITED = "visited"
const LEAD_QUALIFICATION_PENDING_VISIT = "pending_visit"
const LEAD_QUALIFICATION_NO_RESPONSE = "no_response"
const LEAD_QUALIFICATION_OWN_PROPERTY = "own_property"

/************************************************
/**** MARK: OWNER TYPES ****/
/************************************************/
const OWNER_TYPE_PRIVATE = "private"
const OWNER_TYPE_PROFESSIONAL = "professional"

// Lead representa um potencial vendedor ligado a um imóvel, pertencente a um Customer.
// CustomerID 0 significa registro legado/global (importações antigas).
type Lead struct {
	ID         int64  `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	ExternalID string `gorm:"column:external_id;unique_index" json:"external_id"`
	CustomerID int64  `gorm:"not null;default:0;index" json:"customer_id"`

	Name         string   `gorm:"not null;default:''" json:"name" form:"name"`
	Title        string   `gorm:"default:''" json:"title" form:"title"`
	Price        float64  `gorm:"default:0" json:"price" form:"price"`
	PriceDisplay string   `gorm:"default:''" json:"price_display" form:"price_display"`
	Location     string   `gorm:"default:'';index" json:"location" form:"location"`
	PropertyType string   `gorm:"not null;default:'other'" json:"property_type" form:"property_type"`
	Bedrooms     *int     `json:"bedrooms" form:"bedrooms"`
	Bathrooms    *int     `json:"bathrooms" form:"bathrooms"`
	Area         *float64 `json:"area" form:"area"`
	Phone        string   `gorm:"default:'';index" json:"phone" form:"phone"`
	Email        string   `gorm:"default:'';index" json:"email" form:"email"`
	Description  string   `gorm:"type:text" json:"description" form:"description"`

	Status        string `gorm:"not null;default:'frio';index" json:"status" form:"status"`
	Qualification string `gorm:"not null;default:'pending_visit'" json:"qualification" form:"qualification"`
	OwnerType     string `gorm:"not null;default:'private'" json:"owner_type" form:"owner_type"`

	AIScore     *int   `gorm:"column:ai_score" json:"ai_score"`
	AIReasoning string `gorm:"column:ai_reasoning;type:text" json:"ai_reasoning"`

	OptOut    bool   `gorm:"not null;default:false" json:"opt_out" form:"opt_out"`
	Source    string `gorm:"default:''" json:"source"`
	SourceURL string `gorm:"column:source_url;default:'';index" json:"source_url"`

	LastContact *time.Time `gorm:"column:last_contact" json:"last_contact"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// BeforeSave valida e normaliza os enums uma única vez, na fronteira de persistência.
// Qualquer valor fora do enum cai no default canônico em vez de estourar erro:
// leads manuais e importados continuam funcionando sem score.
func (l *Lead) BeforeSave() error {
	if l.ExternalID == "" {
		l.ExternalID = uuid.NewString()
	}
	if !IsValidLeadStatus(l.Status) {
		l.Status = LEAD_STATUS_COLD
	}
	if !IsValidQualification(l.Qualification) {
		l.Qualification = LEAD_QUALIFICATION_PENDING_VISIT
	}
	if l.OwnerType != OWNER_TYPE_PRIVATE && l.OwnerType != OWNER_TYPE_PROFESSIONAL {
		l.OwnerType = OWNER_TYPE_PRIVATE
	}
	if !IsValidPropertyType(l.PropertyType) {
		l.PropertyType = PROPERTY_TYPE_OTHER
	}
	if l.AIScore != nil {
		if *l.AIScore < 0 {
			*l.AIScore = 0
		}
		if *l.AIScore > 100 {
			*l.AIScore = 100
		}
	}
	return nil
}

func IsValidLeadStatus(s string) bool {
	return s == LEAD_STATUS_HOT || s == LEAD_STATUS_WARM || s == LEAD_STATUS_COLD
}

func IsValidQualification(q string) bool {
	switch q {
	case LEAD_QUALIFICATION_VISITED, LEAD_QUALIFICATION_PENDING_VISIT,
		LEAD_QUALIFICATION_NO_RESPONSE, LEAD_QUALIFICATION_OWN_PROPERTY:
		return true
	}
	return false
}

// StatusForScore aplica a tabela de thresholds usada tanto pelo classifier
// quanto pelo fallback: >=75 quente, >=40 morno, abaixo frio.
func StatusForScore(score int) string {
	switch {
	case score >= 75:
		return LEAD_STATUS_HOT
	case score >= 40:
		return LEAD_STATUS_WARM
	default:
		return LEAD_STATUS_COLD
	}
}

// FromListing cria um Lead a partir de um Listing aceito pela pipeline.
func FromListing(customerID int64, lst Listing) Lead {
	name := lst.Title
	if name == "" {
		name = "Proprietário (" + lst.Source + ")"
	}
	return Lead{
		CustomerID:   customerID,
		Name:         name,
		Title:        lst.Title,
		Price:        lst.Price,
		PriceDisplay: lst.PriceDisplay,
		Location:     lst.Location,
		PropertyType: lst.PropertyType,
		Bedrooms:     lst.Bedrooms,
		Bathrooms:    lst.Bathrooms,
		Area:         lst.Area,
		Phone:        lst.Phone,
		Email:        lst.Email,
		Description:  lst.Description,
		Status:       LEAD_STATUS_COLD,
		Source:       lst.Source,
		SourceURL:    lst.SourceURL,
	}
}
