package models

import "time"

/************************************************
/**** MARK: INTERACTION TYPES ****/
/************************************************/
const INTERACTION_TYPE_NOTE = "note"
const INTERACTION_TYPE_WHATSAPP = "whatsapp"
const INTERACTION_TYPE_EMAIL = "email"
const INTERACTION_TYPE_CALL = "call"
const INTERACTION_TYPE_STATUS_CHANGE = "status_change"

// Interaction é o histórico append-only de um lead. Nunca é alterado nem
// apagado: toda ação automática (lead captado, mensagem enviada, mudança
// de status) gera uma entrada nova.
type Interaction struct {
	ID         int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	LeadID     int64      `gorm:"not null;index" json:"lead_id"`
	CustomerID int64      `gorm:"not null;default:0;index" json:"customer_id"`
	Type       string     `gorm:"not null;default:'note'" json:"type"`
	Content    string     `gorm:"type:text" json:"content"`
	Metadata   string     `gorm:"type:text" json:"metadata"` // JSON livre (ex: {"automated":true})
	Automated  bool       `gorm:"not null;default:false" json:"automated"`
	CreatedAt  *time.Time `json:"created_at"`
}
