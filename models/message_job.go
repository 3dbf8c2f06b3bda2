package models

import "time"

/************************************************
/**** MARK: JOB STATUS ****/
/************************************************/
const JOB_STATUS_PENDING = "pending"
const JOB_STATUS_SENT = "sent"
const JOB_STATUS_FAILED = "failed"
const JOB_STATUS_CANCELLED = "cancelled"

/************************************************
/**** MARK: JOB TRIGGERS ****/
/************************************************/
const JOB_TRIGGER_NEW_LEAD = "new_lead"
const JOB_TRIGGER_FOLLOWUP_3D = "followup_3d"
const JOB_TRIGGER_FOLLOWUP_7D = "followup_7d"
const JOB_TRIGGER_STATUS_CHANGE = "status_change"
const JOB_TRIGGER_MANUAL = "manual"

/************************************************
/**** MARK: CHANNELS ****/
/************************************************/
const CHANNEL_WHATSAPP = "whatsapp"
const CHANNEL_EMAIL = "email"

// MaxJobAttempts é o orçamento de tentativas antes do job ficar failed terminal.
const MaxJobAttempts = 3

// MessageJob representa uma mensagem outbound agendada ou tentada.
// Máquina de estados: pending -> sent | failed | cancelled.
// Jobs terminais nunca voltam para a fila (queries filtram por status).
type MessageJob struct {
	ID         int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CustomerID int64      `gorm:"not null;index" json:"customer_id"`
	LeadID     int64      `gorm:"not null;index" json:"lead_id"`
	Channel    string     `gorm:"not null;default:'whatsapp'" json:"channel"`
	Content    string     `gorm:"type:text" json:"content"`
	Subject    string     `gorm:"default:''" json:"subject"` // só email
	Status     string     `gorm:"not null;default:'pending';index" json:"status"`
	// coluna trigger_type porque TRIGGER é keyword SQL
	Trigger    string     `gorm:"column:trigger_type;not null;default:'manual';index" json:"trigger"`

	ScheduledAt *time.Time `gorm:"index" json:"scheduled_at"`
	SentAt      *time.Time `json:"sent_at"`
	Attempts    int        `gorm:"not null;default:0" json:"attempts"`
	LastError   string     `gorm:"type:text" json:"last_error"`

	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// Terminal reports whether the job reached a final state.
func (j MessageJob) Terminal() bool {
	return j.Status == JOB_STATUS_SENT || j.Status == JOB_STATUS_FAILED || j.Status == JOB_STATUS_CANCELLED
}
