package models

import "time"

// Customer representa uma conta (agência/consultor) dona de leads e automações.
// Autenticação e billing ficam fora deste serviço; aqui só importa a titularidade.
type Customer struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Name      string     `gorm:"not null" json:"name" form:"name"`
	Email     string     `gorm:"not null;unique" json:"email" form:"email"`
	Phone     string     `gorm:"default:''" json:"phone" form:"phone"`
	Company   string     `gorm:"default:''" json:"company" form:"company"`
	PlanID    int64      `gorm:"not null;default:0;index" json:"plan_id" form:"plan_id"`
	Active    bool       `gorm:"not null;default:true" json:"active" form:"active"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func (c Customer) MissingFields() string {
	if c.Name == "" {
		return "name"
	} else if c.Email == "" {
		return "email"
	}
	return ""
}
