package controllers

import (
	"encoding/json"
	"net/http"

	dbpkg "prospecta/db"
	"prospecta/models"

	"github.com/gin-gonic/gin"
)

// GET /api/leads?customer_id=&status=
func GetLeads(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	query := db.Order("created_at desc")
	if customerID := QueryID(c, "customer_id"); customerID > 0 {
		query = query.Where("customer_id = ?", customerID)
	}
	if status := c.Query("status"); status != "" {
		if !models.IsValidLeadStatus(status) {
			RespondError(c, "status inválido", http.StatusBadRequest)
			return
		}
		query = query.Where("status = ?", status)
	}

	var leads []models.Lead
	if err := query.Find(&leads).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"leads": leads})
}

// GET /api/leads/:id
func GetLeadByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var lead models.Lead
	if err := db.First(&lead, id).Error; err != nil {
		RespondError(c, "lead não encontrado", http.StatusNotFound)
		return
	}

	var history []models.Interaction
	db.Where("lead_id = ?", lead.ID).Order("created_at asc, id asc").Find(&history)

	RespondSuccess(c, gin.H{"lead": lead, "history": history})
}

// POST /api/leads (criação manual; sem score o status default é frio)
func CreateLead(c *gin.Context) {
	var lead models.Lead
	if err := c.Bind(&lead); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if lead.Name == "" && lead.Title == "" {
		RespondError(c, "name ou title é obrigatório", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	lead.Source = "manual"
	if err := db.Create(&lead).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"lead": lead})
}

type UpdateLeadRequest struct {
	Status        string `json:"status" form:"status"`
	Qualification string `json:"qualification" form:"qualification"`
	OwnerType     string `json:"owner_type" form:"owner_type"`
	OptOut        *bool  `json:"opt_out" form:"opt_out"`
}

// PUT /api/leads/:id — status/qualification/opt-out; mudança de status
// manual entra no histórico como status_change.
func UpdateLead(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	var body UpdateLeadRequest
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var lead models.Lead
	if err := db.First(&lead, id).Error; err != nil {
		RespondError(c, "lead não encontrado", http.StatusNotFound)
		return
	}

	statusChanged := false
	previousStatus := lead.Status

	if body.Status != "" {
		if !models.IsValidLeadStatus(body.Status) {
			RespondError(c, "status inválido", http.StatusBadRequest)
			return
		}
		statusChanged = body.Status != lead.Status
		lead.Status = body.Status
	}
	if body.Qualification != "" {
		if !models.IsValidQualification(body.Qualification) {
			RespondError(c, "qualification inválida", http.StatusBadRequest)
			return
		}
		lead.Qualification = body.Qualification
	}
	if body.OwnerType != "" {
		lead.OwnerType = body.OwnerType
	}
	if body.OptOut != nil {
		lead.OptOut = *body.OptOut
	}

	if err := db.Save(&lead).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	if statusChanged {
		meta, _ := json.Marshal(map[string]any{"from": previousStatus, "to": lead.Status})
		db.Create(&models.Interaction{
			LeadID:     lead.ID,
			CustomerID: lead.CustomerID,
			Type:       models.INTERACTION_TYPE_STATUS_CHANGE,
			Content:    "Status alterado de " + previousStatus + " para " + lead.Status,
			Metadata:   string(meta),
		})
	}

	RespondSuccess(c, gin.H{"lead": lead})
}
