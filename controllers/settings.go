package controllers

import (
	"net/http"

	dbpkg "prospecta/db"
	"prospecta/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

// GET /api/customers/:id/automation
func GetAutomationSettings(c *gin.Context) {
	customerID, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var settings models.AutomationSettings
	if err := db.Where("customer_id = ?", customerID).First(&settings).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			RespondError(c, "automation não configurada", http.StatusNotFound)
			return
		}
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"settings": settings})
}

// PUT /api/customers/:id/automation — upsert: cria na primeira gravação,
// atualiza daí em diante.
func UpsertAutomationSettings(c *gin.Context) {
	customerID, ok := ParamID(c, "id")
	if !ok {
		return
	}

	var body models.AutomationSettings
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var customer models.Customer
	if err := db.First(&customer, customerID).Error; err != nil {
		RespondError(c, "customer não encontrado", http.StatusNotFound)
		return
	}

	var settings models.AutomationSettings
	err := db.Where("customer_id = ?", customerID).First(&settings).Error
	if err != nil && !gorm.IsRecordNotFoundError(err) {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	created := gorm.IsRecordNotFoundError(err)

	body.ID = settings.ID
	body.CustomerID = customerID
	body.LastSearchAt = settings.LastSearchAt
	body.LastSearchSlot = settings.LastSearchSlot
	body.CreatedAt = settings.CreatedAt

	if err := db.Save(&body).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	c.JSON(code, gin.H{"settings": body})
}
