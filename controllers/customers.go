package controllers

import (
	"net/http"

	dbpkg "prospecta/db"
	"prospecta/models"

	"github.com/gin-gonic/gin"
)

// GET /api/customers
func GetCustomers(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var customers []models.Customer
	if err := db.Order("id asc").Find(&customers).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"customers": customers})
}

// POST /api/customers
func CreateCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.Bind(&customer); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if missing := customer.MissingFields(); missing != "" {
		RespondError(c, missing+" é obrigatório", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	if err := db.Create(&customer).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"customer": customer})
}

// DELETE /api/customers/:id — cascade manual: settings, jobs pendentes.
// Leads e histórico ficam (registros legados, customer_id preservado).
func DeleteCustomer(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var customer models.Customer
	if err := db.First(&customer, id).Error; err != nil {
		RespondError(c, "customer não encontrado", http.StatusNotFound)
		return
	}

	db.Where("customer_id = ?", id).Delete(&models.AutomationSettings{})
	db.Model(&models.MessageJob{}).
		Where("customer_id = ? AND status = ?", id, models.JOB_STATUS_PENDING).
		Update("status", models.JOB_STATUS_CANCELLED)

	if err := db.Delete(&customer).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"deleted": id})
}
