package controllers

import (
	"net/http"

	dbpkg "prospecta/db"
	"prospecta/models"

	"github.com/gin-gonic/gin"
)

// GET /api/jobs?customer_id=&status= — jobs failed ficam queryable com
// last_error para inspeção de operador.
func GetMessageJobs(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	query := db.Order("scheduled_at asc, id asc")
	if customerID := QueryID(c, "customer_id"); customerID > 0 {
		query = query.Where("customer_id = ?", customerID)
	}
	if status := c.Query("status"); status != "" {
		switch status {
		case models.JOB_STATUS_PENDING, models.JOB_STATUS_SENT, models.JOB_STATUS_FAILED, models.JOB_STATUS_CANCELLED:
		default:
			RespondError(c, "status inválido", http.StatusBadRequest)
			return
		}
		query = query.Where("status = ?", status)
	}

	var jobs []models.MessageJob
	if err := query.Limit(200).Find(&jobs).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"jobs": jobs})
}
