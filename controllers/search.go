package controllers

import (
	"net/http"
	"time"

	dbpkg "prospecta/db"
	"prospecta/models"
	"prospecta/workers"

	"github.com/gin-gonic/gin"
)

// RunSearchNow devolve o handler de disparo manual de pesquisa. Recebe o
// scheduler por injeção no arranque — nada de singleton de módulo.
// POST /api/customers/:id/search
func RunSearchNow(sched *workers.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
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
			RespondError(c, "automation não configurada para este customer", http.StatusNotFound)
			return
		}

		accepted := sched.RunSearch(time.Now(), settings, models.USAGE_SOURCE_MANUAL)

		RespondSuccess(c, gin.H{"accepted_leads": accepted})
	}
}
