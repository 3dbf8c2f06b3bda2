package controllers

import (
	"net/http"
	"time"

	dbpkg "prospecta/db"
	"prospecta/models"

	"github.com/gin-gonic/gin"
)

type usageRow struct {
	Metric string `json:"metric"`
	Total  int64  `json:"total"`
}

// GET /api/customers/:id/usage?period=2006-01 — soma o ledger do período
// (default: mês corrente).
func GetUsageSummary(c *gin.Context) {
	customerID, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	period := c.Query("period")
	if period == "" {
		period = models.PeriodFor(time.Now())
	}

	var rows []usageRow
	if err := db.Model(&models.UsageRecord{}).
		Select("metric, COALESCE(SUM(quantity), 0) as total").
		Where("customer_id = ? AND period = ?", customerID, period).
		Group("metric").
		Scan(&rows).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"period": period, "usage": rows})
}
