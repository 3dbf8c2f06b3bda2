package workers

import (
	"log"
	"time"

	"prospecta/models"

	"github.com/jinzhu/gorm"
)

// RecordUsage acrescenta uma linha ao ledger de consumo do período
// corrente. O ledger é append-only: relatórios e enforcement somam linhas.
func RecordUsage(db *gorm.DB, customerID int64, metric string, quantity int64, source string) {
	rec := models.UsageRecord{
		CustomerID: customerID,
		Metric:     metric,
		Quantity:   quantity,
		Period:     models.PeriodFor(time.Now()),
		Source:     source,
	}
	if err := db.Create(&rec).Error; err != nil {
		log.Printf("usage: record error (customer %d, %s): %v", customerID, metric, err)
	}
}

// UsageTotal soma o consumo de uma métrica num período.
func UsageTotal(db *gorm.DB, customerID int64, metric, period string) int64 {
	var total struct {
		Total int64
	}
	db.Model(&models.UsageRecord{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("customer_id = ? AND metric = ? AND period = ?", customerID, metric, period).
		Scan(&total)
	return total.Total
}

// withinPlanLimit compara o consumo do período com o limite do plano do
// customer. Sem plano, ou limite 0, significa ilimitado.
func (s *Scheduler) withinPlanLimit(customerID int64, metric string, now time.Time) bool {
	var customer models.Customer
	if err := s.DB.First(&customer, customerID).Error; err != nil {
		return true
	}
	if customer.PlanID == 0 {
		return true
	}
	var plan models.Plan
	if err := s.DB.First(&plan, customer.PlanID).Error; err != nil {
		return true
	}
	limit := plan.LimitFor(metric)
	if limit <= 0 {
		return true
	}
	used := UsageTotal(s.DB, customerID, metric, models.PeriodFor(now))
	return used < limit
}
