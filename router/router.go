package router

import (
	"log"

	"prospecta/config"
	"prospecta/controllers"
	"prospecta/middleware"
	"prospecta/workers"

	"github.com/gin-gonic/gin"
)

// Initialize wires all routes and middlewares. Autenticação, billing e o
// dashboard vivem em serviços colaboradores; aqui só existe a superfície
// de inspeção/configuração da pipeline.
func Initialize(r *gin.Engine, cfg config.Configuration, sched *workers.Scheduler) {
	_ = cfg

	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "ok")
	})

	api := r.Group("/api")

	// Customers
	api.GET("/customers", Logger(), controllers.GetCustomers)
	api.POST("/customers", Logger(), controllers.CreateCustomer)
	api.DELETE("/customers/:id", Logger(), controllers.DeleteCustomer)

	// Automation settings (upsert)
	api.GET("/customers/:id/automation", Logger(), controllers.GetAutomationSettings)
	api.PUT("/customers/:id/automation", Logger(), controllers.UpsertAutomationSettings)

	// Manual search trigger
	api.POST("/customers/:id/search", Logger(), controllers.RunSearchNow(sched))

	// Usage ledger
	api.GET("/customers/:id/usage", Logger(), controllers.GetUsageSummary)

	// Leads
	api.GET("/leads", Logger(), controllers.GetLeads)
	api.GET("/leads/:id", Logger(), controllers.GetLeadByID)
	api.POST("/leads", Logger(), controllers.CreateLead)
	api.PUT("/leads/:id", Logger(), controllers.UpdateLead)

	// Message jobs
	api.GET("/jobs", Logger(), controllers.GetMessageJobs)

	log.Printf("Routes initialized")
}
