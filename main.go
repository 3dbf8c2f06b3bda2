package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"prospecta/config"
	"prospecta/db"
	"prospecta/router"
	"prospecta/workers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// =====================
// ENV esperadas (todas opcionais — a ausência ativa o fallback documentado)
// =====================
//
// OpenAI
// - OPENAI_API_KEY
// - OPENAI_MODEL                  (ex: gpt-4.1-mini)
//
// WhatsApp Cloud API (Meta)
// - WHATSAPP_ACCESS_TOKEN
// - WHATSAPP_PHONE_NUMBER_ID
//
// Email transacional
// - EMAIL_API_KEY
// - EMAIL_FROM
//
// Fontes de listings
// - IDEALISTA_API_KEY
// - OLX_API_KEY
// - CASAFARI_API_KEY
// - SCRAPER_SEARCH_URL            (+ SCRAPER_*_SELECTOR)
//
// =====================

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.json"
	}
	cfg := config.Get(configPath)
	db.SetConfigurations(cfg)

	database, err := db.Connect()
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	sched := workers.NewScheduler(database, cfg)
	sched.Start()
	defer sched.Stop()

	r := gin.New()
	r.Use(db.SetDBtoContext(database))
	router.Initialize(r, cfg, sched)

	go func() {
		log.Printf("Prospecta listening on :%s", cfg.ApiPort)
		if err := r.Run(":" + cfg.ApiPort); err != nil {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("shutting down")
}
