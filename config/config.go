package config

import (
	"encoding/json"
	"log"
	"os"
)

type Configuration struct {
	ApiPort string `json:"api_port"`
	LogPath string `json:"log_path"`

	Database string `json:"database"` // "sqlite3" ou "postgres"
	DbHost   string `json:"db_host"`
	DbPort   string `json:"db_port"`
	DbUser   string `json:"db_user"`
	DbName   string `json:"db_name"`
	DbPass   string `json:"db_pass"`

	Automation struct {
		TickSeconds        int `json:"tick_seconds"`
		AdapterTimeoutSecs int `json:"adapter_timeout_seconds"`
		SendDelayMinutes   int `json:"send_delay_minutes"`
	} `json:"automation"`
}

func Get(path string) Configuration {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	var c Configuration
	if err := json.Unmarshal(b, &c); err != nil {
		log.Fatal(err)
	}

	// defaults (pra evitar nil/zero chato)
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/server.log"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.Automation.TickSeconds <= 0 {
		c.Automation.TickSeconds = 60
	}
	if c.Automation.AdapterTimeoutSecs <= 0 {
		c.Automation.AdapterTimeoutSecs = 30
	}
	if c.Automation.SendDelayMinutes <= 0 {
		c.Automation.SendDelayMinutes = 5
	}

	return c
}
