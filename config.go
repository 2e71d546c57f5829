package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env"
)

// Config holds every runtime setting. It is built once in main and passed
// explicitly to the components that need it.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8000"`

	GatewayURL      string `env:"GATEWAY_URL,required"`
	GatewayAPIKey   string `env:"GATEWAY_API_KEY,required"`
	GatewayEndpoint string `env:"GATEWAY_REQUEST_ENDPOINT" envDefault:"/gateway"`
	RequestTimeout  int    `env:"REQUEST_TIMEOUT" envDefault:"30"`

	CORSAllowRegex string `env:"CORS_ALLOW_REGEX" envDefault:"^chrome-extension://[a-z]{32}$"`

	// Business-rule constants for the GIS OMS form
	MedicalCareTypeCode   string `env:"MEDICAL_CARE_TYPE_CODE" envDefault:"31"`
	SearchPeriodStartDate string `env:"SEARCH_PERIOD_START_DATE" envDefault:"01.01.2025"`
	SearchPayTypeID       string `env:"SEARCH_PAY_TYPE_ID,required"`

	DivisionsFile string `env:"DIVISIONS_FILE" envDefault:"divisions.json"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `env:"TELEGRAM_CHAT_ID"`

	Divisions []Division
}

// Division is one hospital building/department the patient search fans out
// across. SectionCid is optional and scopes the search to a sub-department
// within the building.
type Division struct {
	Cid        string `json:"cid"`
	Name       string `json:"name"`
	SectionCid string `json:"section_cid,omitempty"`
}

func readConfig() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("error parsing environment: %s", err)
	}

	divisions, err := readDivisions(config.DivisionsFile)
	if err != nil {
		return nil, err
	}
	config.Divisions = divisions

	return config, nil
}

func readDivisions(path string) ([]Division, error) {
	// Get division list
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading divisions file:%s", err)
	}

	// Parse JSON data
	var divisions []Division
	if err := json.Unmarshal(data, &divisions); err != nil {
		return nil, fmt.Errorf("error parsing JSON:%s", err)
	}

	if len(divisions) == 0 {
		return nil, fmt.Errorf("divisions file %s contains no entries", path)
	}

	return divisions, nil
}
