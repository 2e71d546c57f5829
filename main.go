package main

import (
	"log"
	"net/http"
	"os"
	"regexp"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	appVersion = os.Getenv("APP_VERSION")

	// Read runtime settings and the division table
	config, err := readConfig()
	if err != nil {
		log.Fatal(err)
	}

	corsRegex, err := regexp.Compile(config.CORSAllowRegex)
	if err != nil {
		log.Fatalf("Failed to compile CORS_ALLOW_REGEX: %v", err)
	}

	// Create new Echo object
	e := echo.New()

	// Add basic middleware to log all requests
	e.Use(middleware.Logger())

	// Configure elastic apm logging
	initAPM(e)

	// Sets CORS headers: only the browser extension origin may call, and only
	// with the methods the extension uses
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return corsRegex.MatchString(origin), nil
		},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderContentType, apiKeyHeader},
	}))

	// Middleware to provide more control over response status for APM transactions
	// This must go after the Elastic APM middleware
	e.Use(filterError)

	a := &api{
		config:   config,
		gateway:  newGatewayClient(config),
		notifier: newNotifier(config),
	}

	// Adds a heartbeat handler
	e.GET("/heartbeat", a.heartbeat)

	// Health endpoints require the static API key
	healthGroup := e.Group("/health", apiKey(config))
	healthGroup.GET("/ping", a.ping)
	healthGroup.POST("/gateway", a.gatewayCheck)

	// Extension endpoints
	extensionGroup := e.Group("/extension", apiKey(config))
	extensionGroup.POST("/search", a.searchPatients)
	extensionGroup.POST("/enrich-data", a.enrichStartedData)

	// Start server
	e.Logger.Fatal(e.Start(config.ListenAddr))
}
