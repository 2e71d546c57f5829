package main

import (
	"errors"
	"net/http"
	"syscall"

	"github.com/labstack/echo/v4"
)

const (
	// Utilizes a non-standard nginx code
	statusClosedConnection int = 499

	apiKeyHeader = "X-API-KEY"
)

func filterError(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp := c.Response()
		// Process the request
		err := next(c)
		// The below is executed after the request and subsequent middleware
		if err != nil {
			// Check for a broken pipe, modify response status, and create an error
			if errors.Is(err, syscall.EPIPE) {
				logger(c.Request().Context(), err)
				resp.Status = statusClosedConnection
				return nil
			}
		}
		return err
	}
}

// apiKey guards a route group with a static header credential.
func apiKey(config *Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(apiKeyHeader)
			if key != "" && key == config.GatewayAPIKey {
				return next(c)
			}

			logger(c.Request().Context(), errors.New("missing or invalid X-API-KEY header"))
			return c.JSON(http.StatusForbidden, map[string]string{
				"error":   "Authentication Failed",
				"message": "The provided X-API-KEY is missing or invalid.",
				"remedy":  "Please include a valid 'X-API-KEY' header in your request.",
			})
		}
	}
}
