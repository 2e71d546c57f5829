package main

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	appVersion string
)

// api bundles the dependencies the handlers need; no ambient globals.
type api struct {
	config   *Config
	gateway  requester
	notifier *notifier
}

func (a *api) heartbeat(c echo.Context) error {
	// Heartbeat function to assess service status. Immediately return 200
	return c.NoContent(http.StatusOK)
}

func (a *api) ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"ping": "pong"})
}

// gatewayCheck sends a trivial request through the upstream gateway to
// verify connectivity and credentials.
func (a *api) gatewayCheck(c echo.Context) error {
	request := GatewayRequest{
		Params: RequestParams{C: "Common", M: "getCurrentDateTime"},
		Data:   map[string]any{"is_activerulles": "true"},
	}

	response, err := a.gateway.makeRequest(c.Request().Context(), methodPost, request)
	if err != nil {
		logger(c.Request().Context(), err)
		return c.JSON(http.StatusBadGateway, map[string]string{"detail": "Gateway unreachable"})
	}

	return c.JSON(http.StatusOK, response)
}

// searchPatients runs the hospitalization search across all configured
// divisions and returns the tagged rows.
func (a *api) searchPatients(c echo.Context) error {
	ctx := c.Request().Context()

	var search SearchRequest
	if err := c.Bind(&search); err != nil {
		logger(ctx, err)
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "Некорректный запрос"})
	}
	if search.LastName == "" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "Фамилия обязательна"})
	}

	rows := fetchStartedData(ctx, a.gateway, a.config, search)
	if len(rows) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "Данные не найдены"})
	}

	return c.JSON(http.StatusOK, rows)
}

// enrichStartedData enriches one search row into the flat form-field mapping
// for the GIS OMS form.
func (a *api) enrichStartedData(c echo.Context) error {
	ctx := c.Request().Context()

	var enrich EnrichRequest
	if err := c.Bind(&enrich); err != nil {
		logger(ctx, err)
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "Некорректный запрос"})
	}
	if len(enrich.StartedData) == 0 {
		a.notifier.alert(ctx, "Запрос на обогащение без started_data")
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "Не удалось обогатить данные"})
	}

	enriched := enrichData(ctx, a.gateway, a.config, enrich.StartedData)
	if enriched == nil {
		a.notifier.alert(ctx, fmt.Sprintf("Обогащение не удалось для: %v", enrich.StartedData))
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "Не удалось обогатить данные"})
	}

	return c.JSON(http.StatusOK, enriched)
}
