package main

import (
	"context"
	"time"

	"go.elastic.co/apm"
	"go.uber.org/zap"
)

const searchDateFormat = "02.01.2006"

// fetchStartedData searches the hospitalization registry for a patient by
// last name across the configured divisions. Each division is queried
// concurrently; a failed division only loses its own rows. Every returned
// row is tagged with the display name of the division it came from.
func fetchStartedData(ctx context.Context, gateway requester, config *Config, search SearchRequest) []map[string]any {
	span, ctx := apm.StartSpan(ctx, "Search Hospitalizations", "Combined")
	defer span.End()

	dateRange := search.DisDateRange
	if dateRange == "" {
		dateRange = config.SearchPeriodStartDate + " - " + time.Now().Format(searchDateFormat)
	}

	branches := make([]fetchBranch, 0, len(config.Divisions))
	for _, division := range config.Divisions {
		division := division
		branches = append(branches, func(ctx context.Context) (any, error) {
			return searchDivision(ctx, gateway, config, division, search.LastName, dateRange)
		})
	}

	results := safeGather(ctx, branches...)

	// Merge surviving rows in division order
	rows := []map[string]any{}
	for i, result := range results {
		divisionRows, ok := result.([]map[string]any)
		if !ok {
			zapLogger.Warn("division search yielded no rows",
				zap.String("division", config.Divisions[i].Name))
			continue
		}
		rows = append(rows, divisionRows...)
	}

	zapLogger.Info("patient search completed",
		zap.Int("divisions", len(config.Divisions)),
		zap.Int("rows", len(rows)))
	return rows
}

func searchDivision(ctx context.Context, gateway requester, config *Config, division Division, lastName, dateRange string) ([]map[string]any, error) {
	data := map[string]any{
		"SearchFormType":           "EvnPS",
		"Person_Surname":           lastName,
		"PayType_id":               config.SearchPayTypeID,
		"LpuBuilding_cid":          division.Cid,
		"EvnSection_disDate_Range": dateRange,
	}
	// Some buildings are searched per sub-department
	if division.SectionCid != "" {
		data["LpuSection_cid"] = division.SectionCid
	}

	request := GatewayRequest{
		Params: RequestParams{C: "Search", M: "searchData"},
		Data:   data,
	}

	response, err := gateway.makeRequest(ctx, methodPost, request)
	if err != nil {
		return nil, err
	}

	// Result rows live under the "data" key
	list, _ := asList(asRecord(response)["data"])

	rows := make([]map[string]any, 0, len(list))
	for _, item := range list {
		row, ok := item.(map[string]any)
		if !ok {
			continue
		}
		row["_division_name"] = division.Name
		rows = append(rows, row)
	}
	return rows, nil
}
