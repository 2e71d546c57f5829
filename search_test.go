package main

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func searchConfig() *Config {
	return &Config{
		SearchPayTypeID:       "42",
		SearchPeriodStartDate: "01.01.2025",
		Divisions: []Division{
			{Cid: "110", Name: "Центральный корпус"},
			{Cid: "120", Name: "Северный корпус"},
			{Cid: "130", Name: "Дневной стационар", SectionCid: "1301"},
		},
	}
}

func divisionHandler(failCid string) func(GatewayRequest) (any, error) {
	return func(request GatewayRequest) (any, error) {
		cid, _ := request.Data["LpuBuilding_cid"].(string)
		if cid == failCid {
			return nil, errors.New("division upstream failed")
		}
		return map[string]any{
			"data": []any{
				map[string]any{"EvnPS_NumCard": "card-" + cid},
			},
		}, nil
	}
}

func TestFetchStartedData_TagsDivisionNames(t *testing.T) {
	gw := &fakeGateway{handler: divisionHandler("")}

	rows := fetchStartedData(context.Background(), gw, searchConfig(), SearchRequest{LastName: "Иванов"})

	if len(rows) != 3 {
		t.Fatalf("expected one row per division, got %d", len(rows))
	}
	wantNames := []string{"Центральный корпус", "Северный корпус", "Дневной стационар"}
	for i, row := range rows {
		if row["_division_name"] != wantNames[i] {
			t.Errorf("row %d: expected division %q, got %v", i, wantNames[i], row["_division_name"])
		}
	}
}

func TestFetchStartedData_FailedDivisionLosesOnlyItsRows(t *testing.T) {
	gw := &fakeGateway{handler: divisionHandler("120")}

	rows := fetchStartedData(context.Background(), gw, searchConfig(), SearchRequest{LastName: "Иванов"})

	if len(rows) != 2 {
		t.Fatalf("expected rows from 2 surviving divisions, got %d", len(rows))
	}
	if rows[0]["_division_name"] != "Центральный корпус" || rows[1]["_division_name"] != "Дневной стационар" {
		t.Errorf("unexpected division tags: %v, %v", rows[0]["_division_name"], rows[1]["_division_name"])
	}
}

func TestFetchStartedData_SectionCidForwarded(t *testing.T) {
	var sawSection bool
	gw := &fakeGateway{handler: func(request GatewayRequest) (any, error) {
		if request.Data["LpuBuilding_cid"] == "130" {
			if request.Data["LpuSection_cid"] != "1301" {
				return nil, errors.New("missing section cid")
			}
			sawSection = true
		} else if _, ok := request.Data["LpuSection_cid"]; ok {
			return nil, errors.New("unexpected section cid")
		}
		return map[string]any{"data": []any{}}, nil
	}}

	fetchStartedData(context.Background(), gw, searchConfig(), SearchRequest{LastName: "Иванов"})
	if !sawSection {
		t.Fatal("section-scoped division never queried with its section cid")
	}
}

func TestFetchStartedData_DefaultDateRange(t *testing.T) {
	var gotRange string
	gw := &fakeGateway{handler: func(request GatewayRequest) (any, error) {
		gotRange, _ = request.Data["EvnSection_disDate_Range"].(string)
		return map[string]any{"data": []any{}}, nil
	}}

	config := searchConfig()
	config.Divisions = config.Divisions[:1]

	fetchStartedData(context.Background(), gw, config, SearchRequest{LastName: "Иванов"})
	if !strings.HasPrefix(gotRange, "01.01.2025 - ") {
		t.Errorf("expected default range from configured start date, got %q", gotRange)
	}

	fetchStartedData(context.Background(), gw, config, SearchRequest{LastName: "Иванов", DisDateRange: "01.02.2025 - 01.03.2025"})
	if gotRange != "01.02.2025 - 01.03.2025" {
		t.Errorf("expected caller-supplied range, got %q", gotRange)
	}
}
