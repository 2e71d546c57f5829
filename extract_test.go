package main

import (
	"context"
	"errors"
	"testing"
)

func TestFirstRecord(t *testing.T) {
	if got := firstRecord([]any{map[string]any{"a": "1"}, map[string]any{"a": "2"}}); got["a"] != "1" {
		t.Errorf("expected first element, got %v", got)
	}
	if got := firstRecord([]any{}); len(got) != 0 {
		t.Errorf("expected empty record for empty list, got %v", got)
	}
	if got := firstRecord(map[string]any{"a": "1"}); len(got) != 0 {
		t.Errorf("expected empty record for non-list, got %v", got)
	}
	if got := firstRecord(nil); len(got) != 0 {
		t.Errorf("expected empty record for nil, got %v", got)
	}
}

func TestStringField(t *testing.T) {
	record := map[string]any{
		"str":   "value",
		"int":   float64(202),
		"float": 1.5,
		"nil":   nil,
	}

	if got := stringField(record, "str"); got != "value" {
		t.Errorf("expected string value, got %q", got)
	}
	if got := stringField(record, "int"); got != "202" {
		t.Errorf("expected integral number without decimals, got %q", got)
	}
	if got := stringField(record, "float"); got != "1.5" {
		t.Errorf("expected float formatting, got %q", got)
	}
	if got := stringField(record, "nil"); got != "" {
		t.Errorf("expected empty string for null, got %q", got)
	}
	if got := stringField(nil, "any"); got != "" {
		t.Errorf("expected empty string for nil record, got %q", got)
	}
}

func TestFetchPersonData_ShapeTolerance(t *testing.T) {
	ctx := context.Background()

	gw := &fakeGateway{responses: map[string]any{
		"Common/loadPersonData": []any{map[string]any{"Person_EdNum": "123"}},
	}}
	record, err := fetchPersonData(ctx, gw, "100")
	if err != nil || record["Person_EdNum"] != "123" {
		t.Fatalf("expected person record, got %v, %v", record, err)
	}

	// Non-list response degrades to an empty record
	gw = &fakeGateway{responses: map[string]any{
		"Common/loadPersonData": map[string]any{"unexpected": "shape"},
	}}
	record, err = fetchPersonData(ctx, gw, "100")
	if err != nil || len(record) != 0 {
		t.Fatalf("expected empty record for wrong shape, got %v, %v", record, err)
	}

	// Transport failure propagates to the caller
	gw = &fakeGateway{errs: map[string]error{
		"Common/loadPersonData": errors.New("down"),
	}}
	if _, err = fetchPersonData(ctx, gw, "100"); err == nil {
		t.Fatal("expected transport error to propagate")
	}
}

func TestFetchAllMedicalServices_NonList(t *testing.T) {
	gw := &fakeGateway{responses: map[string]any{
		"EvnUsluga/loadEvnUslugaGrid": map[string]any{"error": "bad"},
	}}

	services, err := fetchAllMedicalServices(context.Background(), gw, "200")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(services) != 0 {
		t.Fatalf("expected empty list, got %v", services)
	}
}

func TestFetchDiseaseData_FieldsData(t *testing.T) {
	ctx := context.Background()

	gw := &fakeGateway{responses: map[string]any{
		"EvnSection/loadEvnSectionEditForm": map[string]any{
			"fieldsData": []any{map[string]any{"ResultDesease_Code": "104"}},
		},
	}}
	record, err := fetchDiseaseData(ctx, gw, map[string]any{"EvnSection_id": "300"})
	if err != nil || record["ResultDesease_Code"] != "104" {
		t.Fatalf("expected disease record, got %v, %v", record, err)
	}

	// Missing fieldsData degrades to empty
	gw = &fakeGateway{responses: map[string]any{
		"EvnSection/loadEvnSectionEditForm": map[string]any{},
	}}
	record, err = fetchDiseaseData(ctx, gw, map[string]any{"EvnSection_id": "300"})
	if err != nil || len(record) != 0 {
		t.Fatalf("expected empty record, got %v, %v", record, err)
	}

	// List-shaped response degrades to empty
	gw = &fakeGateway{responses: map[string]any{
		"EvnSection/loadEvnSectionEditForm": []any{"nope"},
	}}
	record, err = fetchDiseaseData(ctx, gw, map[string]any{"EvnSection_id": "300"})
	if err != nil || len(record) != 0 {
		t.Fatalf("expected empty record for list shape, got %v, %v", record, err)
	}
}

func TestFetchAdditionalDiagnoses_NoSectionIDSkipsCall(t *testing.T) {
	gw := &fakeGateway{}

	entries, err := fetchAdditionalDiagnoses(context.Background(), gw, map[string]any{"EvnPS_id": "200"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", entries)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("no upstream call expected, got %v", gw.calls)
	}
}

func TestGetReferredOrganization(t *testing.T) {
	ctx := context.Background()

	gw := &fakeGateway{responses: map[string]any{
		"Org/getOrgList": []any{map[string]any{"Org_Name": "Поликлиника №1"}},
	}}
	name, err := getReferredOrganization(ctx, gw, map[string]any{"Org_did": "500"})
	if err != nil || name != "Поликлиника №1" {
		t.Fatalf("expected organization name, got %q, %v", name, err)
	}

	// No organization id: no call, empty name
	gw = &fakeGateway{}
	name, err = getReferredOrganization(ctx, gw, map[string]any{})
	if err != nil || name != "" {
		t.Fatalf("expected empty name, got %q, %v", name, err)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("no upstream call expected, got %v", gw.calls)
	}
}
