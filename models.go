package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

/*****************************
 ****** Gateway Request ******
 *****************************/

// RequestParams addresses one upstream EVMIAS handler: "c" is the server-side
// class, "m" the method on it.
type RequestParams struct {
	C string `json:"c"`
	M string `json:"m"`
}

// GatewayRequest is the JSON body the upstream gateway accepts on every call.
type GatewayRequest struct {
	Params RequestParams  `json:"params"`
	Data   map[string]any `json:"data"`
}

/*******************************
 ****** Extension Request ******
 *******************************/

type SearchRequest struct {
	LastName     string `json:"last_name"`
	DisDateRange string `json:"dis_date_range"`
}

type EnrichRequest struct {
	StartedData map[string]any `json:"started_data"`
}

/*****************************
 ****** Derived Records ******
 *****************************/

// OperationEntry is a surgical service pulled out of the full service list.
type OperationEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DiagnosisEntry is an additional diagnosis that survived the ICD filter.
type DiagnosisEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DischargeSummary holds the parsed discharge epicrisis. Pure maps the named
// clinical fields to their extracted text (nil when a field is empty), Raw
// keeps the unmodified upstream payload.
type DischargeSummary struct {
	Pure map[string]any `json:"pure"`
	Raw  map[string]any `json:"raw"`
}

/***************************
 ****** Field Helpers ******
 ***************************/

// Upstream responses are schemaless, so records travel as generic maps and
// fields are read through these helpers.

func asRecord(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asList(v any) ([]any, bool) {
	list, ok := v.([]any)
	return list, ok
}

// firstRecord returns the first element of a list-shaped response, or an
// empty record when the response is empty or not a list.
func firstRecord(v any) map[string]any {
	list, ok := asList(v)
	if !ok || len(list) == 0 {
		return map[string]any{}
	}
	return asRecord(list[0])
}

// stringField reads a record field as a string. Numeric JSON values are
// formatted without a trailing ".0" so codes like 202 compare cleanly.
func stringField(record map[string]any, key string) string {
	if record == nil {
		return ""
	}
	switch v := record[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// orNil converts an empty string to an explicit nil so assembled mappings
// expose "no value" instead of "".
func orNil(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
