package main

import (
	"context"
	"regexp"
	"strings"

	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// Accepted header variants for each extracted section of the discharge
// template, joined with | for the regex.
const (
	labelsPrimary      = `Диагноз основной|Основное заболевание`
	labelsComplication = `Осложнения основного заболевания|Осложнения`
	labelsConcomitant  = `Сопутствующие заболевания`
)

// Headers and template artifacts that may follow an extracted section; the
// first occurrence of any of them ends the section.
var stopLabels = []string{
	labelsComplication,
	labelsConcomitant,
	`Внешняя причина при травмах`,
	`Дополнительные сведения о заболевании`,
	`@#@ОсложненияОсновногоДиагнозаДвижРасш`,
	`ОсновногоДиагнозаДвижРасш`,
	`@#@СопутствующиеДиагнозы`,
	`@#@КодОсновногоДиагнозаДвижения`,
	`Состояние при поступлении:`,
	`основного: `,
	`@#@НаименованиеОсновногоДиагнозаДвижения`,
}

var (
	stopPattern = `(?:` + strings.Join(stopLabels, `|`) + `)`

	// Marker names may be Cyrillic, so \w is not enough
	markerRegex = regexp.MustCompile(`@#@([\p{L}\p{N}_]+)@#@`)

	htmlTagRegex    = regexp.MustCompile(`(?s)<.*?>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// The disease name highlighted in the assembled form
const diabetesTerm = "Сахарный диабет"

// fetchDischargeSummary runs the multi-step retrieval and parsing of the
// discharge epicrisis for one hospitalization. Every missing link in the
// chain is a soft failure: it is logged and nil is returned.
func fetchDischargeSummary(ctx context.Context, gateway requester, eventID string) (*DischargeSummary, error) {
	span, ctx := apm.StartSpan(ctx, "Fetch Discharge Summary", "Gateway")
	defer span.End()

	// Step 1: resolve the section id that scopes the medical-record list
	movement, err := fetchMovementData(ctx, gateway, eventID)
	if err != nil {
		return nil, err
	}
	sectionID := stringField(movement, "EvnSection_id")
	if sectionID == "" {
		zapLogger.Warn("no EvnSection_id for event, discharge summary lookup aborted",
			zap.String("event_id", eventID))
		return nil, nil
	}

	// Step 2: load the list of clinical documents of the section
	request := GatewayRequest{
		Params: RequestParams{C: "EvnXml6E", M: "loadStacEvnXmlList"},
		Data:   map[string]any{"Evn_id": sectionID},
	}
	response, err := gateway.makeRequest(ctx, methodPost, request)
	if err != nil {
		return nil, err
	}
	records, ok := asList(response)
	if !ok {
		zapLogger.Warn("medical record API returned a non-list response",
			zap.String("event_id", eventID))
		return nil, nil
	}

	// Step 3: find the discharge epicrisis among them
	var summaryEntry map[string]any
	for _, item := range records {
		entry := asRecord(item)
		if stringField(entry, "XmlType_Name") == "Эпикриз" && stringField(entry, "XmlTypeKind_Name") == "Выписной" {
			summaryEntry = entry
			break
		}
	}
	if summaryEntry == nil {
		zapLogger.Info("no discharge epicrisis found",
			zap.String("event_id", eventID),
			zap.Int("records", len(records)))
		return nil, nil
	}

	// Step 4: load the raw document body
	documentID := stringField(summaryEntry, "EvnXml_pid")
	registryID := stringField(summaryEntry, "EMDRegistry_ObjectID")
	if documentID == "" || registryID == "" {
		zapLogger.Warn("epicrisis entry is missing required ids",
			zap.String("event_id", eventID),
			zap.String("evn_xml_pid", documentID),
			zap.String("registry_object_id", registryID))
		return nil, nil
	}

	request = GatewayRequest{
		Params: RequestParams{C: "XmlTemplate6E", M: "getXmlTemplateForEvnXml"},
		Data:   map[string]any{"Evn_id": documentID, "EvnXml_id": registryID},
	}
	response, err = gateway.makeRequest(ctx, methodPost, request)
	if err != nil {
		return nil, err
	}
	raw, ok := response.(map[string]any)
	if !ok {
		zapLogger.Warn("raw epicrisis response is not an object",
			zap.String("event_id", eventID))
		return nil, nil
	}
	if _, ok := raw["xmlData"]; !ok {
		zapLogger.Warn("raw epicrisis response lacks xmlData",
			zap.String("event_id", eventID))
		return nil, nil
	}

	// Step 5: extract the structured clinical fields
	summary := parseDischargeSummary(raw)
	zapLogger.Info("discharge summary parsed", zap.String("event_id", eventID))
	return summary, nil
}

// parseDischargeSummary turns the raw document payload (free-text template
// plus marker substitution table) into the pure field mapping.
func parseDischargeSummary(raw map[string]any) *DischargeSummary {
	xmlData := asRecord(raw["xmlData"])
	template := stringField(raw, "template")

	primary := parseSection(extractRawSection(template, labelsPrimary), xmlData)
	complication := boldDiabetes(parseSection(extractRawSection(template, labelsComplication), xmlData))
	concomitant := boldDiabetes(parseSection(extractRawSection(template, labelsConcomitant), xmlData))

	return &DischargeSummary{
		Pure: map[string]any{
			"diagnos":               orNil(boldDiabetes(stringField(xmlData, "diagnos"))),
			"primary_diagnosis":     orNil(primary),
			"primary_complication":  orNil(complication),
			"concomitant_diseases":  orNil(concomitant),
			"item_90":               orNil(stringField(xmlData, "specMarker_90")),
			"item_94":               orNil(stringField(xmlData, "specMarker_94")),
			"item_272":              orNil(stringField(xmlData, "specMarker_272")),
			"item_284":              orNil(stringField(xmlData, "specMarker_284")),
			"item_659":              orNil(boldDiabetes(stringField(xmlData, "specMarker_659"))),
			"item_145":              orNil(stringField(xmlData, "specMarker_145")),
			"AdditionalInf":         orNil(stringField(xmlData, "AdditionalInf")),
		},
		Raw: raw,
	}
}

// extractRawSection returns the raw template text between one of the section
// headers and the first following stop label (or end of text). Matching is
// case-insensitive and spans newlines.
func extractRawSection(template, startLabels string) string {
	pattern, err := regexp.Compile(`(?is)(` + startLabels + `)\s*:?\s*(.*?)(?:` + stopPattern + `|$)`)
	if err != nil {
		return ""
	}
	match := pattern.FindStringSubmatch(template)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[2])
}

// parseSection combines the marker-stripped cleaned text of a raw section
// with the resolved values of its embedded markers.
func parseSection(raw string, xmlData map[string]any) string {
	text := cleanHTML(markerRegex.ReplaceAllString(raw, ""))

	parts := []string{text}
	for _, match := range markerRegex.FindAllStringSubmatch(raw, -1) {
		parts = append(parts, stringField(xmlData, match[1]))
	}

	return combineParts(parts...)
}

// cleanHTML removes HTML tags and collapses whitespace runs.
func cleanHTML(raw string) string {
	if raw == "" {
		return ""
	}
	text := htmlTagRegex.ReplaceAllString(raw, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// combineParts joins the non-empty parts with single spaces.
func combineParts(parts ...string) string {
	valid := []string{}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			valid = append(valid, part)
		}
	}
	return strings.Join(valid, " ")
}

func boldDiabetes(s string) string {
	return strings.ReplaceAll(s, diabetesTerm, "<b>"+diabetesTerm+"</b>")
}
