package main

import (
	"regexp"
	"strings"
)

// Lookup tables translating EVMIAS display names into GIS OMS registry codes
// (federal NSI dictionaries V002, V006, V012, V014, V020). Only the
// departments of this facility are listed; unknown names resolve to "".

var departmentCodes = map[string]string{
	"хирургическое отделение":              "24",
	"терапевтическое отделение":            "22",
	"кардиологическое отделение":           "11",
	"неврологическое отделение":            "15",
	"оториноларингологическое отделение":   "17",
	"гинекологическое отделение":           "08",
	"травматологическое отделение":         "23",
	"дневной стационар":                    "29",
	"дневной стационар (хирургия)":         "30",
}

var bedProfileCodes = map[string]string{
	"хирургические":            "55",
	"терапевтические":          "60",
	"кардиологические":         "20",
	"неврологические":          "41",
	"оториноларингологические": "45",
	"гинекологические":         "16",
	"травматологические":       "61",
	"проктологические":         "51",
}

// Departments whose movement rows carry a misleading bed-profile name; the
// configured name wins over the one reported by EVMIAS.
var bedProfileNameOverrides = map[string]string{
	"дневной стационар (хирургия)": "хирургические",
}

var careProfileCodes = map[string]string{
	"хирургические":            "68",
	"терапевтические":          "64",
	"кардиологические":         "13",
	"неврологические":          "24",
	"оториноларингологические": "20",
	"гинекологические":         "2",
	"травматологические":       "66",
	"проктологические":         "14",
}

const (
	// V002 profile forced by the diagnosis-code overrides
	profileOtolaryngology = "20"
	profileColoproctology = "14"

	// V006 condition of care
	conditionInpatient = "1"
	conditionDayCare   = "2"

	// V014 form of care
	formEmergency = "1"
	formPlanned   = "3"
)

var (
	entDiagnosisRegex  = regexp.MustCompile(`^J34\.\d$`)
	coloDiagnosisRegex = regexp.MustCompile(`^(K6[0-4]\.\d|D12\.\d)$`)
)

func getDepartmentName(started map[string]any) string {
	return strings.TrimSpace(stringField(started, "LpuSection_Name"))
}

func getDepartmentCode(departmentName string) string {
	return departmentCodes[strings.ToLower(strings.TrimSpace(departmentName))]
}

// getBedProfileCode resolves the V020 bed-profile code from the movement
// record, applying the per-department name override first. Returns the code
// and the corrected bed-profile name the correction produced.
func getBedProfileCode(movement map[string]any, departmentName string) (string, string) {
	name := strings.ToLower(strings.TrimSpace(stringField(movement, "LpuSectionBedProfile_Name")))
	if override, ok := bedProfileNameOverrides[strings.ToLower(strings.TrimSpace(departmentName))]; ok {
		name = override
	}
	return bedProfileCodes[name], name
}

func getMedicalCareProfile(movement map[string]any, bedProfileName string) string {
	if code, ok := careProfileCodes[strings.ToLower(strings.TrimSpace(bedProfileName))]; ok {
		return code
	}
	// Fall back on the section profile reported with the movement
	return careProfileCodes[strings.ToLower(strings.TrimSpace(stringField(movement, "LpuSectionProfile_Name")))]
}

// applyDiagnosisProfileOverrides forces the care profile for diagnosis codes
// that must always be reported under a fixed specialty, regardless of the
// department the patient actually stayed in.
func applyDiagnosisProfileOverrides(profile, diagnosisCode string) string {
	if entDiagnosisRegex.MatchString(diagnosisCode) {
		return profileOtolaryngology
	}
	if coloDiagnosisRegex.MatchString(diagnosisCode) {
		return profileColoproctology
	}
	return profile
}

func getMedicalCareCondition(departmentName string) string {
	if strings.Contains(strings.ToLower(departmentName), "дневной стационар") {
		return conditionDayCare
	}
	return conditionInpatient
}

// getMedicalCareForm derives the V014 form of care from the referral:
// admissions delivered by ambulance are emergency, the rest planned.
func getMedicalCareForm(referral map[string]any) string {
	if stringField(referral, "PrehospType_id") == "1" {
		return formEmergency
	}
	return formPlanned
}

func getOutcomeCode(disease map[string]any) string {
	return stringField(disease, "ResultDesease_Code")
}

// correctOutcomeCode encodes a national-registry convention: round-the-clock
// inpatient cases (condition "1") must report outcome codes in the 1xx range,
// so the 202 sentinel is remapped to 102.
func correctOutcomeCode(outcomeCode, careCondition string) string {
	if careCondition == conditionInpatient && outcomeCode == "202" {
		return "102"
	}
	return outcomeCode
}

func getDiseaseTypeCode(disease map[string]any) string {
	return stringField(disease, "DeseaseType_Code")
}

// getDirectionDate derives the referral direction date from the admission
// date: same day, date part only.
func getDirectionDate(admissionDate string) string {
	fields := strings.Fields(admissionDate)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// getCardNumber keeps the first token of the card number; EVMIAS appends the
// department shorthand after a space.
func getCardNumber(started map[string]any) string {
	fields := strings.Fields(stringField(started, "EvnPS_NumCard"))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
