package main

import (
	"regexp"
	"strings"
)

// ICD codes that qualify as reportable additional diagnoses: diabetes
// (E10.x/E11.x) and oncology (Cxx.x).
var additionalDiagnosisRegex = regexp.MustCompile(`^(E(10|11)\.\d|C\d{2}\.\d)$`)

// EvnUslugaOper is the system marker of a service that is an operation
const operationClassMarker = "EvnUslugaOper"

// filterOperationsFromServices keeps only the operations among the rendered
// services, reduced to trimmed code/name pairs. Entries without a code are
// dropped.
func filterOperationsFromServices(services []any) []OperationEntry {
	operations := []OperationEntry{}

	for _, item := range services {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if !strings.Contains(stringField(entry, "EvnClass_SysNick"), operationClassMarker) {
			continue
		}

		code := strings.TrimSpace(stringField(entry, "Usluga_Code"))
		if code == "" {
			continue
		}
		operations = append(operations, OperationEntry{
			Code: code,
			Name: strings.TrimSpace(stringField(entry, "Usluga_Name")),
		})
	}

	return operations
}

// sanitizeDiagnosisEntry extracts a trimmed code/name pair from a raw
// diagnosis row. The second return value is false when the code is missing.
func sanitizeDiagnosisEntry(entry map[string]any) (DiagnosisEntry, bool) {
	code := strings.TrimSpace(stringField(entry, "Diag_Code"))
	if code == "" {
		return DiagnosisEntry{}, false
	}
	return DiagnosisEntry{
		Code: code,
		Name: strings.TrimSpace(stringField(entry, "Diag_Name")),
	}, true
}

func sanitizeDiagnosisList(rows []any) []DiagnosisEntry {
	entries := []DiagnosisEntry{}
	for _, item := range rows {
		row, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if entry, ok := sanitizeDiagnosisEntry(row); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// validAdditionalDiagnoses keeps only entries whose full code matches the
// diabetes/oncology pattern. Always returns a list, possibly empty.
func validAdditionalDiagnoses(entries []DiagnosisEntry) []DiagnosisEntry {
	valid := []DiagnosisEntry{}
	for _, entry := range entries {
		if additionalDiagnosisRegex.MatchString(entry.Code) {
			valid = append(valid, entry)
		}
	}
	return valid
}
