package main

import (
	"context"

	"go.uber.org/zap"
)

// Each extractor issues one gateway call with a fixed (class, method) pair
// and normalizes the response shape. Transport errors propagate to the
// caller; shape mismatches degrade to empty results.

// fetchPersonData loads demographic data (policy number, sex) for a person.
func fetchPersonData(ctx context.Context, gateway requester, personID string) (map[string]any, error) {
	request := GatewayRequest{
		Params: RequestParams{C: "Common", M: "loadPersonData"},
		Data: map[string]any{
			"Person_id": personID,
			"LoadShort": true,
			"mode":      "PersonInfoPanel",
		},
	}

	response, err := gateway.makeRequest(ctx, methodPost, request)
	if err != nil {
		return nil, err
	}
	return firstRecord(response), nil
}

// fetchMovementData loads the hospitalization-movement row for an event.
func fetchMovementData(ctx context.Context, gateway requester, eventID string) (map[string]any, error) {
	request := GatewayRequest{
		Params: RequestParams{C: "EvnSection", M: "loadEvnSectionGrid"},
		Data:   map[string]any{"EvnSection_pid": eventID},
	}

	response, err := gateway.makeRequest(ctx, methodPost, request)
	if err != nil {
		return nil, err
	}
	return firstRecord(response), nil
}

// fetchReferralData loads the referral/admission edit form for an event.
func fetchReferralData(ctx context.Context, gateway requester, eventID string) (map[string]any, error) {
	request := GatewayRequest{
		Params: RequestParams{C: "EvnPS", M: "loadEvnPSEditForm"},
		Data: map[string]any{
			"EvnPS_id":      eventID,
			"archiveRecord": "0",
			"delDocsView":   "0",
			"attrObjects": []any{
				map[string]any{"object": "EvnPSEditWindow", "identField": "EvnPS_id"},
			},
		},
	}

	response, err := gateway.makeRequest(ctx, methodPost, request)
	if err != nil {
		return nil, err
	}
	return firstRecord(response), nil
}

// fetchAllMedicalServices loads the full list of services rendered during the
// hospitalization.
func fetchAllMedicalServices(ctx context.Context, gateway requester, eventID string) ([]any, error) {
	request := GatewayRequest{
		Params: RequestParams{C: "EvnUsluga", M: "loadEvnUslugaGrid"},
		Data:   map[string]any{"pid": eventID, "parent": "EvnPS"},
	}

	response, err := gateway.makeRequest(ctx, methodPost, request)
	if err != nil {
		return nil, err
	}

	services, ok := asList(response)
	if !ok {
		zapLogger.Warn("service API returned a non-list response",
			zap.String("event_id", eventID))
		return []any{}, nil
	}
	return services, nil
}

// fetchOperationsData returns the surgical operations among all services
// rendered during the hospitalization, or an empty list when there are none.
func fetchOperationsData(ctx context.Context, gateway requester, eventID string) ([]OperationEntry, error) {
	services, err := fetchAllMedicalServices(ctx, gateway, eventID)
	if err != nil {
		return nil, err
	}

	operations := filterOperationsFromServices(services)
	if len(operations) == 0 {
		zapLogger.Info("no operations found among services",
			zap.String("event_id", eventID),
			zap.Int("services", len(services)))
	}
	return operations, nil
}

// fetchReferredOrgByID resolves an organization row by its id.
func fetchReferredOrgByID(ctx context.Context, gateway requester, orgID string) (map[string]any, error) {
	request := GatewayRequest{
		Params: RequestParams{C: "Org", M: "getOrgList"},
		Data:   map[string]any{"Org_id": orgID},
	}

	response, err := gateway.makeRequest(ctx, methodPost, request)
	if err != nil {
		return nil, err
	}
	return firstRecord(response), nil
}

// fetchDiseaseData loads the disease details of the hospitalization section
// referenced by the movement record. This is a dict-shaped response: the
// record lives under fieldsData[0].
func fetchDiseaseData(ctx context.Context, gateway requester, movement map[string]any) (map[string]any, error) {
	sectionID := stringField(movement, "EvnSection_id")

	request := GatewayRequest{
		Params: RequestParams{C: "EvnSection", M: "loadEvnSectionEditForm"},
		Data: map[string]any{
			"EvnSection_id": sectionID,
			"archiveRecord": "0",
			"attrObjects": []any{
				map[string]any{"object": "EvnSectionEditWindow", "identField": "EvnSection_id"},
			},
		},
	}

	response, err := gateway.makeRequest(ctx, methodPost, request)
	if err != nil {
		return nil, err
	}

	record, ok := response.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return firstRecord(record["fieldsData"]), nil
}

// fetchRawDiagnosisList loads the raw additional-diagnosis rows of a section.
func fetchRawDiagnosisList(ctx context.Context, gateway requester, sectionID string) ([]any, error) {
	request := GatewayRequest{
		Params: RequestParams{C: "EvnDiag", M: "loadEvnDiagPSGrid"},
		Data:   map[string]any{"class": "EvnDiagPSSect", "EvnDiagPS_pid": sectionID},
	}

	response, err := gateway.makeRequest(ctx, methodPost, request)
	if err != nil {
		return nil, err
	}

	list, ok := asList(response)
	if !ok {
		zapLogger.Warn("diagnosis API returned a non-list response",
			zap.String("section_id", sectionID))
		return []any{}, nil
	}
	return list, nil
}

// fetchAdditionalDiagnoses runs the three-stage additional-diagnosis
// pipeline: fetch raw rows for the referral's child section, sanitize each
// entry, filter by the diabetes/oncology ICD pattern. Always returns a list.
func fetchAdditionalDiagnoses(ctx context.Context, gateway requester, referral map[string]any) ([]DiagnosisEntry, error) {
	if len(referral) == 0 {
		zapLogger.Info("no referral data, skipping additional diagnoses")
		return []DiagnosisEntry{}, nil
	}

	sectionID := stringField(referral, "ChildEvnSection_id")
	if sectionID == "" {
		zapLogger.Warn("referral data has no ChildEvnSection_id, cannot load additional diagnoses")
		return []DiagnosisEntry{}, nil
	}

	rows, err := fetchRawDiagnosisList(ctx, gateway, sectionID)
	if err != nil {
		return nil, err
	}

	sanitized := sanitizeDiagnosisList(rows)
	valid := validAdditionalDiagnoses(sanitized)

	zapLogger.Info("additional diagnoses filtered",
		zap.String("section_id", sectionID),
		zap.Int("raw", len(rows)),
		zap.Int("valid", len(valid)))
	return valid, nil
}

// getReferredOrganization resolves the display name of the organization that
// referred the patient, or "" when the referral carries no organization id.
func getReferredOrganization(ctx context.Context, gateway requester, referral map[string]any) (string, error) {
	orgID := stringField(referral, "Org_did")
	if orgID == "" {
		return "", nil
	}

	org, err := fetchReferredOrgByID(ctx, gateway, orgID)
	if err != nil {
		return "", err
	}
	return stringField(org, "Org_Name"), nil
}
