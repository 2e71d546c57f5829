package main

import (
	"context"

	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// enrichData assembles the flat form-field mapping for one hospitalization
// selected in a prior search. Partial upstream data never fails the request:
// every failed branch degrades to an empty value and the mapping is returned
// unconditionally; the caller decides whether it is empty enough to count as
// not found.
func enrichData(ctx context.Context, gateway requester, config *Config, started map[string]any) map[string]any {
	span, ctx := apm.StartSpan(ctx, "Enrich Hospitalization", "Combined")
	defer span.End()

	personID := stringField(started, "Person_id")
	eventID := stringField(started, "EvnPS_id")
	zapLogger.Info("enrichment requested",
		zap.String("person_id", personID),
		zap.String("event_id", eventID))

	// The five independent fetches run concurrently; a failed branch resolves
	// to nil and is substituted with an empty value below.
	results := safeGather(ctx,
		func(ctx context.Context) (any, error) {
			return fetchPersonData(ctx, gateway, personID)
		},
		func(ctx context.Context) (any, error) {
			return fetchMovementData(ctx, gateway, eventID)
		},
		func(ctx context.Context) (any, error) {
			return fetchReferralData(ctx, gateway, eventID)
		},
		func(ctx context.Context) (any, error) {
			return fetchOperationsData(ctx, gateway, eventID)
		},
		func(ctx context.Context) (any, error) {
			summary, err := fetchDischargeSummary(ctx, gateway, eventID)
			if summary == nil {
				// Avoid a typed-nil result slot
				return nil, err
			}
			return summary, err
		},
	)

	personData := asRecord(results[0])
	movementData := asRecord(results[1])
	referralData := asRecord(results[2])

	operations, _ := results[3].([]OperationEntry)
	if operations == nil {
		operations = []OperationEntry{}
	}

	pureSummary := map[string]any{}
	if summary, ok := results[4].(*DischargeSummary); ok && summary.Pure != nil {
		pureSummary = summary.Pure
	}

	// When the service list already reports operations, drop the epicrisis
	// operation field so the two sources do not double-report
	if len(operations) > 0 {
		pureSummary["item_145"] = nil
	}

	additionalDiagnoses, err := fetchAdditionalDiagnoses(ctx, gateway, referralData)
	if err != nil {
		logger(ctx, err)
		additionalDiagnoses = []DiagnosisEntry{}
	}

	referredOrganization, err := getReferredOrganization(ctx, gateway, referralData)
	if err != nil {
		logger(ctx, err)
	}

	diseaseData, err := fetchDiseaseData(ctx, gateway, movementData)
	if err != nil {
		logger(ctx, err)
		diseaseData = map[string]any{}
	}

	departmentName := getDepartmentName(started)
	departmentCode := getDepartmentCode(departmentName)

	bedProfileCode, bedProfileName := getBedProfileCode(movementData, departmentName)
	careProfile := getMedicalCareProfile(movementData, bedProfileName)

	diagnosisCode := stringField(movementData, "Diag_Code")
	careProfile = applyDiagnosisProfileOverrides(careProfile, diagnosisCode)

	admissionDate := stringField(started, "EvnPS_setDate")
	dischargeDate := stringField(started, "EvnPS_disDate")
	directionDate := getDirectionDate(admissionDate)

	careCondition := getMedicalCareCondition(departmentName)
	careForm := getMedicalCareForm(referralData)

	outcomeCode := correctOutcomeCode(getOutcomeCode(diseaseData), careCondition)

	return map[string]any{
		"input[name='ReferralHospitalizationNumberTicket']":            "б/н",
		"input[name='ReferralHospitalizationDateTicket']":              directionDate,
		"input[name='ReferralHospitalizationMedIndications']":          "001",
		"input[name='Enp']":                                            stringField(personData, "Person_EdNum"),
		"input[name='DateBirth']":                                      stringField(started, "Person_Birthday"),
		"input[name='Gender']":                                         stringField(personData, "Sex_Name"),
		"input[name='TreatmentDateStart']":                             admissionDate,
		"input[name='TreatmentDateEnd']":                               dischargeDate,
		"input[name='VidMpV008']":                                      config.MedicalCareTypeCode,
		"input[name='HospitalizationInfoV006']":                        careCondition,
		"input[name='HospitalizationInfoV014']":                        careForm,
		"input[name='HospitalizationInfoSpecializedMedicalProfile']":   careProfile,
		"input[name='HospitalizationInfoSubdivision']":                 "Стационар",
		"input[name='HospitalizationInfoNameDepartment']":              departmentName,
		"input[name='HospitalizationInfoOfficeCode']":                  departmentCode,
		"input[name='HospitalizationInfoV020']":                        bedProfileCode,
		"input[name='HospitalizationInfoDiagnosisMainDisease']":        diagnosisCode,
		"input[name='CardNumber']":                                     getCardNumber(started),
		"input[name='ResultV009']":                                     stringField(movementData, "LeaveType_Code"),
		"input[name='IshodV012']":                                      outcomeCode,
		"input[name='HospitalizationInfoC_ZABV027']":                   getDiseaseTypeCode(diseaseData),
		"input[name='ReferralHospitalizationSendingDepartment']":       referredOrganization,
		"input[name='HospitalizationInfoAddressDepartment']":           "Павлика Морозова, д. 6",
		"additional_diagnosis_data":                                    additionalDiagnoses,
		"medical_service_data":                                         operations,
		"discharge_summary":                                            pureSummary,
	}
}
