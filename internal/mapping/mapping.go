// Package mapping converts records between the PHA and BOB shapes.
package mapping

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/pha-bob-sync/internal/domain"
	apperrors "github.com/Adda-Baaj/pha-bob-sync/pkg/errors"
)

const (
	// PHA stamps dates like "9/20/2022 12:00:00 AM".
	phaDateLayout = "1/2/2006 15:04:05 PM"
	bobDateLayout = "2006-01-02"
)

// PHADate converts a PHA timestamp to a BOB calendar date. Empty input stays empty.
func PHADate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	t, err := time.Parse(phaDateLayout, strings.ToUpper(value))
	if err != nil {
		return "", fmt.Errorf("parse PHA date %q: %w", value, err)
	}
	return t.Format(bobDateLayout), nil
}

// MasterData builds the single-entry create_new_data body for one inspection.
func MasterData(insp domain.Inspection, customerCode, sourceName string) (domain.MasterDataRequest, error) {
	lastPassed, err := convertDate("LastPassedInspectionDate", insp.LastPassedInspectionDate)
	if err != nil {
		return domain.MasterDataRequest{}, err
	}
	lastScheduled, err := convertDate("LastAnnualInspectionDate", insp.LastAnnualInspectionDate)
	if err != nil {
		return domain.MasterDataRequest{}, err
	}

	entry := domain.MasterDataEntry{
		Client: domain.MasterClient{
			ExternalID:  insp.TenantID.String(),
			FirstName:   insp.TenantFirstName.String(),
			LastName:    insp.TenantLastName.String(),
			Email:       insp.TenantEmail.String(),
			PhoneNumber: insp.TenantPrimaryPhone.String(),
		},
		Landlord: domain.MasterLandlord{
			ExternalID:  insp.LandlordID.String(),
			Name:        insp.LandlordName.String(),
			Email:       insp.LandlordEmail.String(),
			PhoneNumber: insp.LandlordPrimaryPhone.String(),
		},
		Unit: domain.MasterUnit{
			ExternalID:        insp.UnitID.String(),
			Address1:          insp.UnitAddressUnit.String(),
			Address2:          insp.UnitAddressLine1.String(),
			Address3:          insp.UnitAddressLine2.String(),
			City:              insp.UnitAddressCity.String(),
			State:             insp.UnitAddressState.String(),
			Zipcode:           insp.UnitAddressZip.String(),
			Bedroom:           bedrooms(insp.UnitBedrooms),
			LastScheduledDate: lastScheduled,
			LastPassedDate:    lastPassed,
		},
	}

	return domain.MasterDataRequest{
		Count:        1,
		CustomerCode: customerCode,
		SourceName:   sourceName,
		Data:         []domain.MasterDataEntry{entry},
	}, nil
}

// DateUpdate builds the PHA PUT body from a BOB integration record.
func DateUpdate(rec domain.IntegrationRecord) domain.DateUpdate {
	return domain.DateUpdate{
		LastAnnualInspectionDate: rec.Data.LastScheduledDate.String(),
		LastPassedInspectionDate: rec.Data.LastPassedDate.String(),
	}
}

// InspectionKeys identifies an inspection in logs and reports.
func InspectionKeys(insp domain.Inspection) map[string]string {
	return map[string]string{
		"client_id":   insp.TenantID.String(),
		"landlord_id": insp.LandlordID.String(),
		"unit_id":     insp.UnitID.String(),
	}
}

// IntegrationKeys identifies an integration record in logs and reports.
func IntegrationKeys(rec domain.IntegrationRecord) map[string]string {
	return map[string]string{
		"id":                  rec.ID.String(),
		"tenant_id":           rec.Data.TenantID.String(),
		"last_scheduled_date": rec.Data.LastScheduledDate.String(),
		"last_passed_date":    rec.Data.LastPassedDate.String(),
	}
}

func convertDate(field string, value domain.Text) (string, error) {
	out, err := PHADate(value.String())
	if err != nil {
		verr := apperrors.NewValidationError(fmt.Sprintf("invalid %s", field), field, value.String())
		verr.Cause = err
		return "", verr
	}
	return out, nil
}

// bedrooms passes the PHA value through; a missing value becomes "".
func bedrooms(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`""`)
	}
	return raw
}
