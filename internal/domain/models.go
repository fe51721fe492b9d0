package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Domain contains the records exchanged between PHA and BOB.

// ID is a JSON scalar identifier kept in its wire form, so a numeric id goes
// back out as a number and a string id as a string.
type ID struct {
	raw json.RawMessage
}

// StringID builds an ID that marshals as a JSON string.
func StringID(s string) ID {
	b, _ := json.Marshal(s)
	return ID{raw: b}
}

// NumberID builds an ID that marshals as a JSON number.
func NumberID(n int64) ID {
	return ID{raw: json.RawMessage(strconv.FormatInt(n, 10))}
}

// RawID wraps a JSON token as received; blank input is an empty ID.
func RawID(raw string) ID {
	b := bytes.TrimSpace([]byte(raw))
	if len(b) == 0 {
		return ID{}
	}
	return ID{raw: b}
}

func (id *ID) UnmarshalJSON(data []byte) error {
	id.raw = append(id.raw[:0], bytes.TrimSpace(data)...)
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if len(id.raw) == 0 {
		return []byte("null"), nil
	}
	return id.raw, nil
}

// String returns the id text without JSON quoting; null and missing ids are "".
func (id ID) String() string {
	if len(id.raw) == 0 || string(id.raw) == "null" {
		return ""
	}
	if id.raw[0] == '"' {
		var s string
		if err := json.Unmarshal(id.raw, &s); err == nil {
			return s
		}
	}
	return string(id.raw)
}

// Empty reports a missing, null, blank or zero id.
func (id ID) Empty() bool {
	s := id.String()
	if s == "" {
		return true
	}
	if id.raw[0] != '"' {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == 0 {
			return true
		}
		if s == "false" {
			return true
		}
	}
	return false
}

// Text is a lenient string: JSON numbers and booleans keep their literal
// text and null decodes to "".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case data[0] == '{' || data[0] == '[':
		return fmt.Errorf("expected a scalar value, got %s", data)
	default:
		*t = Text(data)
	}
	return nil
}

func (t Text) String() string { return string(t) }

// Inspection is one row of PHA's active-tenants inspection feed.
type Inspection struct {
	TenantID           ID   `json:"TenantID"`
	TenantFirstName    Text `json:"TenantFirstName"`
	TenantLastName     Text `json:"TenantLastName"`
	TenantEmail        Text `json:"TenantEmail"`
	TenantPrimaryPhone Text `json:"TenantPrimaryPhone"`

	LandlordID           ID   `json:"LandlordID"`
	LandlordName         Text `json:"LandlordName"`
	LandlordEmail        Text `json:"LandlordEmail"`
	LandlordPrimaryPhone Text `json:"LandlordPrimaryPhone"`

	UnitID           ID   `json:"UnitID"`
	UnitAddressUnit  Text `json:"UnitAddressUnit"`
	UnitAddressLine1 Text `json:"UnitAddressLine1"`
	UnitAddressLine2 Text `json:"UnitAddressLine2"`
	UnitAddressCity  Text `json:"UnitAddressCity"`
	UnitAddressState Text `json:"UnitAddressState"`
	UnitAddressZip   Text `json:"UnitAddressZip"`

	// UnitBedrooms is passed through untouched; PHA sends numbers or strings.
	UnitBedrooms json.RawMessage `json:"UnitBedrooms"`

	LastPassedInspectionDate Text `json:"LastPassedInspectionDate"`
	LastAnnualInspectionDate Text `json:"LastAnnualInspectionDate"`

	// DecodeErr is set when the row could not be decoded; only the ids are
	// filled in that case.
	DecodeErr error `json:"-"`
}

// MasterDataRequest is the body of BOB's create_new_data call.
type MasterDataRequest struct {
	Count        int               `json:"count"`
	CustomerCode string            `json:"customer_code"`
	SourceName   string            `json:"source_name"`
	Data         []MasterDataEntry `json:"data"`
}

type MasterDataEntry struct {
	Client   MasterClient   `json:"client"`
	Landlord MasterLandlord `json:"landlord"`
	Unit     MasterUnit     `json:"unit"`
}

// MasterClient is the tenant side of a master data entry. ID is always null on create.
type MasterClient struct {
	ID          *int64 `json:"id"`
	ExternalID  string `json:"external_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	HomeNumber  string `json:"home_number"`
}

type MasterLandlord struct {
	ID           *int64 `json:"id"`
	ExternalID   string `json:"external_id"`
	Name         string `json:"name"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phone_number"`
	OfficeNumber string `json:"office_number"`
}

type MasterUnit struct {
	ID                *int64          `json:"id"`
	ExternalID        string          `json:"external_id"`
	Address1          string          `json:"address1"`
	Address2          string          `json:"address2"`
	Address3          string          `json:"address3"`
	City              string          `json:"city"`
	State             string          `json:"state"`
	Zipcode           string          `json:"zipcode"`
	Bedroom           json.RawMessage `json:"bedroom"`
	LastScheduledDate string          `json:"last_scheduled_date"`
	LastPassedDate    string          `json:"last_passed_date"`
}

// IntegrationList is BOB's get_integration_data envelope. Records are kept
// raw so each one decodes on its own.
type IntegrationList struct {
	Data []json.RawMessage `json:"data"`
}

// IntegrationRecord is a pending outbound update queued in BOB. Its ID is
// also the PHA unit id.
type IntegrationRecord struct {
	ID   ID              `json:"id"`
	Data IntegrationData `json:"data"`

	// DecodeErr is set when the record could not be decoded; only the ids
	// are filled in that case.
	DecodeErr error `json:"-"`
}

type IntegrationData struct {
	TenantID          ID   `json:"tenant_id"`
	LastScheduledDate Text `json:"last_scheduled_date"`
	LastPassedDate    Text `json:"last_passed_date"`
}

// DateUpdate is the PUT body sent back to PHA. Empty dates are left out.
type DateUpdate struct {
	LastAnnualInspectionDate string `json:"LastAnnualInspectionDate,omitempty"`
	LastPassedInspectionDate string `json:"LastPassedInspectionDate,omitempty"`
}

// Empty reports whether neither date is set.
func (d DateUpdate) Empty() bool {
	return d.LastAnnualInspectionDate == "" && d.LastPassedInspectionDate == ""
}

const IntegrationStatusCompleted = "COMPLETED"

// IntegrationStatusUpdate is the body of BOB's update_integration_data call.
type IntegrationStatusUpdate struct {
	ID     ID     `json:"id"`
	Status string `json:"status"`
}

// RecordFailure describes one record that was skipped or failed during a run.
type RecordFailure struct {
	Record map[string]string `json:"record"`
	Stage  string            `json:"stage"`
	Reason string            `json:"reason"`
}

// RunReport summarizes one execution of a sync job.
type RunReport struct {
	Script     string          `json:"script"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Total      int             `json:"total"`
	Succeeded  int             `json:"succeeded"`
	Failed     int             `json:"failed"`
	Skipped    int             `json:"skipped"`
	Failures   []RecordFailure `json:"failures,omitempty"`
}
