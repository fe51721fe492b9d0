package response

import (
	"encoding/json"

	apperrors "github.com/Adda-Baaj/pha-bob-sync/pkg/errors"
	"github.com/tidwall/gjson"
)

// Result is the outcome of one classified call: either OK with a Payload or
// a failure with a display Message.
type Result struct {
	OK      bool
	Payload Payload
	Message string
	// StatusCode is zero when no response was received.
	StatusCode int
	// Summary is a short readable excerpt of a failed response body, for logs.
	Summary string
}

// Success wraps a parsed payload.
func Success(p Payload) Result {
	return Result{OK: true, Payload: p}
}

// Failure wraps an error description.
func Failure(message string) Result {
	return Result{Message: message}
}

func failureWithStatus(status int, message string) Result {
	return Result{Message: message, StatusCode: status}
}

// Err returns nil for a success and an *errors.APIError otherwise.
func (r Result) Err() error {
	return r.ErrWith(nil)
}

// ErrWith is Err with extra error context (endpoint, url, record keys).
func (r Result) ErrWith(context map[string]any) error {
	if r.OK {
		return nil
	}
	apiErr := apperrors.NewAPIError(r.Message, r.StatusCode, nil).WithContext(context)
	if r.Summary != "" {
		apiErr.WithContext(map[string]any{"response_summary": r.Summary})
	}
	return apiErr
}

// Payload holds the exact JSON bytes of a successful response body. The zero
// value behaves as JSON null.
type Payload struct {
	raw []byte
}

// NewPayload copies raw, which must be valid JSON.
func NewPayload(raw []byte) Payload {
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return Payload{raw: cp}
}

// EmptyPayload is the payload of a bodiless success: the JSON string "".
func EmptyPayload() Payload {
	return Payload{raw: []byte(`""`)}
}

// Bytes returns a copy of the JSON text.
func (p Payload) Bytes() []byte {
	if len(p.raw) == 0 {
		return []byte("null")
	}
	cp := make([]byte, len(p.raw))
	copy(cp, p.raw)
	return cp
}

func (p Payload) String() string {
	return string(p.Bytes())
}

// MarshalJSON emits the received bytes so field order is preserved.
func (p Payload) MarshalJSON() ([]byte, error) {
	return p.Bytes(), nil
}

// Decode unmarshals the payload into v.
func (p Payload) Decode(v any) error {
	return json.Unmarshal(p.Bytes(), v)
}

// Get looks up a gjson path in the payload.
func (p Payload) Get(path string) gjson.Result {
	return gjson.GetBytes(p.Bytes(), path)
}

// Empty reports whether the payload is JSON-falsy (null, false, 0, "", [] or {}).
func (p Payload) Empty() bool {
	return !truthy(gjson.ParseBytes(p.Bytes()))
}
