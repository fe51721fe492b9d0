// Package pha talks to the PHA web inspection API.
package pha

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Adda-Baaj/pha-bob-sync/internal/domain"
	apperrors "github.com/Adda-Baaj/pha-bob-sync/pkg/errors"
	"github.com/Adda-Baaj/pha-bob-sync/pkg/httpclient"
	"github.com/Adda-Baaj/pha-bob-sync/pkg/response"
	"github.com/tidwall/gjson"
)

// DefaultInspectionURL is the production active-tenants endpoint.
const DefaultInspectionURL = "https://www.pha-web.com/inspectionAPI/inspection/activetenants"

// Config holds the static credentials and endpoint for PHA.
type Config struct {
	InspectionURL string
	Username      string
	Password      string
}

// Client issues PHA calls with Basic auth.
type Client struct {
	inspectionURL string
	authHeader    string
	http          httpclient.Client
}

// NewClient validates cfg and binds it to the given transport.
func NewClient(cfg Config, http httpclient.Client) (*Client, error) {
	url := strings.TrimSpace(cfg.InspectionURL)
	if url == "" {
		return nil, fmt.Errorf("pha inspection url is empty")
	}
	if http == nil {
		return nil, fmt.Errorf("pha http client is nil")
	}
	return &Client{
		inspectionURL: url,
		authHeader:    httpclient.BasicAuth(cfg.Username, cfg.Password),
		http:          http,
	}, nil
}

// ActiveTenants fetches every active tenant inspection record. An empty feed
// returns a nil slice and no error.
func (c *Client) ActiveTenants(ctx context.Context) ([]domain.Inspection, error) {
	errCtx := map[string]any{"endpoint": "pha.active_tenants", "url": c.inspectionURL}

	res := response.Call(ctx, c.http, httpclient.Request{
		Method:  httpclient.MethodGet,
		URL:     c.inspectionURL,
		Headers: map[string]string{"Authorization": c.authHeader},
	})
	if err := res.ErrWith(errCtx); err != nil {
		return nil, err
	}
	if res.Payload.Empty() {
		return nil, nil
	}

	var rows []json.RawMessage
	if err := res.Payload.Decode(&rows); err != nil {
		return nil, apperrors.NewAPIError("decode active tenants", res.StatusCode, errCtx).WithCause(err)
	}
	out := make([]domain.Inspection, 0, len(rows))
	for _, raw := range rows {
		out = append(out, decodeInspection(raw))
	}
	return out, nil
}

// decodeInspection decodes one feed row. A row that does not fit keeps its
// ids for logging and carries the error.
func decodeInspection(raw json.RawMessage) domain.Inspection {
	var insp domain.Inspection
	if err := json.Unmarshal(raw, &insp); err != nil {
		ids := gjson.GetManyBytes(raw, "TenantID", "LandlordID", "UnitID")
		return domain.Inspection{
			TenantID:   domain.RawID(ids[0].Raw),
			LandlordID: domain.RawID(ids[1].Raw),
			UnitID:     domain.RawID(ids[2].Raw),
			DecodeErr:  err,
		}
	}
	return insp
}

// UpdateInspectionDates writes inspection dates back to PHA for one tenant/unit.
func (c *Client) UpdateInspectionDates(ctx context.Context, tenantID, unitID domain.ID, upd domain.DateUpdate) (response.Payload, error) {
	if upd.Empty() {
		return response.Payload{}, apperrors.NewValidationError("either last scheduled date or last passed date must be provided", "dates", upd)
	}

	body, err := json.Marshal(upd)
	if err != nil {
		return response.Payload{}, fmt.Errorf("marshal date update: %w", err)
	}

	query := map[string]string{
		"tenantid": tenantID.String(),
		"unitid":   unitID.String(),
	}
	res := response.Call(ctx, c.http, httpclient.Request{
		Method: httpclient.MethodPut,
		URL:    c.inspectionURL,
		Query:  query,
		Headers: map[string]string{
			"Authorization": c.authHeader,
			"Content-Type":  "application/json",
		},
		Body: body,
	})
	if err := res.ErrWith(map[string]any{"endpoint": "pha.update_inspection_dates", "url": c.inspectionURL}); err != nil {
		return response.Payload{}, err
	}
	return res.Payload, nil
}
