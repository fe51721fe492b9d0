// Package bob talks to the BOB master-data and integration-log API.
package bob

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

const (
	DefaultInstanceURL           = "https://api-staging.bob.ai"
	DefaultMasterDataPath        = "/api/masters/create_new_data"
	DefaultIntegrationListPath   = "/api/data_logs/get_integration_data"
	DefaultIntegrationUpdatePath = "/api/data_logs/update_integration_data"
)

// Config holds the BOB instance, API key and endpoint paths.
type Config struct {
	InstanceURL           string
	APIKey                string
	MasterDataPath        string
	IntegrationListPath   string
	IntegrationUpdatePath string
}

// Client issues BOB calls with a Bearer API key.
type Client struct {
	masterDataURL        string
	integrationListURL   string
	integrationUpdateURL string
	authHeader           string
	http                 httpclient.Client
}

// NewClient validates cfg, fills default paths and binds it to the transport.
func NewClient(cfg Config, http httpclient.Client) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.InstanceURL), "/")
	if base == "" {
		return nil, fmt.Errorf("bob instance url is empty")
	}
	if http == nil {
		return nil, fmt.Errorf("bob http client is nil")
	}

	return &Client{
		masterDataURL:        base + pathOr(cfg.MasterDataPath, DefaultMasterDataPath),
		integrationListURL:   base + pathOr(cfg.IntegrationListPath, DefaultIntegrationListPath),
		integrationUpdateURL: base + pathOr(cfg.IntegrationUpdatePath, DefaultIntegrationUpdatePath),
		authHeader:           httpclient.Bearer(cfg.APIKey),
		http:                 http,
	}, nil
}

// CreateMasterData pushes one tenant/landlord/unit bundle into BOB.
func (c *Client) CreateMasterData(ctx context.Context, req domain.MasterDataRequest) (response.Payload, error) {
	return c.postJSON(ctx, "bob.create_master_data", c.masterDataURL, req)
}

// PendingUnitUpdates lists export integration records waiting to update units in PHA.
func (c *Client) PendingUnitUpdates(ctx context.Context) ([]domain.IntegrationRecord, error) {
	errCtx := map[string]any{"endpoint": "bob.get_integration_data", "url": c.integrationListURL}

	res := response.Call(ctx, c.http, httpclient.Request{
		Method: httpclient.MethodGet,
		URL:    c.integrationListURL,
		Query: map[string]string{
			"type":   "export",
			"action": "update_unit",
			"status": "PENDING",
		},
		Headers: map[string]string{"Authorization": c.authHeader},
	})
	if err := res.ErrWith(errCtx); err != nil {
		return nil, err
	}

	var list domain.IntegrationList
	if err := res.Payload.Decode(&list); err != nil {
		return nil, apperrors.NewAPIError("decode integration data", res.StatusCode, errCtx).WithCause(err)
	}
	out := make([]domain.IntegrationRecord, 0, len(list.Data))
	for _, raw := range list.Data {
		out = append(out, decodeRecord(raw))
	}
	return out, nil
}

// decodeRecord decodes one queued record. A record that does not fit keeps
// whatever ids can be read from it and carries the error.
func decodeRecord(raw json.RawMessage) domain.IntegrationRecord {
	var rec domain.IntegrationRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.IntegrationRecord{
			ID: domain.RawID(gjson.GetBytes(raw, "id").Raw),
			Data: domain.IntegrationData{
				TenantID: domain.RawID(gjson.GetBytes(raw, "data.tenant_id").Raw),
			},
			DecodeErr: err,
		}
	}
	return rec
}

// CompleteIntegration marks an integration record as COMPLETED.
func (c *Client) CompleteIntegration(ctx context.Context, id domain.ID) (response.Payload, error) {
	return c.postJSON(ctx, "bob.update_integration_data", c.integrationUpdateURL, domain.IntegrationStatusUpdate{
		ID:     id,
		Status: domain.IntegrationStatusCompleted,
	})
}

func (c *Client) postJSON(ctx context.Context, endpoint, url string, payload any) (response.Payload, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return response.Payload{}, fmt.Errorf("marshal %s payload: %w", endpoint, err)
	}

	res := response.Call(ctx, c.http, httpclient.Request{
		Method: httpclient.MethodPost,
		URL:    url,
		Headers: map[string]string{
			"Authorization": c.authHeader,
			"Content-Type":  "application/json",
		},
		Body: body,
	})
	if err := res.ErrWith(map[string]any{"endpoint": endpoint, "url": url}); err != nil {
		return response.Payload{}, err
	}
	return res.Payload, nil
}

func pathOr(path, fallback string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = fallback
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
