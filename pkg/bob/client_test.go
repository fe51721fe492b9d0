package bob

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Adda-Baaj/pha-bob-sync/internal/domain"
	apperrors "github.com/Adda-Baaj/pha-bob-sync/pkg/errors"
	"github.com/Adda-Baaj/pha-bob-sync/pkg/httpclient"
)

func newTestClient(t *testing.T, base string) *Client {
	t.Helper()
	c, err := NewClient(Config{InstanceURL: base + "/", APIKey: "secret"}, httpclient.NewRestyClient(2*time.Second))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestCreateMasterDataPostsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != DefaultMasterDataPath {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		var req domain.MasterDataRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.Count != 1 || req.CustomerCode != "TX009" {
			t.Errorf("unexpected request %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","created":1}`))
	}))
	defer srv.Close()

	payload, err := newTestClient(t, srv.URL).CreateMasterData(context.Background(), domain.MasterDataRequest{
		Count:        1,
		CustomerCode: "TX009",
		Data:         []domain.MasterDataEntry{{}},
	})
	if err != nil {
		t.Fatalf("CreateMasterData: %v", err)
	}
	if payload.Get("created").Int() != 1 {
		t.Fatalf("unexpected payload %s", payload.String())
	}
}

func TestCreateMasterDataServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": "E1", "message": "bad input"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).CreateMasterData(context.Background(), domain.MasterDataRequest{})
	if err == nil || !strings.Contains(err.Error(), "'detail': 'bad input'") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestPendingUnitUpdatesQueriesQueue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != DefaultIntegrationListPath || q.Get("type") != "export" || q.Get("action") != "update_unit" || q.Get("status") != "PENDING" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":310149,"data":{"tenant_id":954257,"last_passed_date":"2022-09-20 12:00:00"}}]}`))
	}))
	defer srv.Close()

	records, err := newTestClient(t, srv.URL).PendingUnitUpdates(context.Background())
	if err != nil {
		t.Fatalf("PendingUnitUpdates: %v", err)
	}
	if len(records) != 1 || records[0].ID.String() != "310149" || records[0].Data.LastPassedDate != "2022-09-20 12:00:00" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestPendingUnitUpdatesRejectsNonObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[1,2]`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).PendingUnitUpdates(context.Background())
	var apiErr *apperrors.APIError
	if !errors.As(err, &apiErr) || apiErr.Cause == nil || apiErr.Context["endpoint"] != "bob.get_integration_data" {
		t.Fatalf("expected *APIError with cause, got %T %v", err, err)
	}
}

func TestPendingUnitUpdatesKeepsRecordsAroundABadOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":1,"data":{"tenant_id":2,"last_passed_date":"2022-09-20"}},
			{"id":3,"data":{"tenant_id":4,"last_passed_date":{"v":"x"}}},
			{"id":"5","data":{"tenant_id":"6","last_scheduled_date":"2022-09-01"}}
		]}`))
	}))
	defer srv.Close()

	records, err := newTestClient(t, srv.URL).PendingUnitUpdates(context.Background())
	if err != nil {
		t.Fatalf("PendingUnitUpdates: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].DecodeErr != nil || records[2].DecodeErr != nil || records[2].Data.LastScheduledDate != "2022-09-01" {
		t.Fatalf("good records changed %+v", records)
	}
	bad := records[1]
	if bad.DecodeErr == nil || bad.ID.String() != "3" || bad.Data.TenantID.String() != "4" {
		t.Fatalf("unexpected bad record %+v", bad)
	}
}

func TestCompleteIntegrationKeepsIDType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != DefaultIntegrationUpdatePath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"id":310149,"status":"COMPLETED"}` {
			t.Errorf("unexpected body %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(t, srv.URL).CompleteIntegration(context.Background(), domain.NumberID(310149)); err != nil {
		t.Fatalf("CompleteIntegration: %v", err)
	}
}

func TestPathOr(t *testing.T) {
	if got := pathOr("", DefaultMasterDataPath); got != DefaultMasterDataPath {
		t.Fatalf("pathOr default = %q", got)
	}
	if got := pathOr("api/x", DefaultMasterDataPath); got != "/api/x" {
		t.Fatalf("pathOr relative = %q", got)
	}
}
