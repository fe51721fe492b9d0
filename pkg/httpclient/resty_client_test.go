package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientDispatchesEachMethod(t *testing.T) {
	for _, method := range []Method{MethodGet, MethodPost, MethodPut} {
		t.Run(string(method), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != string(method) {
					t.Errorf("expected %s, got %s", method, r.Method)
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"ok":true}`))
			}))
			defer srv.Close()

			client := NewRestyClient(2 * time.Second)
			resp, err := client.Do(context.Background(), Request{Method: method, URL: srv.URL})
			if err != nil {
				t.Fatalf("Do: %v", err)
			}
			if resp.StatusCode() != http.StatusOK {
				t.Fatalf("unexpected status %d", resp.StatusCode())
			}
			if got := resp.Header("content-type"); got != "application/json" {
				t.Fatalf("case-insensitive header lookup failed, got %q", got)
			}
			if string(resp.Body()) != `{"ok":true}` {
				t.Fatalf("unexpected body %s", resp.Body())
			}
		})
	}
}

func TestRestyClientSendsQueryHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("tenantid"); got != "954257" {
			t.Errorf("tenantid = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != BasicAuth("user", "pass") {
			t.Errorf("Authorization = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"a":1}` {
			t.Errorf("body = %s", body)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewRestyClient(2 * time.Second)
	resp, err := client.Do(context.Background(), Request{
		Method:  MethodPut,
		URL:     srv.URL,
		Query:   map[string]string{"tenantid": "954257"},
		Headers: map[string]string{"Authorization": BasicAuth("user", "pass"), "Content-Type": "application/json"},
		Body:    []byte(`{"a":1}`),
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode() != http.StatusNoContent {
		t.Fatalf("unexpected status %d", resp.StatusCode())
	}
	if len(resp.Body()) != 0 {
		t.Fatalf("expected empty body, got %q", resp.Body())
	}
}

func TestRestyClientRejectsUnknownMethod(t *testing.T) {
	client := NewRestyClient(time.Second)
	if _, err := client.Do(context.Background(), Request{Method: "PATCH", URL: "http://127.0.0.1"}); err == nil {
		t.Fatalf("expected error for unsupported method")
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" put ")
	if err != nil || m != MethodPut {
		t.Fatalf("ParseMethod(put) = %q, %v", m, err)
	}
	if _, err := ParseMethod("delete"); err == nil {
		t.Fatalf("expected delete to be rejected")
	}
}

func TestAuthHeaders(t *testing.T) {
	if got := BasicAuth("user", "pass"); got != "Basic dXNlcjpwYXNz" {
		t.Fatalf("BasicAuth = %q", got)
	}
	if got := Bearer("k"); got != "Bearer k" {
		t.Fatalf("Bearer = %q", got)
	}
}
