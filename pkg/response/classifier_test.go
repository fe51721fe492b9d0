package response

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/Adda-Baaj/pha-bob-sync/pkg/errors"
	"github.com/Adda-Baaj/pha-bob-sync/pkg/httpclient"
	"github.com/tidwall/gjson"
)

// stubResponse implements httpclient.Response.
type stubResponse struct {
	status  int
	headers map[string]string
	body    []byte
}

func (s stubResponse) Body() []byte    { return s.body }
func (s stubResponse) StatusCode() int { return s.status }
func (s stubResponse) Header(name string) string {
	for k, v := range s.headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func jsonResponse(status int, body string) stubResponse {
	return stubResponse{
		status:  status,
		headers: map[string]string{"Content-Type": "application/json"},
		body:    []byte(body),
	}
}

func TestClassifyJSONSuccessRange(t *testing.T) {
	bodies := []string{`{"data":[{"id":1}]}`, `[1,2,3]`, `"done"`}
	for status := 200; status < 205; status++ {
		for _, body := range bodies {
			res := Classify(jsonResponse(status, body))
			if !res.OK {
				t.Fatalf("status %d body %s: expected success, got %q", status, body, res.Message)
			}
			if res.Payload.String() != body {
				t.Fatalf("status %d: payload %s != body %s", status, res.Payload.String(), body)
			}
		}
	}
}

func TestClassifyMalformedJSON(t *testing.T) {
	for _, body := range []string{`{"data": [`, ``, `not json`} {
		res := Classify(jsonResponse(200, body))
		if res.OK {
			t.Fatalf("body %q: expected failure", body)
		}
		if res.Message != MsgUnparseableJSON {
			t.Fatalf("body %q: unexpected message %q", body, res.Message)
		}
	}
}

func TestClassifyStructuredServerError(t *testing.T) {
	res := Classify(jsonResponse(400, `{"error": {"code": "E1", "message": "bad input"}}`))
	if res.OK {
		t.Fatalf("expected failure")
	}
	want := "Error from server, Status Code: 400 data returned: {'message': 'E1', 'detail': 'bad input'}"
	if res.Message != want {
		t.Fatalf("message = %q\nwant      %q", res.Message, want)
	}
	if res.StatusCode != 400 {
		t.Fatalf("status = %d", res.StatusCode)
	}
}

func TestClassifyRawServerErrorEscapesBraces(t *testing.T) {
	body := `{"detail": "server exploded"}`
	res := Classify(jsonResponse(500, body))
	if res.OK {
		t.Fatalf("expected failure")
	}
	want := `Error from server, Status Code: 500 data returned: {{"detail": "server exploded"}}`
	if res.Message != want {
		t.Fatalf("message = %q\nwant      %q", res.Message, want)
	}
}

func TestClassifyServerErrorFallbacks(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "string body", body: `"access denied"`},
		{name: "array body", body: `[{"code":"E1","message":"m"}]`},
		{name: "error is string", body: `{"error": "boom"}`},
		{name: "missing message", body: `{"error": {"code": "E1"}}`},
		{name: "falsy code", body: `{"error": {"code": 0, "message": "m"}}`},
		{name: "empty message", body: `{"error": {"code": "E1", "message": ""}}`},
		{name: "null error", body: `{"error": null}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Classify(jsonResponse(422, tc.body))
			if res.OK {
				t.Fatalf("expected failure")
			}
			want := "Error from server, Status Code: 422 data returned: " + escapeBraces(tc.body)
			if res.Message != want {
				t.Fatalf("message = %q\nwant      %q", res.Message, want)
			}
		})
	}
}

func TestClassifyStructuredErrorRendersNonStringValues(t *testing.T) {
	res := Classify(jsonResponse(409, `{"error": {"code": 1001, "message": "it's taken"}}`))
	want := `Error from server, Status Code: 409 data returned: {'message': 1001, 'detail': "it's taken"}`
	if res.Message != want {
		t.Fatalf("message = %q\nwant      %q", res.Message, want)
	}
}

func TestClassifyStructuredErrorRendersNestedValues(t *testing.T) {
	res := Classify(jsonResponse(422, `{"error": {"code": {"field": "zip", "limits": [1e2, 2.50, true, null]}, "message": "bad\u0001value"}}`))
	want := `Error from server, Status Code: 422 data returned: {'message': {'field': 'zip', 'limits': [100.0, 2.5, True, None]}, 'detail': 'bad\x01value'}`
	if res.Message != want {
		t.Fatalf("message = %q\nwant      %q", res.Message, want)
	}
}

func TestPyRepr(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`12`, `12`},
		{`-0`, `0`},
		{`1.0`, `1.0`},
		{`1E2`, `100.0`},
		{`0.0001`, `0.0001`},
		{`0.00001`, `1e-05`},
		{`1e16`, `1e+16`},
		{`1e999`, `inf`},
		{`"tab\there"`, `'tab\there'`},
		{`"\u007f\u00a0"`, `'\x7f\xa0'`},
		{`"say \"hi\""`, `'say "hi"'`},
		{`"both ' and \""`, `'both \' and "'`},
		{`[]`, `[]`},
		{`{"a": 1, "b": {}, "a": 2}`, `{'a': 2, 'b': {}}`},
	}
	for _, tc := range cases {
		if got := pyRepr(gjson.Parse(tc.raw)); got != tc.want {
			t.Errorf("pyRepr(%s) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestClassifyStatus205IsNotSuccess(t *testing.T) {
	res := Classify(jsonResponse(205, `{"ok":true}`))
	if res.OK {
		t.Fatalf("205 must fall outside the success range")
	}
}

func TestClassifyJSONContentTypeVariants(t *testing.T) {
	resp := stubResponse{
		status:  200,
		headers: map[string]string{"content-type": "Application/JSON; charset=utf-8"},
		body:    []byte(`{"a":1}`),
	}
	if res := Classify(resp); !res.OK {
		t.Fatalf("expected JSON detection, got %q", res.Message)
	}
}

func TestClassifyNonJSONEmptySuccess(t *testing.T) {
	res := Classify(stubResponse{status: 204})
	if !res.OK {
		t.Fatalf("expected success, got %q", res.Message)
	}
	if res.Payload.String() != `""` || !res.Payload.Empty() {
		t.Fatalf("expected empty string payload, got %s", res.Payload.String())
	}
}

func TestClassifyNonJSONFailures(t *testing.T) {
	res := Classify(stubResponse{
		status:  500,
		headers: map[string]string{"Content-Type": "text/plain"},
		body:    []byte("upstream {gateway} down"),
	})
	want := "Can't process response from server. Status Code: 500 Data from server: upstream {{gateway}} down"
	if res.OK || res.Message != want {
		t.Fatalf("result = %+v\nwant message %q", res, want)
	}

	res = Classify(stubResponse{status: 200, body: []byte("plain ok")})
	if res.OK {
		t.Fatalf("non-empty non-JSON body must not succeed")
	}

	res = Classify(stubResponse{status: 404})
	if res.OK {
		t.Fatalf("empty body with error status must not succeed")
	}
}

func TestClassifyRoundTripPreservesPayload(t *testing.T) {
	body := `{"zeta":1,"alpha":{"b":2,"a":[3,1]},"mid":"x","nil":null}`
	resp := jsonResponse(200, body)
	before := bytes.Clone(resp.body)

	res := Classify(resp)
	if !res.OK {
		t.Fatalf("expected success, got %q", res.Message)
	}

	out, err := json.Marshal(res.Payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if string(out) != body {
		t.Fatalf("round trip changed payload:\n got %s\nwant %s", out, body)
	}
	if !bytes.Equal(resp.body, before) {
		t.Fatalf("classifier mutated the response body")
	}

	var decoded struct {
		Zeta int    `json:"zeta"`
		Mid  string `json:"mid"`
	}
	if err := res.Payload.Decode(&decoded); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Zeta != 1 || decoded.Mid != "x" {
		t.Fatalf("unexpected decode %+v", decoded)
	}
	if got := res.Payload.Get("alpha.a.0").Int(); got != 3 {
		t.Fatalf("Get alpha.a.0 = %d", got)
	}
}

func TestPayloadEmpty(t *testing.T) {
	for _, body := range []string{`[]`, `{}`, `""`, `null`} {
		if !NewPayload([]byte(body)).Empty() {
			t.Fatalf("%s should be empty", body)
		}
	}
	if NewPayload([]byte(`[{}]`)).Empty() {
		t.Fatalf("non-empty array reported empty")
	}
	if !(Payload{}).Empty() {
		t.Fatalf("zero payload should be empty")
	}
}

func TestResultErr(t *testing.T) {
	if err := Success(EmptyPayload()).Err(); err != nil {
		t.Fatalf("success returned error %v", err)
	}

	res := Classify(jsonResponse(400, `{"error": {"code": "E1", "message": "bad input"}}`))
	err := res.Err()
	var apiErr *apperrors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.StatusCode != 400 || apiErr.Error() != res.Message {
		t.Fatalf("unexpected api error %+v", apiErr.SyncError)
	}
}

type failingClient struct{ err error }

func (f failingClient) Do(context.Context, httpclient.Request) (httpclient.Response, error) {
	return nil, f.err
}

type fixedClient struct{ resp httpclient.Response }

func (f fixedClient) Do(context.Context, httpclient.Request) (httpclient.Response, error) {
	return f.resp, nil
}

func TestCallConvertsTransportError(t *testing.T) {
	res := Call(context.Background(), failingClient{err: errors.New("dial tcp: connection refused")}, httpclient.Request{})
	if res.OK || res.Message != "dial tcp: connection refused" || res.StatusCode != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestCallSummarizesHTMLFailure(t *testing.T) {
	resp := stubResponse{
		status:  502,
		headers: map[string]string{"Content-Type": "text/html; charset=utf-8"},
		body:    []byte(`<html><head><title>502 Bad Gateway</title></head><body>{}</body></html>`),
	}
	res := Call(context.Background(), fixedClient{resp: resp}, httpclient.Request{Method: httpclient.MethodGet})
	if res.OK {
		t.Fatalf("expected failure")
	}
	if res.Summary != "502 Bad Gateway" {
		t.Fatalf("summary = %q", res.Summary)
	}
	if !strings.Contains(res.Message, "<body>{{}}</body>") {
		t.Fatalf("message must keep escaped raw text, got %q", res.Message)
	}
}

func TestCallWithoutClient(t *testing.T) {
	if res := Call(context.Background(), nil, httpclient.Request{}); res.OK {
		t.Fatalf("expected failure without client")
	}
}
