// Package response turns raw PHA/BOB HTTP responses into success payloads or
// display-ready failure messages.
package response

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/Adda-Baaj/pha-bob-sync/pkg/httpclient"
	"github.com/tidwall/gjson"
)

// MsgUnparseableJSON is returned when a response claims JSON but is malformed.
const MsgUnparseableJSON = "Unable to parse response as JSON"

// Classify inspects resp and decides success or failure. It reads the
// response but never modifies it and performs no I/O.
func Classify(resp httpclient.Response) Result {
	if resp == nil {
		return Failure("no response received")
	}

	status := resp.StatusCode()
	body := resp.Body()

	if isJSONContent(resp.Header("Content-Type")) {
		return classifyJSON(status, body)
	}

	if isSuccessStatus(status) && len(body) == 0 {
		return Success(EmptyPayload())
	}

	return failureWithStatus(status, fmt.Sprintf(
		"Can't process response from server. Status Code: %d Data from server: %s",
		status, escapeBraces(string(body))))
}

func classifyJSON(status int, body []byte) Result {
	if !gjson.ValidBytes(body) {
		return failureWithStatus(status, MsgUnparseableJSON)
	}

	if isSuccessStatus(status) {
		return Success(NewPayload(body))
	}

	return failureWithStatus(status, serverErrorMessage(status, body))
}

// serverErrorMessage prefers a structured {code, message} error object and
// falls back to the raw body text.
func serverErrorMessage(status int, body []byte) string {
	if info, ok := errorInfo(gjson.ParseBytes(body)); ok {
		code, msg := info.Get("code"), info.Get("message")
		if truthy(code) && truthy(msg) {
			// code is printed under 'message' and message under 'detail'.
			return fmt.Sprintf("Error from server, Status Code: %d data returned: {'message': %s, 'detail': %s}",
				status, pyRepr(code), pyRepr(msg))
		}
	}
	return fmt.Sprintf("Error from server, Status Code: %d data returned: %s", status, escapeBraces(string(body)))
}

// errorInfo returns the object that may carry code/message. A string body is
// its own error info but can never hold fields.
func errorInfo(parsed gjson.Result) (gjson.Result, bool) {
	if !parsed.IsObject() {
		return gjson.Result{}, false
	}
	info := parsed.Get("error")
	if !info.IsObject() {
		return gjson.Result{}, false
	}
	return info, true
}

func isJSONContent(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

// isSuccessStatus reports whether status lies in [200, 205).
func isSuccessStatus(status int) bool {
	return status >= 200 && status < 205
}

// escapeBraces doubles every { and } so the text survives template formatting downstream.
func escapeBraces(s string) string {
	return strings.NewReplacer("{", "{{", "}", "}}").Replace(s)
}

// truthy follows JSON-falsy rules: null, false, 0, "", [] and {} are false.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	case gjson.JSON:
		nonEmpty := false
		r.ForEach(func(_, _ gjson.Result) bool {
			nonEmpty = true
			return false
		})
		return nonEmpty
	default:
		return false
	}
}

// pyRepr renders a JSON value the way Python's repr prints it once loaded:
// single-quoted strings, True/False/None, floats with a decimal point.
func pyRepr(r gjson.Result) string {
	var b strings.Builder
	writeRepr(&b, r)
	return b.String()
}

func writeRepr(b *strings.Builder, r gjson.Result) {
	switch {
	case r.Type == gjson.String:
		b.WriteString(quoteSingle(r.Str))
	case r.Type == gjson.True:
		b.WriteString("True")
	case r.Type == gjson.False:
		b.WriteString("False")
	case r.Type == gjson.Null:
		b.WriteString("None")
	case r.Type == gjson.Number:
		b.WriteString(numberRepr(r.Raw))
	case r.IsArray():
		b.WriteByte('[')
		for i, v := range r.Array() {
			if i > 0 {
				b.WriteString(", ")
			}
			writeRepr(b, v)
		}
		b.WriteByte(']')
	case r.IsObject():
		// Repeated keys keep their first position and their last value.
		var keys []string
		values := make(map[string]gjson.Result)
		r.ForEach(func(k, v gjson.Result) bool {
			if _, seen := values[k.Str]; !seen {
				keys = append(keys, k.Str)
			}
			values[k.Str] = v
			return true
		})
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quoteSingle(k))
			b.WriteString(": ")
			writeRepr(b, values[k])
		}
		b.WriteByte('}')
	default:
		b.WriteString(r.Raw)
	}
}

// numberRepr keeps integers as written and prints other numbers as Python
// floats: 1e2 is 100.0, 1e-05 and 1e+16 switch to exponent form.
func numberRepr(raw string) string {
	if !strings.ContainsAny(raw, ".eE") {
		if raw == "-0" {
			return "0"
		}
		return raw
	}
	f, err := strconv.ParseFloat(raw, 64)
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case err != nil:
		return raw
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	if exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:]); err == nil && (exp < -4 || exp >= 16) {
		return sci
	}
	out := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

func quoteSingle(s string) string {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var b strings.Builder
	b.WriteRune(quote)
	for _, c := range s {
		switch {
		case c == '\\':
			b.WriteString(`\\`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == quote:
			b.WriteRune('\\')
			b.WriteRune(c)
		case unicode.IsPrint(c):
			b.WriteRune(c)
		case c < 0x100:
			fmt.Fprintf(&b, `\x%02x`, c)
		case c < 0x10000:
			fmt.Fprintf(&b, `\u%04x`, c)
		default:
			fmt.Fprintf(&b, `\U%08x`, c)
		}
	}
	b.WriteRune(quote)
	return b.String()
}
