package response

import (
	"bytes"
	"context"
	"strings"

	"github.com/Adda-Baaj/pha-bob-sync/pkg/httpclient"

	"github.com/PuerkitoBio/goquery"
)

const maxSummaryLen = 512

// Call sends req through client and classifies the reply. Transport errors
// become failures carrying the error text; nothing is returned as a Go error.
func Call(ctx context.Context, client httpclient.Client, req httpclient.Request) Result {
	if client == nil {
		return Failure("http client is not configured")
	}

	resp, err := client.Do(ctx, req)
	if err != nil {
		return Failure(err.Error())
	}

	res := Classify(resp)
	if !res.OK {
		res.Summary = Summarize(resp)
	}
	return res
}

// Summarize returns the page title of an HTML body, or a trimmed snippet of
// any other body.
func Summarize(resp httpclient.Response) string {
	if resp == nil {
		return ""
	}
	body := resp.Body()
	if strings.Contains(strings.ToLower(resp.Header("Content-Type")), "html") {
		if title := htmlTitle(body); title != "" {
			return title
		}
	}
	return snippet(body)
}

func htmlTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	for _, sel := range []string{"title", "h1"} {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return truncate(text)
		}
	}
	return ""
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "<empty>"
	}
	return truncate(s)
}

func truncate(s string) string {
	if len(s) > maxSummaryLen {
		return s[:maxSummaryLen] + "..."
	}
	return s
}
