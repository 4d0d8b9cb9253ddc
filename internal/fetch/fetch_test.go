package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendReadsBodyAndTitle(t *testing.T) {
	body := "<html><head><title>\n  Rocket Shop </title></head><body>ok</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "scan-agent" {
			t.Errorf("user agent not forwarded, got %q", got)
		}
		if r.Method != "GET" {
			t.Errorf("expected default GET, got %s", r.Method)
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	res, err := Send(context.Background(), &Request{URL: srv.URL, UserAgent: "scan-agent"}, nil)
	if err != nil {
		t.Fatalf("send failed: %s", err)
	}

	if res.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", res.StatusCode)
	}
	if res.Body != body {
		t.Errorf("body mismatch: %q", res.Body)
	}
	if res.Title != "Rocket Shop" {
		t.Errorf("expected cleaned title, got %q", res.Title)
	}
	if res.Length != len(body) {
		t.Errorf("expected length %d, got %d", len(body), res.Length)
	}
}

func TestSendWithoutTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("plain text, nothing to see"))
	}))
	defer srv.Close()

	res, err := Send(context.Background(), &Request{URL: srv.URL}, nil)
	if err != nil {
		t.Fatalf("send failed: %s", err)
	}

	if res.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", res.StatusCode)
	}
	if res.Title != "" {
		t.Errorf("expected no title, got %q", res.Title)
	}
}

func TestSendCustomHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Scan-Run"); got != "42" {
			t.Errorf("custom header not forwarded, got %q", got)
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	_, err := Send(context.Background(), &Request{
		URL:     srv.URL,
		Headers: []Header{{Name: "X-Scan-Run", Value: "42"}},
	}, nil)
	if err != nil {
		t.Fatalf("send failed: %s", err)
	}
}
