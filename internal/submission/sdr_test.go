package submission

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPSDRSubmit(t *testing.T) {
	var gotFilename, gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilename = r.Header.Get("X-Report-Filename")
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(`{"status":"Accepted","sdr_ack_id":"ACK-001"}`))
	}))
	defer server.Close()

	sdr := NewHTTPSDR(server.URL, time.Second)
	ack, err := sdr.Submit(context.Background(), "swap_report_batch_20250101120000_abc123.txt",
		strings.NewReader("## Swap Report Batch"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if gotFilename != "swap_report_batch_20250101120000_abc123.txt" {
		t.Errorf("filename header = %q", gotFilename)
	}
	if gotContentType != "text/plain" {
		t.Errorf("content type = %q", gotContentType)
	}
	if gotBody != "## Swap Report Batch" {
		t.Errorf("body = %q", gotBody)
	}
	if string(ack) != `{"status":"Accepted","sdr_ack_id":"ACK-001"}` {
		t.Errorf("ack = %s", ack)
	}
}

func TestHTTPSDRSubmitRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "schema violation", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	sdr := NewHTTPSDR(server.URL, time.Second)
	if _, err := sdr.Submit(context.Background(), "report.txt", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for 422 response")
	}
}

func TestHTTPSDRSubmitInvalidAck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	sdr := NewHTTPSDR(server.URL, time.Second)
	if _, err := sdr.Submit(context.Background(), "report.txt", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for non-JSON acknowledgment")
	}
}
