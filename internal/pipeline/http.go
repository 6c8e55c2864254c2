package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/records"
)

// Endpoints holds the deployment-supplied base URLs of downstream services.
// Empty entries disable the corresponding client.
type Endpoints struct {
	Ingestion        string `toml:"ingestion_url"`
	Normalization    string `toml:"normalization_url"`
	Validation       string `toml:"validation_url"`
	ReportGeneration string `toml:"report_generation_url"`
	Submission       string `toml:"submission_url"`
	ErrorManager     string `toml:"error_manager_url"`
}

type httpClient struct {
	base   string
	client *http.Client
}

func newHTTPClient(base string, timeout time.Duration) httpClient {
	return httpClient{
		base:   base,
		client: &http.Client{Timeout: timeout},
	}
}

func (c httpClient) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode forward payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build forward request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("forward to %s: %w", c.base+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("forward to %s: status %d: %s", c.base+path, resp.StatusCode, detail)
	}

	return nil
}

// HTTPIngestion forwards raw batches to the ingestion gateway.
type HTTPIngestion struct{ httpClient }

// NewHTTPIngestion creates an ingestion client with the given forwarding timeout.
func NewHTTPIngestion(base string, timeout time.Duration) *HTTPIngestion {
	return &HTTPIngestion{newHTTPClient(base, timeout)}
}

func (c *HTTPIngestion) Forward(ctx context.Context, batch []records.RawTrade) error {
	return c.post(ctx, "/ingest", batch)
}

// HTTPNormalization forwards raw batches to the normalization stage.
type HTTPNormalization struct{ httpClient }

// NewHTTPNormalization creates a normalization client with the given forwarding timeout.
func NewHTTPNormalization(base string, timeout time.Duration) *HTTPNormalization {
	return &HTTPNormalization{newHTTPClient(base, timeout)}
}

func (c *HTTPNormalization) Forward(ctx context.Context, batch []records.RawTrade) error {
	return c.post(ctx, "/process", batch)
}

// HTTPValidation forwards canonical records to the validation stage.
type HTTPValidation struct{ httpClient }

// NewHTTPValidation creates a validation client with the given forwarding timeout.
func NewHTTPValidation(base string, timeout time.Duration) *HTTPValidation {
	return &HTTPValidation{newHTTPClient(base, timeout)}
}

func (c *HTTPValidation) Forward(ctx context.Context, batch []records.CanonicalRecord) error {
	return c.post(ctx, "/validate", batch)
}

// HTTPReportGeneration forwards valid records to report generation.
type HTTPReportGeneration struct{ httpClient }

// NewHTTPReportGeneration creates a report generation client with the given forwarding timeout.
func NewHTTPReportGeneration(base string, timeout time.Duration) *HTTPReportGeneration {
	return &HTTPReportGeneration{newHTTPClient(base, timeout)}
}

func (c *HTTPReportGeneration) Forward(ctx context.Context, batch []records.CanonicalRecord) error {
	return c.post(ctx, "/generate-report", batch)
}

// HTTPSubmission forwards an artifact descriptor to the submission stage.
// Submission calls run with a longer timeout than intra-pipeline forwarding.
type HTTPSubmission struct{ httpClient }

// NewHTTPSubmission creates a submission client with the given timeout.
func NewHTTPSubmission(base string, timeout time.Duration) *HTTPSubmission {
	return &HTTPSubmission{newHTTPClient(base, timeout)}
}

func (c *HTTPSubmission) Forward(ctx context.Context, reportID uuid.UUID) error {
	return c.post(ctx, "/submit-report", map[string]string{"report_id": reportID.String()})
}

// HTTPErrorSink reports failures to the error manager.
type HTTPErrorSink struct{ httpClient }

// NewHTTPErrorSink creates an error manager client with the given forwarding timeout.
func NewHTTPErrorSink(base string, timeout time.Duration) *HTTPErrorSink {
	return &HTTPErrorSink{newHTTPClient(base, timeout)}
}

func (c *HTTPErrorSink) Report(ctx context.Context, reports []ErrorReport) error {
	return c.post(ctx, "/report_error", reports)
}
