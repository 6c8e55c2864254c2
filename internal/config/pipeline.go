package config

import (
	"fmt"
	"os"
	"time"

	"github.com/todd-jang/swap-reporting-mvp/internal/pipeline"
)

const (
	EnvIngestionURL        = "SWAP_PIPELINE_INGESTION_URL"
	EnvNormalizationURL    = "SWAP_PIPELINE_NORMALIZATION_URL"
	EnvValidationURL       = "SWAP_PIPELINE_VALIDATION_URL"
	EnvReportGenerationURL = "SWAP_PIPELINE_REPORT_GENERATION_URL"
	EnvSubmissionURL       = "SWAP_PIPELINE_SUBMISSION_URL"
	EnvErrorManagerURL     = "SWAP_PIPELINE_ERROR_MANAGER_URL"
	EnvForwardTimeout      = "SWAP_PIPELINE_FORWARD_TIMEOUT"
	EnvSubmitTimeout       = "SWAP_PIPELINE_SUBMIT_TIMEOUT"
	EnvSDRURL              = "SWAP_PIPELINE_SDR_URL"
)

// PipelineConfig holds downstream service locations and call timeouts.
// Topology comes from deployment configuration, never from code.
type PipelineConfig struct {
	Endpoints      pipeline.Endpoints `toml:"endpoints"`
	SDRURL         string             `toml:"sdr_url"`
	ForwardTimeout string             `toml:"forward_timeout"`
	SubmitTimeout  string             `toml:"submit_timeout"`
}

// ForwardTimeoutDuration returns the intra-pipeline forwarding timeout.
func (c *PipelineConfig) ForwardTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ForwardTimeout)
	return d
}

// SubmitTimeoutDuration returns the SDR submission timeout.
func (c *PipelineConfig) SubmitTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.SubmitTimeout)
	return d
}

// Finalize applies defaults, environment overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	if c.ForwardTimeout == "" {
		c.ForwardTimeout = "30s"
	}
	if c.SubmitTimeout == "" {
		c.SubmitTimeout = "5m"
	}

	overrides := map[string]*string{
		EnvIngestionURL:        &c.Endpoints.Ingestion,
		EnvNormalizationURL:    &c.Endpoints.Normalization,
		EnvValidationURL:       &c.Endpoints.Validation,
		EnvReportGenerationURL: &c.Endpoints.ReportGeneration,
		EnvSubmissionURL:       &c.Endpoints.Submission,
		EnvErrorManagerURL:     &c.Endpoints.ErrorManager,
		EnvForwardTimeout:      &c.ForwardTimeout,
		EnvSubmitTimeout:       &c.SubmitTimeout,
		EnvSDRURL:              &c.SDRURL,
	}
	for key, dst := range overrides {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if _, err := time.ParseDuration(c.ForwardTimeout); err != nil {
		return fmt.Errorf("invalid forward_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.SubmitTimeout); err != nil {
		return fmt.Errorf("invalid submit_timeout: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	merge := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	merge(&c.Endpoints.Ingestion, overlay.Endpoints.Ingestion)
	merge(&c.Endpoints.Normalization, overlay.Endpoints.Normalization)
	merge(&c.Endpoints.Validation, overlay.Endpoints.Validation)
	merge(&c.Endpoints.ReportGeneration, overlay.Endpoints.ReportGeneration)
	merge(&c.Endpoints.Submission, overlay.Endpoints.Submission)
	merge(&c.Endpoints.ErrorManager, overlay.Endpoints.ErrorManager)
	merge(&c.SDRURL, overlay.SDRURL)
	merge(&c.ForwardTimeout, overlay.ForwardTimeout)
	merge(&c.SubmitTimeout, overlay.SubmitTimeout)
}
