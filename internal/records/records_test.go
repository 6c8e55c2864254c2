package records

import (
	"encoding/json"
	"testing"
)

func TestFlexNumberUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  FlexNumber
	}{
		{"json number", `{"notional_amount": 1000000.50}`, "1000000.50"},
		{"quoted number", `{"notional_amount": "2500000"}`, "2500000"},
		{"quoted with spaces", `{"notional_amount": " 42 "}`, "42"},
		{"null", `{"notional_amount": null}`, ""},
		{"absent", `{}`, ""},
		{"non-numeric string", `{"notional_amount": "abc"}`, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var trade RawTrade
			if err := json.Unmarshal([]byte(tt.input), &trade); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if trade.NotionalAmount != tt.want {
				t.Errorf("got %q, want %q", trade.NotionalAmount, tt.want)
			}
		})
	}
}

func TestFlexNumberFloat(t *testing.T) {
	tests := []struct {
		name    string
		input   FlexNumber
		want    float64
		wantNil bool
		wantOK  bool
	}{
		{"valid", "1000000.50", 1000000.50, false, true},
		{"negative", "-5000", -5000, false, true},
		{"empty", "", 0, true, true},
		{"whitespace", "   ", 0, true, true},
		{"garbage", "abc", 0, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.input.Float()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.wantNil {
				if got != nil {
					t.Fatalf("got %v, want nil", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidLEI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid", "LEIREPORTING00000001", true},
		{"digits only", "12345678901234567890", true},
		{"too short", "LEISHORT123", false},
		{"too long", "LEIREPORTING000000012", false},
		{"special characters", "LEIREPORTING0000000!", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidLEI(tt.input); got != tt.want {
				t.Errorf("ValidLEI(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseStage(t *testing.T) {
	tests := []struct {
		input   string
		want    Stage
		wantErr bool
	}{
		{"ingestion", StageIngestion, false},
		{"data-ingestion", StageIngestion, false},
		{"normalization", StageNormalization, false},
		{"data-processing", StageNormalization, false},
		{"processing", StageNormalization, false},
		{"validation", StageValidation, false},
		{"report-generation", StageReportGeneration, false},
		{"report-submission", StageSubmission, false},
		{"submission", StageSubmission, false},
		{"unknown-module", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStage(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStageValid(t *testing.T) {
	for _, stage := range Stages {
		if !stage.Valid() {
			t.Errorf("stage %q should be valid", stage)
		}
	}
	if Stage("retrograde").Valid() {
		t.Error("unknown stage should not be valid")
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2024-01-15"); err != nil {
		t.Errorf("valid date rejected: %v", err)
	}
	for _, input := range []string{"", "15-01-2024", "2024/01/15", "not-a-date"} {
		if _, err := ParseDate(input); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}
