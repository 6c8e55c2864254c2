package records

import "fmt"

// Stage identifies a pipeline stage. Error entries carry their source stage
// as a closed enum so retry dispatch is a total match instead of free-text
// comparison.
type Stage string

const (
	StageIngestion        Stage = "ingestion"
	StageNormalization    Stage = "normalization"
	StageValidation       Stage = "validation"
	StageReportGeneration Stage = "report-generation"
	StageSubmission       Stage = "report-submission"
)

// Stages lists every pipeline stage.
var Stages = []Stage{
	StageIngestion,
	StageNormalization,
	StageValidation,
	StageReportGeneration,
	StageSubmission,
}

// ParseStage converts a string into a Stage, accepting the legacy source
// module names used by upstream feeds.
func ParseStage(s string) (Stage, error) {
	switch s {
	case "ingestion", "data-ingestion":
		return StageIngestion, nil
	case "normalization", "processing", "data-processing":
		return StageNormalization, nil
	case "validation":
		return StageValidation, nil
	case "report-generation":
		return StageReportGeneration, nil
	case "report-submission", "submission":
		return StageSubmission, nil
	}
	return "", fmt.Errorf("unknown stage: %q", s)
}

// Valid reports whether the stage is a member of the closed set.
func (s Stage) Valid() bool {
	switch s {
	case StageIngestion, StageNormalization, StageValidation,
		StageReportGeneration, StageSubmission:
		return true
	}
	return false
}

func (s Stage) String() string {
	return string(s)
}
