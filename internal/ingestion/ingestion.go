// Package ingestion implements the ingestion gateway: it accepts raw trade
// batches from external source systems, persists them verbatim as the replay
// source for retries, and forwards them to normalization.
package ingestion

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/records"
)

// Result reports the outcome of one ingestion call.
type Result struct {
	Status        string `json:"status"`
	ReceivedCount int    `json:"received_count"`
}

func newRawRecord(trade records.RawTrade, now time.Time) (records.RawRecord, error) {
	payload, err := json.Marshal(trade)
	if err != nil {
		return records.RawRecord{}, err
	}

	return records.RawRecord{
		ID:         uuid.New(),
		Payload:    payload,
		Status:     records.RawIngested,
		IngestedAt: now,
	}, nil
}
