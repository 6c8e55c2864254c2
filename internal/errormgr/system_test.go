package errormgr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/pipeline"
	"github.com/todd-jang/swap-reporting-mvp/internal/records"
	"github.com/todd-jang/swap-reporting-mvp/pkg/pagination"
)

type fakeStore struct {
	entries map[uuid.UUID]*ErrorEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[uuid.UUID]*ErrorEntry)}
}

func (f *fakeStore) CreateEntries(_ context.Context, entries []ErrorEntry) error {
	for i := range entries {
		e := entries[i]
		f.entries[e.ID] = &e
	}
	return nil
}

func (f *fakeStore) ListEntries(_ context.Context, filter EntryFilter, page pagination.PageRequest) (*pagination.PageResult[ErrorEntry], error) {
	var matched []ErrorEntry
	for _, e := range f.entries {
		if filter.Status != nil && string(e.Status) != *filter.Status {
			continue
		}
		if filter.Stage != nil && e.SourceStage.String() != *filter.Stage {
			continue
		}
		if filter.Severity != nil && e.Severity != *filter.Severity {
			continue
		}
		matched = append(matched, *e)
	}
	result := pagination.NewPageResult(matched, len(matched), page.Page, page.PageSize)
	return &result, nil
}

func (f *fakeStore) FindEntry(_ context.Context, id uuid.UUID) (*ErrorEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id uuid.UUID, status EntryStatus, updatedAt time.Time) error {
	e, ok := f.entries[id]
	if !ok {
		return ErrNotFound
	}
	e.Status = status
	e.UpdatedAt = updatedAt
	return nil
}

type fakeIngestion struct {
	batches [][]records.RawTrade
	fail    error
}

func (f *fakeIngestion) Forward(_ context.Context, batch []records.RawTrade) error {
	if f.fail != nil {
		return f.fail
	}
	f.batches = append(f.batches, batch)
	return nil
}

type fakeNormalization struct {
	batches [][]records.RawTrade
	fail    error
}

func (f *fakeNormalization) Forward(_ context.Context, batch []records.RawTrade) error {
	if f.fail != nil {
		return f.fail
	}
	f.batches = append(f.batches, batch)
	return nil
}

func newTestSystem(store *fakeStore, ing *fakeIngestion, norm *fakeNormalization) System {
	pages := pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
	return New(store, ing, norm, pages, nil, slog.New(slog.DiscardHandler))
}

func rawTradeJSON(t *testing.T) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(records.RawTrade{
		TradeID:          "TRD-500",
		Action:           "NEWT",
		AssetClass:       "IR",
		EffectiveDate:    "2024-01-15",
		TerminationDate:  "2025-01-15",
		NotionalAmount:   "1000000",
		NotionalCurrency: "USD",
		PartyALEI:        "LEIREPORTING00000001",
		PartyBLEI:        "LEIOTHERPARTY0000002",
	})
	if err != nil {
		t.Fatalf("marshal trade: %v", err)
	}
	return data
}

func TestReportFilesOpenEntries(t *testing.T) {
	store := newFakeStore()
	sys := newTestSystem(store, &fakeIngestion{}, &fakeNormalization{})

	result, err := sys.Report(context.Background(), []pipeline.ErrorReport{
		{
			SourceStage: "data-processing",
			TradeID:     "TRD-500",
			Messages:    []string{"Notional Amount 'abc' is not a valid number."},
			Severity:    pipeline.SeverityError,
		},
		{
			SourceStage: records.StageValidation,
			TradeID:     "SWP-X-1-AAAAAAA1",
			Messages:    []string{"Notional Amount must be a positive value."},
		},
	})
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if result.EntryCount != 2 {
		t.Errorf("entry count = %d, want 2", result.EntryCount)
	}
	if len(store.entries) != 2 {
		t.Fatalf("persisted = %d, want 2", len(store.entries))
	}

	for _, e := range store.entries {
		if e.Status != EntryOpen {
			t.Errorf("entry status = %q, want Open", e.Status)
		}
		if e.Severity == "" {
			t.Error("severity must default when absent")
		}
		if e.SourceStage == "data-processing" {
			t.Error("legacy stage name must canonicalize")
		}
	}
}

func TestReportRejectsUnknownStage(t *testing.T) {
	sys := newTestSystem(newFakeStore(), &fakeIngestion{}, &fakeNormalization{})

	_, err := sys.Report(context.Background(), []pipeline.ErrorReport{
		{SourceStage: "mystery-module", Messages: []string{"boom"}},
	})
	if !errors.Is(err, ErrInvalidReport) {
		t.Errorf("err = %v, want ErrInvalidReport", err)
	}
}

func TestReportEmpty(t *testing.T) {
	sys := newTestSystem(newFakeStore(), &fakeIngestion{}, &fakeNormalization{})

	if _, err := sys.Report(context.Background(), nil); !errors.Is(err, ErrEmptyReport) {
		t.Errorf("err = %v, want ErrEmptyReport", err)
	}
}

func TestRetryIngestionEntry(t *testing.T) {
	store := newFakeStore()
	ing := &fakeIngestion{}
	norm := &fakeNormalization{}
	sys := newTestSystem(store, ing, norm)

	entry := &ErrorEntry{
		ID:          uuid.New(),
		SourceStage: records.StageIngestion,
		TradeID:     "TRD-500",
		RawPayload:  rawTradeJSON(t),
		Status:      EntryOpen,
	}
	store.entries[entry.ID] = entry

	result, err := sys.Retry(context.Background(), entry.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}

	if result.SourceStage != records.StageIngestion {
		t.Errorf("source stage = %q", result.SourceStage)
	}
	if len(ing.batches) != 1 || len(ing.batches[0]) != 1 || ing.batches[0][0].TradeID != "TRD-500" {
		t.Errorf("ingestion batches = %v", ing.batches)
	}
	if len(norm.batches) != 0 {
		t.Error("normalization must not receive ingestion retries")
	}
	if store.entries[entry.ID].Status != EntryRetrying {
		t.Errorf("entry status = %q, want Retrying", store.entries[entry.ID].Status)
	}
}

func TestRetryProcessingEntryReplaysOriginalPayload(t *testing.T) {
	store := newFakeStore()
	ing := &fakeIngestion{}
	norm := &fakeNormalization{}
	sys := newTestSystem(store, ing, norm)

	entry := &ErrorEntry{
		ID:          uuid.New(),
		SourceStage: records.StageNormalization,
		TradeID:     "TRD-500",
		Payload:     json.RawMessage(`{"processing_status":"ProcessedWithErrors"}`),
		RawPayload:  rawTradeJSON(t),
		Status:      EntryOpen,
	}
	store.entries[entry.ID] = entry

	if _, err := sys.Retry(context.Background(), entry.ID); err != nil {
		t.Fatalf("retry: %v", err)
	}

	if len(norm.batches) != 1 || norm.batches[0][0].TradeID != "TRD-500" {
		t.Errorf("normalization batches = %v", norm.batches)
	}
	if len(ing.batches) != 0 {
		t.Error("ingestion must not receive processing retries")
	}
	if store.entries[entry.ID].Status != EntryRetrying {
		t.Errorf("entry status = %q, want Retrying", store.entries[entry.ID].Status)
	}
}

func TestRetryRejectsCanonicalPayloadWithoutOriginal(t *testing.T) {
	store := newFakeStore()
	ing := &fakeIngestion{}
	norm := &fakeNormalization{}
	sys := newTestSystem(store, ing, norm)

	canonical, err := json.Marshal(records.CanonicalRecord{
		UTI:              "SWP-TRD-500-1700000000000-AB12CD34",
		ActionType:       "NEWT",
		ValidationStatus: records.ValidationInvalid,
	})
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}

	entry := &ErrorEntry{
		ID:          uuid.New(),
		SourceStage: records.StageValidation,
		TradeID:     "SWP-TRD-500-1700000000000-AB12CD34",
		Payload:     canonical,
		Status:      EntryOpen,
	}
	store.entries[entry.ID] = entry

	if _, err := sys.Retry(context.Background(), entry.ID); !errors.Is(err, ErrNoReplayPayload) {
		t.Errorf("err = %v, want ErrNoReplayPayload", err)
	}
	if len(norm.batches) != 0 {
		t.Errorf("normalization received %v, canonical payloads must never replay", norm.batches)
	}
	if store.entries[entry.ID].Status != EntryOpen {
		t.Errorf("entry status = %q, must stay Open", store.entries[entry.ID].Status)
	}
}

func TestRetryWithoutPayload(t *testing.T) {
	store := newFakeStore()
	sys := newTestSystem(store, &fakeIngestion{}, &fakeNormalization{})

	entry := &ErrorEntry{
		ID:          uuid.New(),
		SourceStage: records.StageValidation,
		Status:      EntryOpen,
	}
	store.entries[entry.ID] = entry

	if _, err := sys.Retry(context.Background(), entry.ID); !errors.Is(err, ErrNoReplayPayload) {
		t.Errorf("err = %v, want ErrNoReplayPayload", err)
	}
	if store.entries[entry.ID].Status != EntryOpen {
		t.Errorf("entry status = %q, must stay Open", store.entries[entry.ID].Status)
	}
}

func TestRetryUnsupportedStages(t *testing.T) {
	for _, stage := range []records.Stage{records.StageReportGeneration, records.StageSubmission} {
		t.Run(stage.String(), func(t *testing.T) {
			store := newFakeStore()
			sys := newTestSystem(store, &fakeIngestion{}, &fakeNormalization{})

			entry := &ErrorEntry{
				ID:          uuid.New(),
				SourceStage: stage,
				RawPayload:  rawTradeJSON(t),
				Status:      EntryOpen,
			}
			store.entries[entry.ID] = entry

			if _, err := sys.Retry(context.Background(), entry.ID); !errors.Is(err, ErrRetryUnsupported) {
				t.Errorf("err = %v, want ErrRetryUnsupported", err)
			}
			if store.entries[entry.ID].Status != EntryOpen {
				t.Errorf("entry status = %q, must stay Open", store.entries[entry.ID].Status)
			}
		})
	}
}

func TestRetryDispatchFailureLeavesEntryOpen(t *testing.T) {
	store := newFakeStore()
	ing := &fakeIngestion{fail: errors.New("ingestion unreachable")}
	sys := newTestSystem(store, ing, &fakeNormalization{})

	entry := &ErrorEntry{
		ID:          uuid.New(),
		SourceStage: records.StageIngestion,
		RawPayload:  rawTradeJSON(t),
		Status:      EntryOpen,
	}
	store.entries[entry.ID] = entry

	if _, err := sys.Retry(context.Background(), entry.ID); err == nil {
		t.Fatal("expected dispatch error")
	}
	if store.entries[entry.ID].Status != EntryOpen {
		t.Errorf("entry status = %q, must stay Open after failed dispatch", store.entries[entry.ID].Status)
	}
}

func TestSetStatus(t *testing.T) {
	store := newFakeStore()
	sys := newTestSystem(store, &fakeIngestion{}, &fakeNormalization{})

	entry := &ErrorEntry{ID: uuid.New(), SourceStage: records.StageValidation, Status: EntryOpen}
	store.entries[entry.ID] = entry

	updated, err := sys.SetStatus(context.Background(), entry.ID, EntryResolved)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != EntryResolved {
		t.Errorf("status = %q, want Resolved", updated.Status)
	}
}

func TestParseEntryStatus(t *testing.T) {
	for _, valid := range []string{"Open", "Investigating", "Retrying", "Resolved", "Closed"} {
		if _, err := ParseEntryStatus(valid); err != nil {
			t.Errorf("%q rejected: %v", valid, err)
		}
	}
	if _, err := ParseEntryStatus("Snoozed"); err == nil {
		t.Error("unknown status accepted")
	}
}
