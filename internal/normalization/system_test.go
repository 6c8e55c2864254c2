package normalization

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/todd-jang/swap-reporting-mvp/internal/pipeline"
	"github.com/todd-jang/swap-reporting-mvp/internal/records"
)

type fakeStore struct {
	created []records.CanonicalRecord
	fail    error
}

func (f *fakeStore) CreateBatch(_ context.Context, recs []records.CanonicalRecord) error {
	if f.fail != nil {
		return f.fail
	}
	f.created = append(f.created, recs...)
	return nil
}

func (f *fakeStore) FindByUTI(_ context.Context, uti string) (*records.CanonicalRecord, error) {
	for i := range f.created {
		if f.created[i].UTI == uti {
			return &f.created[i], nil
		}
	}
	return nil, ErrNotFound
}

type fakeValidation struct {
	batches [][]records.CanonicalRecord
	fail    error
}

func (f *fakeValidation) Forward(_ context.Context, batch []records.CanonicalRecord) error {
	if f.fail != nil {
		return f.fail
	}
	f.batches = append(f.batches, batch)
	return nil
}

type fakeSink struct {
	reports []pipeline.ErrorReport
}

func (f *fakeSink) Report(_ context.Context, reports []pipeline.ErrorReport) error {
	f.reports = append(f.reports, reports...)
	return nil
}

func newTestSystem(store *fakeStore, fwd *fakeValidation, sink *fakeSink) System {
	return New(store, fwd, sink, slog.New(slog.DiscardHandler))
}

func TestProcessConservation(t *testing.T) {
	store := &fakeStore{}
	fwd := &fakeValidation{}
	sink := &fakeSink{}
	sys := newTestSystem(store, fwd, sink)

	batch := []records.RawTrade{cleanTrade(), cleanTrade(), cleanTrade()}
	result, err := sys.Process(context.Background(), batch)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if result.ProcessedCount != 3 {
		t.Errorf("processed = %d, want 3", result.ProcessedCount)
	}
	if result.ProcessingFailedCount != 0 {
		t.Errorf("failed = %d, want 0", result.ProcessingFailedCount)
	}
	if len(store.created) != 3 {
		t.Errorf("persisted = %d, want 3", len(store.created))
	}
	if len(fwd.batches) != 1 || len(fwd.batches[0]) != 3 {
		t.Errorf("forwarded batches = %v", fwd.batches)
	}
	if len(sink.reports) != 0 {
		t.Errorf("unexpected error reports: %v", sink.reports)
	}
}

func TestProcessErrorBearingRecordStillFlows(t *testing.T) {
	store := &fakeStore{}
	fwd := &fakeValidation{}
	sink := &fakeSink{}
	sys := newTestSystem(store, fwd, sink)

	bad := cleanTrade()
	bad.NotionalAmount = "abc"

	result, err := sys.Process(context.Background(), []records.RawTrade{cleanTrade(), bad})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if result.ProcessedCount != 2 || result.ProcessingFailedCount != 1 {
		t.Errorf("result = %+v", result)
	}
	if len(store.created) != 2 {
		t.Fatalf("persisted = %d, want 2", len(store.created))
	}
	if len(fwd.batches) != 1 || len(fwd.batches[0]) != 2 {
		t.Fatalf("error-bearing record must still forward, got %v", fwd.batches)
	}

	if len(sink.reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(sink.reports))
	}
	report := sink.reports[0]
	if report.SourceStage != records.StageNormalization {
		t.Errorf("source stage = %q", report.SourceStage)
	}
	if len(report.Messages) != 1 || report.Messages[0] != "Notional Amount 'abc' is not a valid number." {
		t.Errorf("messages = %v", report.Messages)
	}
	if len(report.OriginalPayload) == 0 {
		t.Error("original payload missing from report")
	}
}

func TestProcessStoreFailureForwardsNothing(t *testing.T) {
	store := &fakeStore{fail: errors.New("connection reset")}
	fwd := &fakeValidation{}
	sink := &fakeSink{}
	sys := newTestSystem(store, fwd, sink)

	_, err := sys.Process(context.Background(), []records.RawTrade{cleanTrade()})
	if err == nil {
		t.Fatal("expected error from store failure")
	}
	if len(fwd.batches) != 0 {
		t.Errorf("nothing may forward when persistence fails, got %v", fwd.batches)
	}
}

func TestProcessEmptyBatch(t *testing.T) {
	sys := newTestSystem(&fakeStore{}, &fakeValidation{}, &fakeSink{})

	if _, err := sys.Process(context.Background(), nil); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("err = %v, want ErrEmptyBatch", err)
	}
}

func TestProcessForwardFailureStillSucceeds(t *testing.T) {
	store := &fakeStore{}
	fwd := &fakeValidation{fail: errors.New("validation unreachable")}
	sink := &fakeSink{}
	sys := newTestSystem(store, fwd, sink)

	result, err := sys.Process(context.Background(), []records.RawTrade{cleanTrade()})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.ProcessedCount != 1 {
		t.Errorf("processed = %d, want 1", result.ProcessedCount)
	}
	if len(sink.reports) != 1 {
		t.Errorf("forward failure must be reported, got %d reports", len(sink.reports))
	}
}

func TestLookupByUTI(t *testing.T) {
	store := &fakeStore{}
	sys := newTestSystem(store, &fakeValidation{}, &fakeSink{})

	if _, err := sys.Process(context.Background(), []records.RawTrade{cleanTrade()}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("persisted = %d, want 1", len(store.created))
	}

	rec, err := sys.Lookup(context.Background(), store.created[0].UTI)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if rec.UTI != store.created[0].UTI {
		t.Errorf("uti = %q, want %q", rec.UTI, store.created[0].UTI)
	}

	if _, err := sys.Lookup(context.Background(), "SWP-UNKNOWN-1-00000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
