package reportgen

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/pipeline"
	"github.com/todd-jang/swap-reporting-mvp/internal/records"
	"github.com/todd-jang/swap-reporting-mvp/pkg/lifecycle"
	"github.com/todd-jang/swap-reporting-mvp/pkg/pagination"
	"github.com/todd-jang/swap-reporting-mvp/pkg/storage"
)

type fakeStore struct {
	artifacts []ReportArtifact
	marked    [][]uuid.UUID
	fail      error
}

func (f *fakeStore) CreateArtifact(_ context.Context, artifact ReportArtifact, ids []uuid.UUID) error {
	if f.fail != nil {
		return f.fail
	}
	f.artifacts = append(f.artifacts, artifact)
	f.marked = append(f.marked, ids)
	return nil
}

func (f *fakeStore) ListArtifacts(_ context.Context, _ ArtifactFilter, page pagination.PageRequest) (*pagination.PageResult[ReportArtifact], error) {
	result := pagination.NewPageResult(f.artifacts, len(f.artifacts), page.Page, page.PageSize)
	return &result, nil
}

func (f *fakeStore) FindArtifact(_ context.Context, id uuid.UUID) (*ReportArtifact, error) {
	for i := range f.artifacts {
		if f.artifacts[i].ID == id {
			return &f.artifacts[i], nil
		}
	}
	return nil, ErrNotFound
}

type fakeBlobs struct {
	uploads map[string][]byte
	deleted []string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{uploads: make(map[string][]byte)}
}

func (f *fakeBlobs) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeBlobs) Upload(_ context.Context, key string, reader io.Reader, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.uploads[key] = data
	return nil
}

func (f *fakeBlobs) Download(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.uploads[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	if _, ok := f.uploads[key]; !ok {
		return storage.ErrNotFound
	}
	delete(f.uploads, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBlobs) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.uploads[key]
	return ok, nil
}

type fakeSubmission struct {
	forwarded []uuid.UUID
	fail      error
}

func (f *fakeSubmission) Forward(_ context.Context, reportID uuid.UUID) error {
	if f.fail != nil {
		return f.fail
	}
	f.forwarded = append(f.forwarded, reportID)
	return nil
}

type fakeSink struct {
	reports []pipeline.ErrorReport
}

func (f *fakeSink) Report(_ context.Context, reports []pipeline.ErrorReport) error {
	f.reports = append(f.reports, reports...)
	return nil
}

func newTestSystem(store *fakeStore, blobs *fakeBlobs, fwd *fakeSubmission, sink *fakeSink) System {
	pages := pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
	return New(store, blobs, fwd, sink, pages, slog.New(slog.DiscardHandler))
}

func TestGenerateCreatesArtifactAndForwards(t *testing.T) {
	store := &fakeStore{}
	blobs := newFakeBlobs()
	fwd := &fakeSubmission{}
	sink := &fakeSink{}
	sys := newTestSystem(store, blobs, fwd, sink)

	batch := []records.CanonicalRecord{
		reportableRecord("SWP-A-1-AAAAAAA1", 1000000),
		reportableRecord("SWP-B-1-AAAAAAA2", 2000000),
	}
	for i := range batch {
		batch[i].ID = uuid.New()
	}

	result, err := sys.Generate(context.Background(), batch)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if result.GeneratedCount != 2 {
		t.Errorf("generated = %d, want 2", result.GeneratedCount)
	}
	if len(store.artifacts) != 1 {
		t.Fatalf("artifacts = %d, want 1", len(store.artifacts))
	}

	artifact := store.artifacts[0]
	if artifact.EntryCount != 2 || artifact.Status != ReportGenerated {
		t.Errorf("artifact = %+v", artifact)
	}
	if len(store.marked[0]) != 2 {
		t.Errorf("marked records = %d, want 2", len(store.marked[0]))
	}
	if _, ok := blobs.uploads[artifact.StorageKey]; !ok {
		t.Error("artifact content missing from blob store")
	}
	if len(fwd.forwarded) != 1 || fwd.forwarded[0] != artifact.ID {
		t.Errorf("forwarded = %v", fwd.forwarded)
	}
}

func TestGenerateReportsFormatFailures(t *testing.T) {
	store := &fakeStore{}
	sink := &fakeSink{}
	sys := newTestSystem(store, newFakeBlobs(), &fakeSubmission{}, sink)

	bad := reportableRecord("SWP-BAD-1-AAAAAAA3", 0)
	bad.ID = uuid.New()
	bad.NotionalAmount = nil
	good := reportableRecord("SWP-OK-1-AAAAAAA4", 500)
	good.ID = uuid.New()

	result, err := sys.Generate(context.Background(), []records.CanonicalRecord{good, bad})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if result.GeneratedCount != 1 {
		t.Errorf("generated = %d, want 1", result.GeneratedCount)
	}
	if len(sink.reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(sink.reports))
	}
	if sink.reports[0].SourceStage != records.StageReportGeneration {
		t.Errorf("source stage = %q", sink.reports[0].SourceStage)
	}
	if sink.reports[0].TradeID != "SWP-BAD-1-AAAAAAA3" {
		t.Errorf("trade id = %q", sink.reports[0].TradeID)
	}
	if len(store.marked[0]) != 1 {
		t.Errorf("only formatted records may be marked, got %d", len(store.marked[0]))
	}
}

func TestGenerateStoreFailureRemovesBlob(t *testing.T) {
	store := &fakeStore{fail: errors.New("disk full")}
	blobs := newFakeBlobs()
	fwd := &fakeSubmission{}
	sys := newTestSystem(store, blobs, fwd, &fakeSink{})

	rec := reportableRecord("SWP-A-1-AAAAAAA1", 1000)
	rec.ID = uuid.New()

	if _, err := sys.Generate(context.Background(), []records.CanonicalRecord{rec}); err == nil {
		t.Fatal("expected error from store failure")
	}

	if len(blobs.uploads) != 0 {
		t.Error("orphaned blob left after descriptor failure")
	}
	if len(blobs.deleted) != 1 {
		t.Errorf("deleted = %v, want one compensating delete", blobs.deleted)
	}
	if len(fwd.forwarded) != 0 {
		t.Error("nothing may forward when persistence fails")
	}
}

func TestGenerateEmptyBatch(t *testing.T) {
	fwd := &fakeSubmission{}
	sys := newTestSystem(&fakeStore{}, newFakeBlobs(), fwd, &fakeSink{})

	result, err := sys.Generate(context.Background(), nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.GeneratedCount != 0 {
		t.Errorf("generated = %d, want 0", result.GeneratedCount)
	}
	if len(fwd.forwarded) != 0 {
		t.Error("empty batch must not forward")
	}
}
