package validation

import (
	"reflect"
	"testing"

	"github.com/todd-jang/swap-reporting-mvp/internal/records"
)

func validRecord() records.CanonicalRecord {
	notional := 1000000.50
	return records.CanonicalRecord{
		UTI:                      "SWP-TRD-100-1700000000000-ABCDEF12",
		ReportingCounterpartyLEI: "LEIREPORTING00000001",
		OtherCounterpartyLEI:     "LEIOTHERPARTY0000002",
		ActionType:               "NEWT",
		AssetClass:               "IR",
		EffectiveDate:            "2024-01-15",
		TerminationDate:          "2025-01-15",
		NotionalAmount:           &notional,
		NotionalCurrency:         "USD",
		ProcessingStatus:         records.Processed,
	}
}

func TestEvaluateValidRecord(t *testing.T) {
	if errs := evaluate(validRecord()); len(errs) != 0 {
		t.Errorf("valid record produced failures: %v", errs)
	}
}

func TestEvaluateRules(t *testing.T) {
	negative := -100.0
	zero := 0.0

	tests := []struct {
		name   string
		mutate func(*records.CanonicalRecord)
		want   []string
	}{
		{
			"propagated processing errors",
			func(r *records.CanonicalRecord) {
				r.ProcessingErrors = []string{"Notional Amount 'abc' is not a valid number."}
				r.NotionalAmount = nil
			},
			[]string{
				"Processing Error: Notional Amount 'abc' is not a valid number.",
				"Notional Amount must be a positive value.",
			},
		},
		{
			"negative notional",
			func(r *records.CanonicalRecord) { r.NotionalAmount = &negative },
			[]string{"Notional Amount must be a positive value."},
		},
		{
			"zero notional",
			func(r *records.CanonicalRecord) { r.NotionalAmount = &zero },
			[]string{"Notional Amount must be a positive value."},
		},
		{
			"missing effective date",
			func(r *records.CanonicalRecord) { r.EffectiveDate = "" },
			[]string{"Effective Date '' is missing or invalid format (YYYY-MM-DD)."},
		},
		{
			"malformed termination date",
			func(r *records.CanonicalRecord) { r.TerminationDate = "15/01/2025" },
			[]string{"Termination Date '15/01/2025' is missing or invalid format (YYYY-MM-DD)."},
		},
		{
			"effective after termination",
			func(r *records.CanonicalRecord) {
				r.EffectiveDate = "2025-06-01"
				r.TerminationDate = "2024-06-01"
			},
			[]string{"Effective Date must be before or equal to Termination Date."},
		},
		{
			"invalid reporting lei",
			func(r *records.CanonicalRecord) { r.ReportingCounterpartyLEI = "TOOSHORT" },
			[]string{"Reporting Counterparty LEI 'TOOSHORT' has invalid format."},
		},
		{
			"invalid other lei",
			func(r *records.CanonicalRecord) { r.OtherCounterpartyLEI = "BAD!LEI0000000000002" },
			[]string{"Other Counterparty LEI 'BAD!LEI0000000000002' has invalid format."},
		},
		{
			"newt requires both leis",
			func(r *records.CanonicalRecord) { r.OtherCounterpartyLEI = "" },
			[]string{"Both counterparty LEIs are required for action type 'NEWT'."},
		},
		{
			"non-newt tolerates missing other lei",
			func(r *records.CanonicalRecord) {
				r.ActionType = "MODI"
				r.OtherCounterpartyLEI = ""
			},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(&rec)

			got := evaluate(rec)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateDateOrderSkippedWhenUnparseable(t *testing.T) {
	rec := validRecord()
	rec.EffectiveDate = "garbage"
	rec.TerminationDate = "2020-01-01"

	got := evaluate(rec)
	for _, msg := range got {
		if msg == "Effective Date must be before or equal to Termination Date." {
			t.Error("date ordering must not fire when a date fails to parse")
		}
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	rec := validRecord()
	rec.NotionalAmount = nil
	rec.EffectiveDate = "bad"
	rec.ReportingCounterpartyLEI = "X"
	rec.ProcessingErrors = []string{"Price 'n/a' is not a valid number."}

	first := evaluate(rec)
	for i := 0; i < 10; i++ {
		if got := evaluate(rec); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d diverged: %v vs %v", i, got, first)
		}
	}

	want := []string{
		"Processing Error: Price 'n/a' is not a valid number.",
		"Notional Amount must be a positive value.",
		"Effective Date 'bad' is missing or invalid format (YYYY-MM-DD).",
		"Reporting Counterparty LEI 'X' has invalid format.",
	}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("rule order changed:\ngot  %v\nwant %v", first, want)
	}
}
