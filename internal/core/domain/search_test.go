package domain

import (
	"errors"
	"strings"
	"testing"
)

func validRequest() SearchRequest {
	return SearchRequest{
		Journeys:  []Leg{{From: "MAD", To: "BCN", Date: "2025-06-01"}},
		Passenger: Passengers{Adults: 1, Children: 1, Total: 2},
	}
}

func TestSearchRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *SearchRequest)
		wantErr string
	}{
		{"valid", func(r *SearchRequest) {}, ""},
		{"rfc3339 date", func(r *SearchRequest) { r.Journeys[0].Date = "2025-06-01T00:00:00Z" }, ""},
		{"retired bonus", func(r *SearchRequest) { r.Bonus = []string{BonusRetired} }, ""},
		{"no journeys", func(r *SearchRequest) { r.Journeys = nil }, "journeys is required"},
		{"empty journeys", func(r *SearchRequest) { r.Journeys = []Leg{} }, "journeys must contain at least 1"},
		{"missing date", func(r *SearchRequest) { r.Journeys[0].Date = "" }, "journeys[0].date is required"},
		{"missing from", func(r *SearchRequest) { r.Journeys[0].From = " " }, "journeys[0].from is required"},
		{"bad date", func(r *SearchRequest) { r.Journeys[0].Date = "01/06/2025" }, "journeys[0].date"},
		{"negative adults", func(r *SearchRequest) { r.Passenger.Adults = -1 }, "passenger.adults must be at least 0"},
		{"zero total", func(r *SearchRequest) { r.Passenger = Passengers{} }, "passenger.total must be at least 1"},
		{"total mismatch", func(r *SearchRequest) { r.Passenger.Total = 5 }, "passenger.total (5) must equal adults + children (2)"},
		{"unknown bonus", func(r *SearchRequest) { r.Bonus = []string{"student"} }, `bonus[0]: unsupported value "student"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			err := r.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestSearchRequest_Validate_ReportsEveryField(t *testing.T) {
	r := SearchRequest{
		Journeys:  []Leg{{From: "MAD", To: "", Date: "2025-06-01"}, {From: "", To: "SVQ", Date: "tomorrow"}},
		Passenger: Passengers{Adults: 1, Children: 0, Total: 2},
		Bonus:     []string{"retired", "vip"},
	}

	err := r.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	msg := strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
	got := strings.Split(msg, "; ")
	want := []string{
		"journeys[0].to is required",
		"journeys[1].from is required",
		`journeys[1].date: invalid date "tomorrow" (expected YYYY-MM-DD)`,
		"passenger.total (2) must equal adults + children (1)",
		`bonus[1]: unsupported value "vip"`,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d problems, got %d: %v", len(want), len(got), got)
	}
	for _, w := range want {
		if !strings.Contains(msg, w) {
			t.Errorf("missing %q in %q", w, msg)
		}
	}
}

func TestSupplierCode(t *testing.T) {
	tests := []struct {
		codes  []string
		want   string
		wantOK bool
	}{
		{[]string{"SERVIVUELO#MAD"}, "MAD", true},
		{[]string{"OTHER#X", "SERVIVUELO#BCN", "SERVIVUELO#ZZZ"}, "BCN", true},
		{[]string{"OTHER#X"}, "", false},
		{[]string{"SERVIVUELO#"}, "", false},
		{nil, "", false},
	}

	for _, tt := range tests {
		got, ok := SupplierCode(tt.codes, "SERVIVUELO")
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("SupplierCode(%v) = %q, %v; want %q, %v", tt.codes, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSupplierError(t *testing.T) {
	cause := errors.New("connection reset")
	err := error(&SupplierError{Op: OpPrices, Err: cause})

	if !IsSupplierError(err) {
		t.Fatal("expected IsSupplierError")
	}
	if !errors.Is(err, cause) {
		t.Error("SupplierError should unwrap to its cause")
	}
	if got := (&SupplierError{Op: OpTimetables, Status: 503, Message: "down"}).Error(); got != "supplier timetables: status 503: down" {
		t.Errorf("unexpected message %q", got)
	}
}
