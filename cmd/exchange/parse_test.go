package main

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"exam_exchange/internal/examdate"
)

func TestParseIDArg(t *testing.T) {
	tests := []struct {
		arg     string
		want    int64
		wantErr bool
	}{
		{arg: "42", want: 42},
		{arg: " 7 ", want: 7},
		{arg: "0", wantErr: true},
		{arg: "-3", wantErr: true},
		{arg: "abc", wantErr: true},
		{arg: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := ParseIDArg(tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseIDArg() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseDates(t *testing.T) {
	got, err := parseDates([]string{"2024-06-20", "2024-06-24, 2024-06-27", ","})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []time.Time{
		time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 24, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 27, 0, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseDates() mismatch (-want +got):\n%s", diff)
	}

	if _, err := parseDates([]string{"20.06.2024"}); !errors.Is(err, examdate.ErrMalformedDate) {
		t.Errorf("expected ErrMalformedDate, got %v", err)
	}
}
