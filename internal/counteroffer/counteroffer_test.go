package counteroffer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"exam_exchange/internal/catalog"
	"exam_exchange/internal/model"
	"exam_exchange/internal/storage"
)

type mockSubjects map[string]model.SubjectInfo

func (m mockSubjects) GetSubject(_ context.Context, code string) (*model.SubjectInfo, error) {
	s, ok := m[code]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &s, nil
}

type call struct {
	code, faculty, department string
}

type mockSource struct {
	dates map[string][]time.Time
	err   error
	calls []call
}

func (m *mockSource) FetchCounterofferDates(_ context.Context, code, faculty, department string) ([]time.Time, error) {
	m.calls = append(m.calls, call{code, faculty, department})
	if m.err != nil {
		return nil, m.err
	}
	return m.dates[code], nil
}

func day(d, hour int) time.Time {
	return time.Date(2024, 6, d, hour, 0, 0, 0, time.UTC)
}

var subjects = mockSubjects{
	"NPRG030": {Code: "NPRG030", Faculty: "11320", Department: "32-KSVI"},
	"NMAI057": {Code: "NMAI057", Faculty: "11320", Department: "32-KAM"},
}

func TestFind(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		source  *mockSource
		want    []time.Time
		wantErr error
	}{
		{
			name:   "dedupes same day slots",
			code:   "NPRG030",
			source: &mockSource{dates: map[string][]time.Time{"NPRG030": {day(24, 0), day(20, 9), day(20, 14)}}},
			want:   []time.Time{day(20, 0), day(24, 0)},
		},
		{
			name:   "no dates",
			code:   "NPRG030",
			source: &mockSource{},
			want:   []time.Time{},
		},
		{
			name:    "unknown subject",
			code:    "NOPE",
			source:  &mockSource{},
			wantErr: storage.ErrNotFound,
		},
		{
			name:    "catalog failure",
			code:    "NPRG030",
			source:  &mockSource{err: catalog.ErrFetch},
			wantErr: catalog.ErrFetch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(subjects, tt.source).Find(context.Background(), tt.code)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("dates mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]call{{"NPRG030", "11320", "32-KSVI"}}, tt.source.calls, cmp.AllowUnexported(call{})); diff != "" {
				t.Errorf("catalog query mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindAll(t *testing.T) {
	source := &mockSource{dates: map[string][]time.Time{
		"NPRG030": {day(20, 9), day(24, 9)},
		"NMAI057": {day(24, 13), day(27, 8)},
	}}

	got, err := New(subjects, source).FindAll(context.Background(), []string{"NPRG030", "NMAI057"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []time.Time{day(20, 0), day(24, 0), day(27, 0)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dates mismatch (-want +got):\n%s", diff)
	}
}
