package program

import (
	"errors"
	"testing"
	"time"
)

func TestSlotsFor(t *testing.T) {
	tests := []struct {
		total, per float64
		want       int
		wantErr    error
	}{
		{100_000, 10_000, 10, nil},
		{105_000, 10_000, 10, nil},
		{0.3, 0.1, 3, nil},
		{10_000, 0, 0, ErrInvalidBudget},
		{5_000, 10_000, 0, ErrInvalidBudget},
	}
	for _, tt := range tests {
		got, err := SlotsFor(tt.total, tt.per)
		if !errors.Is(err, tt.wantErr) {
			t.Fatalf("SlotsFor(%v,%v) err=%v want %v", tt.total, tt.per, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("SlotsFor(%v,%v)=%d want %d", tt.total, tt.per, got, tt.want)
		}
	}
}

func TestProgramHelpers(t *testing.T) {
	deadline := time.Date(2025, 9, 30, 23, 59, 0, 0, time.UTC)
	p := Program{CommunityServiceDays: 5, ApplicationDeadline: deadline}
	if p.RequiredServiceHours() != 40 {
		t.Fatalf("hours=%v", p.RequiredServiceHours())
	}
	if p.DeadlinePassed(deadline) {
		t.Fatalf("deadline itself is still open")
	}
	if !p.DeadlinePassed(deadline.Add(time.Second)) {
		t.Fatalf("after deadline must be passed")
	}
	if !SchoolBoth.Accepts(SchoolCollege) || SchoolHighSchool.Accepts(SchoolCollege) {
		t.Fatalf("school type eligibility mismatch")
	}
}
