package readiness

import (
	"testing"
	"time"

	"tharaga/event"
)

func TestBestContactTime_NoHistory(t *testing.T) {
	now := time.Date(2025, 3, 10, 11, 30, 0, 0, time.UTC)

	got := bestContactTime(nil, now)

	want := time.Date(2025, 3, 11, 18, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected fallback %v, got %v", want, got)
	}
}

func TestBestContactTime_NoUsableBuckets(t *testing.T) {
	now := time.Date(2025, 3, 10, 11, 30, 0, 0, time.UTC)
	signals := []event.Signal{
		{TimeOfDay: ""},
		{TimeOfDay: "late evening"},
	}

	got := bestContactTime(signals, now)

	want := time.Date(2025, 3, 11, 18, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected fallback %v, got %v", want, got)
	}
}

func TestBestContactTime_MostFrequentRollsForward(t *testing.T) {
	// 09:00 appears twice, 18:00 once; 09:00 today has already passed.
	now := time.Date(2025, 3, 10, 11, 30, 0, 0, time.UTC)
	signals := []event.Signal{
		{TimeOfDay: "09:00"},
		{TimeOfDay: "09:00"},
		{TimeOfDay: "18:00"},
	}

	got := bestContactTime(signals, now)

	want := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestBestContactTime_FutureSlotStaysToday(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	signals := []event.Signal{{TimeOfDay: "09:15"}}

	got := bestContactTime(signals, now)

	want := time.Date(2025, 3, 10, 9, 15, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestBestContactTime_TieBreaksOnFirstEncountered(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	signals := []event.Signal{
		{TimeOfDay: "10:00"},
		{TimeOfDay: "12:00"},
		{TimeOfDay: "10:00"},
		{TimeOfDay: "12:00"},
	}

	got := bestContactTime(signals, now)

	want := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected first-encountered 10:00 to win, got %v", got)
	}
}
