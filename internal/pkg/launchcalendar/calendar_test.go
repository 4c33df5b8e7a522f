package launchcalendar

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2025-06-10", want: "2025-06-10T00:00:00Z"},
		{in: "2025-06-10T15:04:05Z", want: "2025-06-10T00:00:00Z"},
		{in: "2025-06-10T23:30:00+02:00", want: "2025-06-10T00:00:00Z"},
		{in: "10.06.2025", wantErr: true},
		{in: "", wantErr: true},
		{in: "not-a-date", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseDate(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDate(%q) unexpected error: %v", tt.in, err)
		}
		if got.Format(time.RFC3339) != tt.want {
			t.Fatalf("ParseDate(%q) = %s, want %s", tt.in, got.Format(time.RFC3339), tt.want)
		}
	}
}

func TestParseDateOffsetCrossingMidnight(t *testing.T) {
	// 23:30 at UTC-3 is already the next UTC day.
	got, err := ParseDate("2025-06-10T23:30:00-03:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Day() != 11 {
		t.Fatalf("expected UTC day 11, got %d", got.Day())
	}
}

func TestDayWindow(t *testing.T) {
	at := time.Date(2025, 6, 10, 17, 42, 13, 0, time.UTC)
	start, end := DayWindow(at)
	if !start.Equal(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day start: %s", start)
	}
	if !end.Equal(time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day end: %s", end)
	}
}

func TestAtLaunchHour(t *testing.T) {
	at := time.Date(2025, 6, 10, 22, 15, 0, 0, time.UTC)
	got := AtLaunchHour(at)
	want := time.Date(2025, 6, 10, LaunchHourUTC, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("AtLaunchHour = %s, want %s", got, want)
	}
}

func TestAddDays(t *testing.T) {
	at := time.Date(2025, 6, 28, 9, 0, 0, 0, time.UTC)
	got := AddDays(at, 5)
	want := time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("AddDays = %s, want %s", got, want)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, 6, 10, 0, 0, 1, 0, time.UTC)
	b := time.Date(2025, 6, 10, 23, 59, 59, 0, time.UTC)
	if !SameDay(a, b) {
		t.Fatal("expected same UTC day")
	}
	if SameDay(a, b.Add(time.Second)) {
		t.Fatal("expected different UTC days")
	}
}
