package schedule

import (
	"testing"
	"time"
)

func TestMinutesOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:00", want: 540},
		{in: "23:59", want: 1439},
		{in: "9:5", want: 545},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "12", wantErr: true},
		{in: "12:00:00", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := MinutesOfDay(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("MinutesOfDay(%q): expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("MinutesOfDay(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("MinutesOfDay(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestIsOverdue(t *testing.T) {
	at := func(hhmm string) time.Time {
		parsed, err := time.Parse("15:04", hhmm)
		if err != nil {
			t.Fatalf("bad test clock %q: %v", hhmm, err)
		}
		return time.Date(2025, 6, 12, parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)
	}

	t.Run("past deadline", func(t *testing.T) {
		if !IsOverdue("09:00", 60, false, at("10:30")) {
			t.Error("expected overdue at 10:30 for 09:00 + 60m")
		}
	})

	t.Run("within offset window", func(t *testing.T) {
		if IsOverdue("09:00", 60, false, at("09:45")) {
			t.Error("expected not overdue at 09:45 for 09:00 + 60m")
		}
	})

	t.Run("deadline boundary is inclusive", func(t *testing.T) {
		if IsOverdue("09:00", 60, false, at("10:00")) {
			t.Error("expected not overdue exactly at the deadline")
		}
		if !IsOverdue("09:00", 60, false, at("10:01")) {
			t.Error("expected overdue one minute past the deadline")
		}
	})

	t.Run("completed today is never overdue", func(t *testing.T) {
		if IsOverdue("09:00", 0, true, at("23:59")) {
			t.Error("a completed task must not be overdue")
		}
	})

	t.Run("unparseable schedule is not overdue", func(t *testing.T) {
		if IsOverdue("garbage", 0, false, at("23:59")) {
			t.Error("malformed scheduled_time should not report overdue")
		}
	})
}

func TestReminderAt(t *testing.T) {
	day := time.Date(2025, 6, 12, 15, 4, 5, 0, time.UTC)

	got, err := ReminderAt(day, "09:30", 15)
	if err != nil {
		t.Fatalf("ReminderAt: %v", err)
	}
	want := time.Date(2025, 6, 12, 9, 45, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ReminderAt = %v, want %v", got, want)
	}

	t.Run("offset crossing midnight lands on the next day", func(t *testing.T) {
		got, err := ReminderAt(day, "23:30", 45)
		if err != nil {
			t.Fatalf("ReminderAt: %v", err)
		}
		want := time.Date(2025, 6, 13, 0, 15, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("ReminderAt = %v, want %v", got, want)
		}
	})

	t.Run("invalid time", func(t *testing.T) {
		if _, err := ReminderAt(day, "25:00", 0); err == nil {
			t.Error("expected error for invalid hour")
		}
	})
}

func TestDateOf(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// 03:00 UTC on the 13th is still the 12th in New York.
	utc := time.Date(2025, 6, 13, 3, 0, 0, 0, time.UTC)
	if got := DateOf(utc.In(loc)); got != "2025-06-12" {
		t.Errorf("DateOf in New York = %s, want 2025-06-12", got)
	}
	if got := DateOf(utc); got != "2025-06-13" {
		t.Errorf("DateOf in UTC = %s, want 2025-06-13", got)
	}
}
