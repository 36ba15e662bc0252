package button

import (
	"errors"
	"testing"
	"time"
)

func testInstallation(mask, start, end int, tz string) *Installation {
	return &Installation{
		TeamID:        "T1",
		Weekdays:      mask,
		IntervalStart: start,
		IntervalEnd:   end,
		Timezone:      tz,
	}
}

func localSeconds(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

func TestNextFireTimeProperties(t *testing.T) {
	inst := testInstallation(Monday|Tuesday|Wednesday|Thursday|Friday, 9*3600, 16*3600, "Europe/Copenhagen")
	loc, _ := time.LoadLocation("Europe/Copenhagen")

	refs := []time.Time{
		time.Date(2024, 6, 3, 8, 0, 0, 0, loc),   // Monday before window
		time.Date(2024, 6, 3, 12, 30, 0, 0, loc), // Monday inside window
		time.Date(2024, 6, 7, 17, 0, 0, 0, loc),  // Friday after window
		time.Date(2024, 6, 8, 11, 0, 0, 0, loc),  // Saturday
	}

	for _, ref := range refs {
		for i := 0; i < 50; i++ {
			fire, err := NextFireTime(inst, ref)
			if err != nil {
				t.Fatalf("ref %v: %v", ref, err)
			}
			if !fire.After(ref) {
				t.Fatalf("ref %v: fire %v not strictly after", ref, fire)
			}
			local := fire.In(loc)
			if inst.Weekdays&(1<<int(local.Weekday())) == 0 {
				t.Fatalf("ref %v: fire on unscheduled weekday %v", ref, local.Weekday())
			}
			secs := localSeconds(local)
			if secs < inst.IntervalStart || secs >= inst.IntervalEnd {
				t.Fatalf("ref %v: fire at %d seconds outside window [%d,%d)", ref, secs, inst.IntervalStart, inst.IntervalEnd)
			}
		}
	}
}

func TestNextFireTimeTodayOnlyBeforeIntervalEnd(t *testing.T) {
	loc, _ := time.LoadLocation("Europe/Copenhagen")

	// Monday 17:00, window already closed: next eligible day is Tuesday.
	ref := time.Date(2024, 6, 3, 17, 0, 0, 0, loc)
	inst := testInstallation(Monday|Tuesday, 9*3600, 16*3600, "Europe/Copenhagen")

	fire, err := NextFireTime(inst, ref)
	if err != nil {
		t.Fatalf("next fire: %v", err)
	}
	if got := fire.In(loc).Weekday(); got != time.Tuesday {
		t.Fatalf("expected Tuesday fire, got %v (%v)", got, fire)
	}
}

func TestNextFireTimeSingleWeekdayWrapsWeek(t *testing.T) {
	loc, _ := time.LoadLocation("Europe/Copenhagen")

	// Monday evening with only Mondays scheduled: the draw lands a full
	// week out, never in the past.
	ref := time.Date(2024, 6, 3, 17, 0, 0, 0, loc)
	inst := testInstallation(Monday, 9*3600, 16*3600, "Europe/Copenhagen")

	fire, err := NextFireTime(inst, ref)
	if err != nil {
		t.Fatalf("next fire: %v", err)
	}
	local := fire.In(loc)
	if local.Weekday() != time.Monday {
		t.Fatalf("expected Monday fire, got %v", local.Weekday())
	}
	if local.Day() != 10 {
		t.Fatalf("expected fire on June 10, got %v", local)
	}
}

func TestNextFireTimeEmptyMask(t *testing.T) {
	inst := testInstallation(0, 9*3600, 16*3600, "UTC")
	_, err := NextFireTime(inst, time.Now())
	if !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
}

func TestNextFireTimeDegenerateInterval(t *testing.T) {
	for _, tc := range []struct{ start, end int }{
		{16 * 3600, 9 * 3600},
		{9 * 3600, 9 * 3600},
		{0, 90000},
	} {
		inst := testInstallation(Monday, tc.start, tc.end, "UTC")
		if _, err := NextFireTime(inst, time.Now()); !errors.Is(err, ErrInvalidSchedule) {
			t.Fatalf("interval [%d,%d): expected ErrInvalidSchedule, got %v", tc.start, tc.end, err)
		}
	}
}

func TestNextFireTimeUnknownTimezone(t *testing.T) {
	inst := testInstallation(Monday, 9*3600, 16*3600, "Narnia/Lantern_Waste")
	if _, err := NextFireTime(inst, time.Now()); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule for unknown timezone, got %v", err)
	}
}

func TestNextFireTimeAcrossDSTTransition(t *testing.T) {
	loc, _ := time.LoadLocation("Europe/Copenhagen")

	// Saturday evening before the 2024-03-31 spring-forward; Sunday's clocks
	// skip 02:00-03:00 but the draw must stay inside the local window and
	// strictly after the reference.
	ref := time.Date(2024, 3, 30, 23, 0, 0, 0, loc)
	inst := testInstallation(Sunday, 9*3600, 16*3600, "Europe/Copenhagen")

	for i := 0; i < 50; i++ {
		fire, err := NextFireTime(inst, ref)
		if err != nil {
			t.Fatalf("next fire: %v", err)
		}
		if !fire.After(ref) {
			t.Fatalf("fire %v not after ref %v", fire, ref)
		}
		local := fire.In(loc)
		if local.Weekday() != time.Sunday || local.Day() != 31 {
			t.Fatalf("expected fire on Sunday March 31, got %v", local)
		}
		secs := localSeconds(local)
		if secs < inst.IntervalStart || secs >= inst.IntervalEnd {
			t.Fatalf("fire at %d local seconds outside window", secs)
		}
	}
}
