package button

import (
	"fmt"
	"math/rand"
	"time"
)

// secondsPerDay is the exclusive upper bound for an interval end.
const secondsPerDay = 86400

// NextFireTime computes the next instant at which the button should be
// posted for inst, strictly after ref. The fire day is the earliest day on
// or after ref's local date whose weekday bit is set; the moment within that
// day is drawn uniformly from [IntervalStart, IntervalEnd) seconds after
// local midnight. Today only qualifies while the local clock is still before
// IntervalEnd. All arithmetic is done in the installation's timezone so DST
// transitions cannot produce an instant in the past.
func NextFireTime(inst *Installation, ref time.Time) (time.Time, error) {
	if inst.Weekdays&0x7F == 0 {
		return time.Time{}, fmt.Errorf("team %s: empty weekday mask: %w", inst.TeamID, ErrInvalidSchedule)
	}
	if inst.IntervalStart < 0 || inst.IntervalStart >= inst.IntervalEnd || inst.IntervalEnd > secondsPerDay {
		return time.Time{}, fmt.Errorf("team %s: interval [%d,%d): %w",
			inst.TeamID, inst.IntervalStart, inst.IntervalEnd, ErrInvalidSchedule)
	}

	loc, err := time.LoadLocation(inst.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("team %s: timezone %q: %w", inst.TeamID, inst.Timezone, ErrInvalidSchedule)
	}

	local := ref.In(loc)
	year, month, day := local.Date()
	clock := local.Hour()*3600 + local.Minute()*60 + local.Second()

	// Day 0 is today; if today is past its window (or its draw range is
	// exhausted) the same weekday one week out still qualifies, hence 8.
	for offset := 0; offset < 8; offset++ {
		// Noon sidesteps zones where midnight does not exist on DST days.
		candidate := time.Date(year, month, day+offset, 12, 0, 0, 0, loc)
		if inst.Weekdays&(1<<int(candidate.Weekday())) == 0 {
			continue
		}

		lower := inst.IntervalStart
		if offset == 0 {
			if clock+1 >= inst.IntervalEnd {
				continue
			}
			if clock+1 > lower {
				lower = clock + 1
			}
		}

		secs := lower + rand.Intn(inst.IntervalEnd-lower)
		fire := time.Date(year, month, day+offset, 0, 0, secs, 0, loc)
		if !fire.After(ref) {
			continue
		}
		return fire, nil
	}

	return time.Time{}, fmt.Errorf("team %s: no eligible fire day: %w", inst.TeamID, ErrInvalidSchedule)
}
