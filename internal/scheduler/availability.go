package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/JAMAutoLtd/customer-portal-sub001/internal/models"
)

// ResolveAvailability merges a technician's recurring weekly hours with
// date-specific exceptions into the list of disjoint windows the technician
// can work on the given date.
//
// Exceptions for a date replace the weekly defaults rather than merging
// with them: a full-day unavailability yields an empty set regardless of
// defaults, a timed is_available exception yields exactly its stated
// window, and a timed unavailability subtracts its window from the
// defaults. A date with neither defaults nor exceptions is unavailable.
func ResolveAvailability(tech models.Technician, exceptions []models.AvailabilityException, date time.Time) ([]TimeWindow, error) {
	defaults, err := defaultWindows(tech, date)
	if err != nil {
		return nil, err
	}

	var dayExceptions []models.AvailabilityException
	for _, ex := range exceptions {
		if ex.TechnicianID == tech.ID && sameDate(ex.Date, date) {
			dayExceptions = append(dayExceptions, ex)
		}
	}
	if len(dayExceptions) == 0 {
		return defaults, nil
	}

	windows := defaults
	for _, ex := range dayExceptions {
		if ex.FullDay() {
			if ex.IsAvailable {
				// A full-day "available" exception with no stated window
				// carries no times to grant; the defaults stand.
				continue
			}
			return nil, nil
		}
		window, err := exceptionWindow(ex, date)
		if err != nil {
			return nil, err
		}
		if ex.IsAvailable {
			windows = []TimeWindow{window}
		} else {
			windows = SubtractAll(windows, []TimeWindow{window})
		}
	}
	return windows, nil
}

func defaultWindows(tech models.Technician, date time.Time) ([]TimeWindow, error) {
	weekday := int(date.Weekday())
	var windows []TimeWindow
	for _, hours := range tech.DefaultHours {
		if hours.DayOfWeek != weekday {
			continue
		}
		start, err := clockOnDate(date, hours.StartTime)
		if err != nil {
			return nil, fmt.Errorf("default hours for technician %s: %w", tech.ID, err)
		}
		end, err := clockOnDate(date, hours.EndTime)
		if err != nil {
			return nil, fmt.Errorf("default hours for technician %s: %w", tech.ID, err)
		}
		w := TimeWindow{Start: start, End: end}
		if w.IsZero() {
			continue
		}
		windows = append(windows, w)
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].Start.Before(windows[j].Start) })
	return windows, nil
}

func exceptionWindow(ex models.AvailabilityException, date time.Time) (TimeWindow, error) {
	start, err := clockOnDate(date, *ex.StartTime)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("exception %s: %w", ex.ID, err)
	}
	end, err := clockOnDate(date, *ex.EndTime)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("exception %s: %w", ex.ID, err)
	}
	return TimeWindow{Start: start, End: end}, nil
}
