package task

import (
	"math"
	"strings"
	"time"

	"github.com/example/task-approval/domain/apperr"
)

// DateLayout is the calendar-date wire format.
const DateLayout = "2006-01-02"

var dateLayouts = []string{DateLayout, time.RFC3339Nano, time.RFC3339}

// ParseDate parses a calendar date or an RFC 3339 timestamp. field names the
// input in the error message.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperr.Validation("%s is required", field)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation("%s %q is not a valid date", field, value)
}

// DurationDays is the inclusive day count of [start, due], at least 1.
func DurationDays(start, due time.Time) int {
	days := int(math.Ceil(due.Sub(start).Hours()/24)) + 1
	return max(days, 1)
}

// Schedule is a validated date window with its derived duration.
type Schedule struct {
	StartDate    time.Time
	DueDate      time.Time
	DurationDays int
}

// NewSchedule checks start <= due and derives the duration.
func NewSchedule(start, due time.Time) (Schedule, error) {
	if start.After(due) {
		return Schedule{}, apperr.Validation("startDate %s is after dueDate %s",
			start.Format(DateLayout), due.Format(DateLayout))
	}
	return Schedule{
		StartDate:    start,
		DueDate:      due,
		DurationDays: DurationDays(start, due),
	}, nil
}

// ParseSchedule parses and validates raw start and due dates.
func ParseSchedule(startRaw, dueRaw string) (Schedule, error) {
	start, err := ParseDate("startDate", startRaw)
	if err != nil {
		return Schedule{}, err
	}
	due, err := ParseDate("dueDate", dueRaw)
	if err != nil {
		return Schedule{}, err
	}
	return NewSchedule(start, due)
}

// WithinProject rejects a due date past the project's end. A project
// without an end date accepts any due date.
func (s Schedule) WithinProject(projectEnd *time.Time) error {
	if projectEnd == nil || projectEnd.IsZero() {
		return nil
	}
	if s.DueDate.After(*projectEnd) {
		return apperr.Validation("dueDate %s is after the project end date %s",
			s.DueDate.Format(DateLayout), projectEnd.Format(DateLayout))
	}
	return nil
}

// ValidateForProject is the full check used when creating, rejecting and
// reassigning: both dates parse, start <= due, and due <= project end.
func ValidateForProject(startRaw, dueRaw string, projectEnd *time.Time) (Schedule, error) {
	s, err := ParseSchedule(startRaw, dueRaw)
	if err != nil {
		return Schedule{}, err
	}
	if err := s.WithinProject(projectEnd); err != nil {
		return Schedule{}, err
	}
	return s, nil
}
