package grid

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Period selects which part of a month the grid shows, matching the biweekly settlement cycle.
type Period string

const (
	FirstHalf  Period = "FIRST_HALF"
	SecondHalf Period = "SECOND_HALF"
	Full       Period = "FULL"
)

const halfMonthDays = 15

var (
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrInvalidSelection = errors.New("invalid selection")
)

func ParsePeriod(value string) (Period, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(FirstHalf), "FIRST":
		return FirstHalf, nil
	case string(SecondHalf), "SECOND":
		return SecondHalf, nil
	case string(Full), "ALL":
		return Full, nil
	default:
		return "", fmt.Errorf("%w: %q (want FIRST_HALF, SECOND_HALF or FULL)", ErrInvalidPeriod, value)
	}
}

// DefaultPeriod picks the half of the month that contains day.
func DefaultPeriod(day int) Period {
	if day <= halfMonthDays {
		return FirstHalf
	}
	return SecondHalf
}

// DaysInMonth takes a 1-based month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DayRange lists the visible days of the month for the period, ascending.
func DayRange(year, month int, period Period) []int {
	dim := DaysInMonth(year, month)

	first, last := 1, dim
	switch period {
	case FirstHalf:
		last = min(halfMonthDays, dim)
	case SecondHalf:
		first = halfMonthDays + 1
	}

	if last < first {
		return nil
	}
	days := make([]int, 0, last-first+1)
	for d := first; d <= last; d++ {
		days = append(days, d)
	}
	return days
}

func DateString(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// Selection is the year, month and period the grid is scoped to.
type Selection struct {
	Year   int
	Month  int
	Period Period
}

// CurrentSelection returns the selection for the month containing now.
func CurrentSelection(now time.Time) Selection {
	return Selection{
		Year:   now.Year(),
		Month:  int(now.Month()),
		Period: DefaultPeriod(now.Day()),
	}
}

func (s Selection) Validate() error {
	if s.Year <= 0 {
		return fmt.Errorf("%w: year %d", ErrInvalidSelection, s.Year)
	}
	if s.Month < 1 || s.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidSelection, s.Month)
	}
	switch s.Period {
	case FirstHalf, SecondHalf, Full:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, s.Period)
	}
}

func (s Selection) Days() []int {
	return DayRange(s.Year, s.Month, s.Period)
}

func (s Selection) DaysInMonth() int {
	return DaysInMonth(s.Year, s.Month)
}

func (s Selection) Date(day int) string {
	return DateString(s.Year, s.Month, day)
}

func (s Selection) String() string {
	return fmt.Sprintf("%04d-%02d %s", s.Year, s.Month, s.Period)
}
