package timex

import "time"

// Date and time layouts stored in record payloads.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Clock abstracts the wall clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now in the local zone.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T. Useful in tests.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Today formats the clock's current date.
func Today(c Clock) string {
	return c.Now().Format(DateLayout)
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
