package analyze

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// majorHolidays are the distribution-heavy holidays the ops team plans
// around.
var majorHolidays = []*cal.Holiday{us.ThanksgivingDay, us.ChristmasDay}

// HolidayIn reports whether the month containing t holds one of the
// major US holidays, returning the holiday name.
func HolidayIn(t time.Time) (string, bool) {
	for _, hol := range majorHolidays {
		_, observed := hol.Calc(t.Year())
		if observed.Year() == t.Year() && observed.Month() == t.Month() {
			return hol.Name, true
		}
	}
	return "", false
}
