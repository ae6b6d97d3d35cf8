package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// SameDay reports whether now falls on the calendar day d, evaluated in
// now's location. Callers choose the user's day boundary by passing a time
// in the right location.
func SameDay(d civil.Date, now time.Time) bool {
	return civil.DateOf(now) == d
}
