package layout

import "errors"

var (
	// ErrInvalidEventRange is returned when an event's start date is after
	// its end date. Such events are never packed.
	ErrInvalidEventRange = errors.New("layout: invalid event range")

	// ErrInvalidWindow is returned for a month/year pair that does not name
	// a real month.
	ErrInvalidWindow = errors.New("layout: invalid window")
)
