package domain

import "cloud.google.com/go/civil"

// BuddhistEraOffset is the number of years the Buddhist Era runs ahead of the
// Gregorian calendar.
const BuddhistEraOffset = 543

// Era names the calendar a submitted published date was read in.
type Era string

const (
	EraGregorian Era = "gregorian"
	EraBuddhist  Era = "buddhist"
)

// NormalizePublishedDate turns a submitted published date into a Gregorian date
// no later than today.
//
// A date on or before today is returned unchanged. A later date is read as a
// Buddhist Era date: the year drops by BuddhistEraOffset and month and day are
// copied as-is. If that candidate is still after today, or is not a real day
// (BE 2560-02-29 becomes 2017-02-29), a *PublishDateError is returned. Only one
// adjustment is ever attempted.
func NormalizePublishedDate(date, today civil.Date) (civil.Date, error) {
	if !date.After(today) {
		return date, nil
	}

	adjusted := civil.Date{
		Year:  date.Year - BuddhistEraOffset,
		Month: date.Month,
		Day:   date.Day,
	}

	if adjusted.After(today) {
		return civil.Date{}, &PublishDateError{
			Date:     date,
			Adjusted: adjusted,
			Message:  MsgPublishDateInFuture,
		}
	}

	if !adjusted.IsValid() {
		return civil.Date{}, &PublishDateError{
			Date:     date,
			Adjusted: adjusted,
			Message:  MsgPublishDateNotOnCalendar,
		}
	}

	return adjusted, nil
}

// EraOf reports which calendar NormalizePublishedDate read submitted in, given
// the normalized result it produced.
func EraOf(submitted, normalized civil.Date) Era {
	if submitted == normalized {
		return EraGregorian
	}

	return EraBuddhist
}
