package domain

import "time"

// IsOver18 returns true if the person with the given birth date is 18 years old or older
// at the specified reference time. Uses calendar arithmetic (AddDate) for accurate
// birthday-boundary handling.
//
// Example:
//
//	birthDate := time.Date(2000, 1, 15, 0, 0, 0, 0, time.UTC)
//	now := time.Date(2018, 1, 15, 0, 0, 0, 0, time.UTC) // Exactly 18th birthday
//	IsOver18(birthDate, now) // returns true
func IsOver18(birthDate, now time.Time) bool {
	adultAt := birthDate.UTC().AddDate(18, 0, 0)
	return !now.UTC().Before(adultAt)
}

// AgeAt returns the completed age in years at the reference time.
// Returns 0 for birth dates in the future.
func AgeAt(birthDate, now time.Time) int {
	birthDate = birthDate.UTC()
	now = now.UTC()
	if birthDate.After(now) {
		return 0
	}
	years := now.Year() - birthDate.Year()
	// Birthday not yet reached this year
	if now.AddDate(-years, 0, 0).Before(birthDate) {
		years--
	}
	return years
}
