package proxyseller

import "time"

// NextMonth is the single date-advancement rule for allocations: one
// calendar month, applied both at purchase and at prolongation.
func NextMonth(t time.Time) time.Time {
	return t.AddDate(0, 1, 0)
}

// PackageExpiry returns the expiry sent for resident sub-user
// packages. The provider requires it strictly inside (now, now+1
// month), hence one month minus a day.
func PackageExpiry(now time.Time) time.Time {
	return now.AddDate(0, 1, -1)
}
