package performance

import "errors"

// Sentinel kinds for performance table errors.
var (
	ErrNoRecords     = errors.New("no valid performance records")
	ErrWeekNotLoaded = errors.New("no performance records loaded for week")
)
