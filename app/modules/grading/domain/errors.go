package gradingdomain

import "errors"

var (
	ErrResultsUnavailable = errors.New("results unavailable")
	ErrResultsMismatch    = errors.New("results not updated, wrong season or sequence")
)
