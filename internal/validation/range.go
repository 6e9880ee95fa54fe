package validation

import "github.com/cryptofolio/backend/internal/apperrors"

// rangeDays maps the accepted history range tokens to their lookback
// window in days.
var rangeDays = map[string]int{
	"7d":  7,
	"30d": 30,
	"1y":  365,
}

// RangeDays resolves a history range token to its window length.
// Anything other than 7d, 30d or 1y is a client error, never clamped.
func RangeDays(token string) (int, error) {
	days, ok := rangeDays[token]
	if !ok {
		return 0, apperrors.ErrInvalidRange
	}
	return days, nil
}
