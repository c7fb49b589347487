package time2

import "time"

// Milliseconds returns d in milliseconds with sub-millisecond precision.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
