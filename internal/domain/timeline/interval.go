package timeline

import (
	"fmt"
	"time"
)

// Interval is an auto-refresh period. Zero means manual refresh only.
type Interval time.Duration

// Intervals lists the periods offered by the dashboard.
var Intervals = []Interval{
	0,
	Interval(30 * time.Second),
	Interval(time.Minute),
	Interval(5 * time.Minute),
	Interval(15 * time.Minute),
}

// IntervalFromSeconds validates secs against Intervals.
func IntervalFromSeconds(secs int) (Interval, error) {
	iv := Interval(time.Duration(secs) * time.Second)
	for _, allowed := range Intervals {
		if iv == allowed {
			return iv, nil
		}
	}
	return 0, fmt.Errorf("refresh interval %ds not offered (use 0, 30, 60, 300 or 900)", secs)
}

// Seconds returns the interval in whole seconds.
func (iv Interval) Seconds() int { return int(time.Duration(iv) / time.Second) }

// Off reports whether automatic refresh is disabled.
func (iv Interval) Off() bool { return iv == 0 }
