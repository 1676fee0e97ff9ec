package domain

import "time"

// MakeTimeRange returns begin, begin+step, begin+2*step, ... strictly before end.
// It returns nil when step is not positive or end is not after begin.
func MakeTimeRange(begin, end time.Time, step time.Duration) []time.Time {
	if step <= 0 || !end.After(begin) {
		return nil
	}

	n := int(end.Sub(begin) / step)
	if end.Sub(begin)%step != 0 {
		n++
	}

	times := make([]time.Time, 0, n)
	for t := begin; t.Before(end); t = t.Add(step) {
		times = append(times, t)
	}
	return times
}
