package logging

import "time"

// Timer measures the duration of an operation and logs it on Stop.
type Timer struct {
	category  Category
	operation string
	start     time.Time
}

// StartTimer begins timing an operation.
func StartTimer(cat Category, operation string) *Timer {
	return &Timer{category: cat, operation: operation, start: time.Now()}
}

// Stop logs the elapsed time at debug level, or warn if it exceeded 30s.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	l := Get(t.category)
	if elapsed > 30*time.Second {
		l.Warnf("%s took %v (slow)", t.operation, elapsed)
	} else {
		l.Debugf("%s took %v", t.operation, elapsed)
	}
	return elapsed
}
