package window

import "time"

// RetryPolicy bounds how often a transient failure, such as a pointer grab
// refused because another client holds it, is retried.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 5, Delay: 50 * time.Millisecond}
}

// Do calls fn until it succeeds or the attempts run out, sleeping Delay
// after each failure. The last error is returned when no attempt succeeded.
func (p RetryPolicy) Do(fn func() (bool, error)) (bool, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		ok, err := fn()
		if ok {
			return true, nil
		}
		lastErr = err
		if i < attempts-1 && p.Delay > 0 {
			time.Sleep(p.Delay)
		}
	}
	return false, lastErr
}
