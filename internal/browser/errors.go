package browser

import (
	"errors"
	"fmt"
	"time"
)

// ErrVisibilityTimeout возвращается, когда элемент не стал видимым за отведенное время.
var ErrVisibilityTimeout = errors.New("visibility timeout")

type TimeoutError struct {
	Selector string
	State    string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: элемент %q не перешел в состояние %s за %v",
		ErrVisibilityTimeout, e.Selector, e.State, e.Timeout)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrVisibilityTimeout
}
