package worker

import "fmt"

type panicError struct {
	value any
}

func (e panicError) Error() string {
	return fmt.Sprintf("invocation panicked: %v", e.value)
}
