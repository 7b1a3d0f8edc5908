// Package matchguard bounds the work a regular-expression evaluation may do.
//
// Go's regexp package is RE2-based and runs in time linear in the input, so
// the only way an evaluation becomes expensive is a very large input.  A Guard
// therefore caps the input size and, as a second line, runs the evaluation
// against a wall-clock budget.
package matchguard

import (
	"fmt"
	"regexp"
	"time"

	"github.com/turtacn/patent-normalizer/pkg/errors"
)

const (
	// DefaultTimeout is the evaluation budget used by Default.  It is
	// wall-clock time, so a starved scheduler can trip it on input that
	// would normally finish.  Inputs below DefaultTimedFrom are not timed.
	DefaultTimeout = 250 * time.Millisecond

	// DefaultTimedFrom is the input length (bytes) from which Default
	// applies the wall-clock budget.  Shorter inputs run inline.
	DefaultTimedFrom = 16 << 10

	// DefaultMaxInput is the input cap (bytes) used by Default.
	DefaultMaxInput = 1 << 20
)

var (
	// ErrTimeout is returned when an evaluation outlives its budget.
	ErrTimeout = errors.New(errors.ErrCodeTimeout, "match exceeded its time budget")

	// ErrInputTooLarge is returned when the input exceeds MaxInput.
	ErrInputTooLarge = errors.New(errors.ErrCodeValidation, "match input exceeds size limit")
)

// Guard bounds a single regular-expression evaluation.  The zero value
// imposes no limits.
type Guard struct {
	// Timeout is the wall-clock budget.  Zero or negative disables it.
	Timeout time.Duration

	// MaxInput is the maximum input length in bytes.  Zero or negative
	// disables it.
	MaxInput int

	// TimedFrom is the input length from which Timeout applies.  Below it
	// the evaluation runs inline on the caller's goroutine, bounded only by
	// MaxInput and RE2's linear running time.  Zero times every input.
	TimedFrom int
}

// Default is the guard used when a caller does not configure one.
var Default = Guard{Timeout: DefaultTimeout, MaxInput: DefaultMaxInput, TimedFrom: DefaultTimedFrom}

// Check reports whether input is within the size cap.
func (g Guard) Check(input string) error {
	if g.MaxInput > 0 && len(input) > g.MaxInput {
		return ErrInputTooLarge.WithDetail(fmt.Sprintf("len=%d max=%d", len(input), g.MaxInput))
	}
	return nil
}

// Run evaluates fn over input within the guard's limits.
//
// When the budget elapses the evaluation goroutine is abandoned; it finishes
// on its own because the input is size-capped and RE2 evaluation is linear.
func Run[T any](g Guard, input string, fn func(string) T) (T, error) {
	var zero T
	if err := g.Check(input); err != nil {
		return zero, err
	}
	if g.Timeout <= 0 || len(input) < g.TimedFrom {
		return fn(input), nil
	}

	done := make(chan T, 1)
	go func() {
		done <- fn(input)
	}()

	timer := time.NewTimer(g.Timeout)
	defer timer.Stop()

	select {
	case v := <-done:
		return v, nil
	case <-timer.C:
		return zero, ErrTimeout.WithDetail(g.Timeout.String())
	}
}

// FindStringSubmatchIndex is re.FindStringSubmatchIndex under the guard.
func (g Guard) FindStringSubmatchIndex(re *regexp.Regexp, s string) ([]int, error) {
	return Run(g, s, re.FindStringSubmatchIndex)
}

// FindAllStringSubmatchIndex is re.FindAllStringSubmatchIndex under the guard.
func (g Guard) FindAllStringSubmatchIndex(re *regexp.Regexp, s string, n int) ([][]int, error) {
	return Run(g, s, func(in string) [][]int {
		return re.FindAllStringSubmatchIndex(in, n)
	})
}

// FindAllStringSubmatch is re.FindAllStringSubmatch under the guard.
func (g Guard) FindAllStringSubmatch(re *regexp.Regexp, s string, n int) ([][]string, error) {
	return Run(g, s, func(in string) [][]string {
		return re.FindAllStringSubmatch(in, n)
	})
}

//Personal.AI order the ending
