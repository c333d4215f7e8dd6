// Package refcount implements the acquire/release discipline shared by the
// process-wide singletons: the first acquire builds, the last release tears
// down, and releasing more than was acquired is a caller bug.
package refcount

import (
	"errors"
	"fmt"
)

// ErrUsage matches every UsageError.
var ErrUsage = errors.New("refcount: unbalanced release")

// UsageError reports a release that has no matching acquire.
type UsageError struct {
	Resource string
	Detail   string
}

func (e *UsageError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("refcount: %s released more times than acquired", e.Resource)
	}
	return fmt.Sprintf("refcount: %s: %s", e.Resource, e.Detail)
}

// Is makes errors.Is(err, ErrUsage) succeed.
func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}

// Counter is a non-negative reference count. It is not safe for concurrent
// use; callers run on the host's single logical thread.
type Counter struct {
	resource string
	n        int
}

// New returns a zero counter labelled for error messages.
func New(resource string) *Counter {
	return &Counter{resource: resource}
}

// Acquire increments the count and reports whether this was the 0 -> 1 edge.
func (c *Counter) Acquire() bool {
	c.n++
	return c.n == 1
}

// Release decrements the count and reports whether this was the 1 -> 0 edge.
// Releasing at zero returns a *UsageError and leaves the count at zero.
func (c *Counter) Release() (bool, error) {
	if c.n == 0 {
		return false, &UsageError{Resource: c.resource}
	}
	c.n--
	return c.n == 0, nil
}

// Count returns the current number of holders.
func (c *Counter) Count() int {
	return c.n
}

// Resource returns the counter label.
func (c *Counter) Resource() string {
	return c.resource
}
