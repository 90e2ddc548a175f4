package domain

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// IDGenerator issues identifiers. Exercises keep the legacy numeric scheme derived from the clock;
// every other record uses random strings.
type IDGenerator interface {
	NumericID() int64
	StringID() string
}

// ClockIDs derives numeric IDs from epoch milliseconds and string IDs from UUIDv4.
type ClockIDs struct {
	now  func() time.Time
	last atomic.Int64
}

// NewClockIDs constructs a ClockIDs; a nil now uses time.Now.
func NewClockIDs(now func() time.Time) *ClockIDs {
	if now == nil {
		now = time.Now
	}
	return &ClockIDs{now: now}
}

// NumericID returns the current epoch millisecond, bumped past the previous value so IDs issued
// within the same millisecond stay unique.
func (g *ClockIDs) NumericID() int64 {
	for {
		candidate := g.now().UnixMilli()
		prev := g.last.Load()
		if candidate <= prev {
			candidate = prev + 1
		}
		if g.last.CompareAndSwap(prev, candidate) {
			return candidate
		}
	}
}

// StringID returns a random UUID string.
func (g *ClockIDs) StringID() string {
	return uuid.NewString()
}

func blank(id string) bool {
	return strings.TrimSpace(id) == ""
}

// ServiceOption customises the services in this package.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	ids IDGenerator
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(ids IDGenerator) ServiceOption {
	return func(o *serviceOptions) {
		o.ids = ids
	}
}

func buildOptions(opts []ServiceOption) serviceOptions {
	o := serviceOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ids == nil {
		o.ids = NewClockIDs(nil)
	}
	return o
}
