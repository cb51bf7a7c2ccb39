package cache

import (
	"fmt"
	"time"
)

// Entry is a single cached value with its bookkeeping. Entries are never
// compared, only replaced or removed.
type Entry struct {
	Value   interface{}
	Written time.Time
	// TTL <= 0 means entry never expires.
	TTL         time.Duration
	AccessCount int64
	LastAccess  time.Time
	// SizeBytes is estimated once at write time.
	SizeBytes int64
}

func (e *Entry) expired(now time.Time) bool {
	return e.TTL > 0 && now.Sub(e.Written) > e.TTL
}

func (e Entry) GoString() string {
	return fmt.Sprintf("{Value:%v, Written:%v, TTL:%v, AccessCount:%v, SizeBytes:%v}",
		e.Value, e.Written.Unix(), e.TTL, e.AccessCount, e.SizeBytes)
}
