// Package cache provides a single bounded in-process cache pool.
// A pool composes three eviction signals: per entry TTL (lazy, checked on
// access), entry count capacity, and a byte budget with approximate value
// size estimation. All expiry and eviction work happens inline with caller
// operations; there are no background sweeps.
//
// Public operations never panic: internal faults degrade to a miss for Get
// and to false for mutators, so a failing pool behaves like an always empty
// one.
package cache
