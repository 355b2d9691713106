// Package state holds the single authoritative tracker Document.
//
// Every public Store method runs under one mutex for its full duration and
// returns a deep copy, so callers can never observe a half-applied mutation or
// reach the live document through a snapshot. Methods ending in Locked assume
// the caller already holds the mutex; they are how multi-step operations such
// as Initialize reuse single-field mutations without re-acquiring the lock.
package state
