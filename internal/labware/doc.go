// Package labware holds the static catalog of labware the deck planner knows about.
//
// The catalog is a fixed table built at init time and never mutated, so every
// lookup is safe for concurrent use without locking.
package labware
