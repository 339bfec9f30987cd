// Package persistence saves simulated battery state across restarts.
//
// The state is a small JSON document written atomically next to its
// final path and renamed into place.
package persistence
