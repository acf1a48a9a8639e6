// Package persistence saves and restores the simulated kit's state
// between runs, so a simulator restart looks like hardware that kept
// its pin levels and display contents across a reset.
package persistence
