// Package asyncdelay implements the kit's periodic timer primitive: a
// polled, edge-triggered elapsed-time gate that rearms itself when it
// fires. It is the software counterpart of the firmware's AsyncDelay
// helper and carries no goroutines or channels; a polling loop queries
// it on every iteration.
package asyncdelay
