// Package core implements the neuron network engine.
//
// Every neuron runs on its own goroutine, drains a bounded mailbox, publishes
// its activity into a shared table and reschedules itself with an adaptive
// backoff. There is no central clock or scheduler; Network only builds the
// neurons, launches them and reads activity snapshots.
package core
