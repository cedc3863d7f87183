package core

import "errors"

// Delivery errors. Senders treat all of them as "drop and continue".
var (
	ErrMailboxClosed = errors.New("mailbox closed")
	ErrMailboxFull   = errors.New("mailbox full")
	ErrUnknownNeuron = errors.New("unknown neuron")
)

// Network lifecycle errors
var (
	ErrInvalidParams  = errors.New("invalid network parameters")
	ErrAlreadyStarted = errors.New("network already started")
	ErrNotStarted     = errors.New("network not started")

	// ErrBlockingPolicy is returned by StepAll for networks whose mailboxes
	// use the Block policy: a single goroutine cannot both wait for room and
	// drain the mailbox it waits on.
	ErrBlockingPolicy = errors.New("block overflow policy cannot be stepped on one goroutine")
)
