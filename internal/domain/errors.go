package domain

import "errors"

// Domain errors. Check with errors.Is.
var (
	// ErrNoEndpoint is returned when a print is attempted without a connected printer.
	ErrNoEndpoint = errors.New("printship: no printer endpoint")

	// ErrConnecting is returned when Connect is called while another connect is in flight.
	ErrConnecting = errors.New("printship: connection already in progress")

	// ErrWriteFailed is returned when a chunk exhausted its write attempts.
	ErrWriteFailed = errors.New("printship: printer write failed")

	// ErrDeviceNotFound is returned when discovery finds no matching printer.
	ErrDeviceNotFound = errors.New("printship: printer not found")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("printship: invalid configuration")

	// ErrInvalidSale is returned when a sale document cannot be turned into a receipt.
	ErrInvalidSale = errors.New("printship: invalid sale document")

	// ErrNoJournal is returned by reprint when nothing has been printed yet.
	ErrNoJournal = errors.New("printship: no printed receipt to repeat")
)
