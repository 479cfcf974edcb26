package domain

import "time"

// PrintJob records a receipt that reached the printer.
type PrintJob struct {
	Options   ReceiptOptions `json:"options"`
	Bytes     int            `json:"bytes"`
	Chunks    int            `json:"chunks"`
	Retries   int            `json:"retries"`
	PrintedAt time.Time      `json:"printed_at"`
}

// IsEmpty reports whether the job was never filled in.
func (j PrintJob) IsEmpty() bool {
	return j.PrintedAt.IsZero()
}
