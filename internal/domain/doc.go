// Package domain contains the core entities and errors of printship.
//
// It has no dependencies on infrastructure (Bluetooth, file system, logging).
//
// # Entities
//
//   - [SaleRecord]: a completed sale as supplied by the POS application
//   - [SaleLineItem]: one product line of a sale
//   - [PaymentEntry]: one payment method and amount
//   - [ReceiptOptions]: everything needed to render a receipt
//   - [PrintJob]: the journal record of a delivered receipt
//
// Entities are treated as immutable once handed to the encoder.
package domain
