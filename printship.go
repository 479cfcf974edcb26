// Package printship renders thermal receipts for the Altoke point of sale and
// ships them to a BLE ESC/POS printer.
//
// Example usage:
//
//	opts, err := printship.LoadSale("sale-1042.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := printship.New(printship.BLE())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Disconnect()
//	if _, err := client.Print(context.Background(), opts); err != nil {
//	    log.Fatal(err)
//	}
//
// The embeddable client lives in pkg/printship; this package re-exports the
// entry points most callers need.
package printship

import (
	lib "github.com/altoke/printship/pkg/printship"
)

// ReceiptOptions aggregates the sale, operator, payments and header of a receipt.
type ReceiptOptions = lib.ReceiptOptions

// Client prints receipts on one printer.
type Client = lib.Client

// Option configures a Client.
type Option = lib.Option

// Connector establishes a printer connection.
type Connector = lib.Connector

// New creates a disconnected client.
func New(connector Connector, opts ...Option) (*Client, error) {
	return lib.New(connector, opts...)
}

// BLE returns a connector reaching the printer over BlueZ.
func BLE(opts ...lib.BLEOption) Connector {
	return lib.BLE(opts...)
}

// Render encodes a receipt without printing it.
func Render(opts ReceiptOptions) ([]byte, error) {
	return lib.Render(opts)
}

// LoadSale reads a JSON or YAML sale document.
func LoadSale(path string) (ReceiptOptions, error) {
	return lib.LoadSale(path)
}
