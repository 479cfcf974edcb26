// Package printship renders thermal receipts for the Altoke point of sale and
// delivers them to an ESC/POS printer.
//
// It can be used through the printship CLI or embedded in other Go programs.
//
// # Basic Usage
//
//	client, err := printship.New(printship.BLE(printship.WithDevice("66:22:AA:BB:CC:DD")),
//	    printship.WithJournalDir("/var/lib/printship"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Disconnect()
//
//	job, err := client.Print(ctx, printship.ReceiptOptions{
//	    Sale:     sale,
//	    Operator: "Ana",
//	    Payments: []printship.PaymentEntry{{Name: "Efectivo", Amount: 20}},
//	})
//
// # Connections
//
// A [Client] owns at most one printer endpoint. [Client.Connect] obtains it
// from the configured [Connector]; Print connects on demand unless
// [WithoutAutoConnect] is given. When a chunk exhausts its write attempts the
// client disconnects and the next print reconnects.
//
// # Transport
//
// Receipts are split into chunks of at most [TransportConfig].MaxChunkSize
// bytes. Chunks are paced by ChunkDelay and each one is retried up to
// MaxAttempts times, RetryDelay apart.
//
// # Event Handling
//
// Implement [EventHandler] and pass it via [WithEventHandler] to observe
// connection state changes and print results. Events are called synchronously
// and should return quickly.
package printship
