// Package ports defines the interfaces that connect the application layer to
// infrastructure adapters.
//
// # Port Interfaces
//
//   - [Endpoint]: a write-only printer characteristic
//   - [Connector]: discovers a printer and returns its Endpoint
//   - [JournalRepository]: persists the last printed job
//   - [Logger]: structured logging abstraction
//
// The application layer (internal/app) and the transport depend only on these
// interfaces. Adapters under internal/adapters implement them with BlueZ,
// device files, JSON files and zerolog.
package ports
