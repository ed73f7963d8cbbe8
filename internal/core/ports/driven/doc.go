// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - HostProbe: Mount table, home directory and directory listing
//   - Walker: Recursive, cancellable directory traversal
//   - ContentReader: Bounded file reads
//   - Normaliser: Turns one file format into text
//   - NormaliserRegistry: Selects the appropriate normaliser
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Throttle: Paces file reads. Without it reads are unlimited.
//   - Tokenizer: Token estimates for formatted documents.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
