// Package log provides structured protocol event capture for the UDC listener.
//
// Protocol capture is separate from operational logging (slog). Every
// datagram, every drop and every client state change can be recorded as an
// Event so a session can be replayed and analyzed after the fact.
//
// # Basic Usage
//
//	// Development: mirror events to the console
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// Production: append to a binary capture file
//	fl, _ := log.NewFileLogger("/var/log/mash/udc.mlog")
//	cfg.ProtocolLogger = fl
//
//	// Both
//	cfg.ProtocolLogger = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # Event Types
//
//   - Transport: raw datagram (FrameEvent)
//   - Wire: decoded packet and payload headers (MessageEvent)
//   - Service: client state changes (StateChangeEvent)
//
// Drops and failures at any layer are ErrorEventData.
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with the .mlog
// extension. `mash-udc log view` reads them back.
package log
