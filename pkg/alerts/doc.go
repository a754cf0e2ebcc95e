// Package alerts defines the alert event type and the Sink interface the
// monitors and the usage tracker emit through. The gateway wires a log sink
// by default and fans out to the record store and metrics when configured.
package alerts
