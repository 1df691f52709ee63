// Package sensor provides ambient temperature reading with abstraction
// for testing. The real implementation queries an SNMP temperature probe;
// the fake implementation returns scripted readings.
package sensor

import "context"

// Reader reads the ambient temperature.
type Reader interface {
	// Read returns the current temperature in °C, or an error if the
	// probe is unreachable or its response is unparsable. A failed read
	// is recoverable — the caller skips the cycle and retries next tick.
	Read(ctx context.Context) (float64, error)

	// Close releases any resources held by the reader.
	Close() error
}
