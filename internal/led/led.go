// Package led drives the status LED mirroring the A/C power state.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package led

// DefaultPin is the BCM pin number for the status LED.
const DefaultPin = 17

// Driver sets the LED state.
type Driver interface {
	// Set turns the LED on or off. LED on means the A/C unit is powered.
	Set(on bool) error

	// Close turns the LED off and releases GPIO resources.
	Close() error
}
