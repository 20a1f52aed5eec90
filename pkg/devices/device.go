// Package devices holds the machine's I/O hardware: the keyboard latch and
// the cassette tape.
package devices

// StatefulDevice is a device whose state survives hibernation.
type StatefulDevice interface {
	Type() string
	SaveState() []byte
	LoadState(data []byte) error
}
