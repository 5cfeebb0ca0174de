package dnswire

import "fmt"

// Error sentinels for the codec. Callers compare with errors.Is; the
// concrete error values below carry the extra context each kind needs.
var (
	// ErrInsufficientData is returned when a read or write ran off the end
	// of the available bytes.
	ErrInsufficientData = fmt.Errorf("dnswire: insufficient data")
	// ErrInvalidHeaderData is returned when header bytes are internally
	// inconsistent, e.g. a section count implies more bytes than remain.
	ErrInvalidHeaderData = fmt.Errorf("dnswire: invalid header data")
	// ErrInvalidName is returned for oversized labels/names or malformed or
	// cyclic compression pointers.
	ErrInvalidName = fmt.Errorf("dnswire: invalid name")
	// ErrInvalidCharacterString is returned when a character-string length
	// byte overruns the available rdata.
	ErrInvalidCharacterString = fmt.Errorf("dnswire: invalid character-string")
	// ErrInvalidDnsPacket is returned for rdata length mismatches, malformed
	// options, or other packet-level inconsistencies.
	ErrInvalidDnsPacket = fmt.Errorf("dnswire: invalid dns packet")
	// ErrInvalidServiceName is returned by discovery.Discovery.Advertise for
	// a service it cannot advertise (a zero port). Malformed names are
	// reported as ErrInvalidName.
	ErrInvalidServiceName = fmt.Errorf("dnswire: invalid service name")
	// ErrTimeout is the error kind for an expired wait. The one-shot
	// resolver in package discovery does not return it: a wait that ends
	// without an answer yields no result and a nil error.
	ErrTimeout = fmt.Errorf("dnswire: timeout")
)

// wireError wraps one of the sentinel kinds above with positional context
// while still satisfying errors.Is against the sentinel.
type wireError struct {
	kind error
	msg  string
}

func (e *wireError) Error() string { return e.msg }
func (e *wireError) Unwrap() error { return e.kind }

func newWireError(kind error, format string, args ...any) error {
	return &wireError{kind: kind, msg: fmt.Sprintf("%s: %s", kind.Error(), fmt.Sprintf(format, args...))}
}
