//go:build !unix

package mdns

import "syscall"

// reusePortControl is a no-op on non-unix platforms; SO_REUSEADDR/
// SO_REUSEPORT have no portable equivalent there via syscall.RawConn.
func reusePortControl(_, _ string, _ syscall.RawConn) error { return nil }
