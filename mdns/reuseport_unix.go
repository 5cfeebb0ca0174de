//go:build unix

package mdns

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// reusePortControl is a net.ListenConfig.Control func that sets
// SO_REUSEADDR (and SO_REUSEPORT where available) so more than one mDNS
// participant can bind UDP/5353 on the same host, per §6's socket
// configuration list.
func reusePortControl(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		if sockErr != nil {
			return
		}
		// SO_REUSEPORT is best-effort: not every unix supports it, and
		// SO_REUSEADDR alone is enough to bind on most BSD-derived stacks.
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
