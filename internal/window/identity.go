package window

import (
	"golang.org/x/sys/unix"
)

// clientIdentity returns the pid and node name published as _NET_WM_PID and
// WM_CLIENT_MACHINE.
func clientIdentity() (uint, string) {
	pid := uint(unix.Getpid())
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return pid, "localhost"
	}
	host := unix.ByteSliceToString(uts.Nodename[:])
	if host == "" {
		host = "localhost"
	}
	return pid, host
}
