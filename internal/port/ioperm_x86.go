//go:build linux && (amd64 || 386)

package port

import "golang.org/x/sys/unix"

func ioperm(from, num int, on bool) error {
	v := 0
	if on {
		v = 1
	}
	return unix.Ioperm(from, num, v)
}
