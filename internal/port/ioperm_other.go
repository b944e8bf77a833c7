//go:build linux && !(amd64 || 386)

package port

// Without ioperm, access is governed by the permissions on /dev/port alone.
func ioperm(from, num int, on bool) error {
	return nil
}
