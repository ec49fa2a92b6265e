//go:build unix

package repo

import (
	"os"

	"golang.org/x/sys/unix"
)

// readLarge memory-maps path read-only rather than copying it into a
// Go-managed buffer, for files over mmapThreshold. Platform dispatch
// mirrors the process package's use of golang.org/x/sys.
func readLarge(f *os.File, size int64) ([]byte, func(), error) {
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	return data, func() { _ = unix.Munmap(data) }, nil
}
