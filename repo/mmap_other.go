//go:build !unix

package repo

import "os"

// readLarge falls back to a plain read on platforms without a mmap
// syscall wired up here (e.g. Windows); the scanner's behavior is
// identical.
func readLarge(f *os.File, size int64) ([]byte, func(), error) {
	buf := make([]byte, size)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return nil, nil, err
	}
	return buf, func() {}, nil
}
