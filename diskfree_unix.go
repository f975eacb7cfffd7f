//go:build !windows

package wheelhouse

import "golang.org/x/sys/unix"

// freeDiskSpace returns the bytes available to the current user on the
// filesystem containing path.
func freeDiskSpace(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return uint64(st.Bavail) * uint64(st.Bsize), nil
}
