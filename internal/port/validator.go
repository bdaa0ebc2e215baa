package port

// DiskValidator performs a device-level health check on a single directory.
// Implementations may touch the disk and can block; callers must not invoke
// them while holding shared locks.
type DiskValidator interface {
	// CheckStatus verifies that the directory exists and is usable for I/O.
	// A non-nil error means the directory failed validation.
	CheckStatus(path string) error
}
