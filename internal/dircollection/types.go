package dircollection

// DiskErrorCause classifies why a directory failed its health check
type DiskErrorCause int

const (
	// DiskErrorCauseDiskFull marks a utilization or free-space breach
	DiskErrorCauseDiskFull DiskErrorCause = iota
	// DiskErrorCauseOther marks validator, permission and I/O failures
	DiskErrorCauseOther
)

// String returns the cause name
func (c DiskErrorCause) String() string {
	switch c {
	case DiskErrorCauseDiskFull:
		return "DISK_FULL"
	case DiskErrorCauseOther:
		return "OTHER"
	default:
		return "UNKNOWN"
	}
}

// DiskErrorInformation carries the diagnostic attached to a failed directory
type DiskErrorInformation struct {
	Cause   DiskErrorCause
	Message string
}

// DirsChangeListener receives a callback whenever the set of good
// directories changes composition
type DirsChangeListener interface {
	OnDirsChanged()
}
