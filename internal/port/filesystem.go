package port

// SpaceInfo holds capacity figures for the volume backing a path
type SpaceInfo struct {
	Total  uint64 // Volume size in bytes
	Usable uint64 // Bytes available to this process
}

// UsedPercentage returns how much of the volume is in use, 0-100
func (s *SpaceInfo) UsedPercentage() float64 {
	if s.Total == 0 {
		return 0
	}
	return 100 - 100*float64(s.Usable)/float64(s.Total)
}

// UsableMB returns the usable space in megabytes
func (s *SpaceInfo) UsableMB() uint64 {
	return s.Usable / (1024 * 1024)
}

// VolumeStatter reports capacity for the volume backing a path
type VolumeStatter interface {
	// Space returns capacity figures for the volume containing path
	Space(path string) (*SpaceInfo, error)
}
