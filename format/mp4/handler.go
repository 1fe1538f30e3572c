package mp4

const Ext = ".mp4"

// Probe reports whether b starts like an ISO base media file. Only the
// type of the first box is looked at.
func Probe(b []byte) bool {
	if len(b) < 8 {
		return false
	}
	switch string(b[4:8]) {
	case "moov", "ftyp", "styp", "free", "mdat", "moof", "skip", "wide":
		return true
	}
	return false
}
