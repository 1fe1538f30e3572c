package mp4io

import (
	"math"
	"time"
)

// Seconds between 1904-01-01 and 1970-01-01.
const epochDelta = 2082844800

// ToUnixTime converts a 1904 based timestamp to Unix seconds. Zero means
// the field is unset and yields nil.
func ToUnixTime(raw uint32) *int64 {
	if raw == 0 {
		return nil
	}
	sec := int64(raw) - epochDelta
	return &sec
}

// ToUnixTime64 is ToUnixTime for version 1 boxes. Values past the int64
// range saturate at math.MaxInt64 before the epoch shift.
func ToUnixTime64(raw uint64) *int64 {
	if raw == 0 {
		return nil
	}
	if raw > math.MaxInt64 {
		raw = math.MaxInt64
	}
	sec := int64(raw) - epochDelta
	return &sec
}

func UnixTime(sec *int64) (t time.Time, ok bool) {
	if sec == nil {
		return
	}
	return time.Unix(*sec, 0).UTC(), true
}
