package timing

import "strconv"

// Status is the display classification of a deviation.
type Status string

const (
	StatusLate    Status = "late"
	StatusEarly   Status = "early"
	StatusOnTime  Status = "on time"
	StatusUnknown Status = "unknown"
)

// Classify maps a deviation to late, early, on time or unknown.
// A nil deviation is unknown; it is never folded into on time.
func Classify(minutes *int) Status {
	switch {
	case minutes == nil:
		return StatusUnknown
	case *minutes > 0:
		return StatusLate
	case *minutes < 0:
		return StatusEarly
	default:
		return StatusOnTime
	}
}

// FormatMinutes renders a deviation for tabular output: "" for unknown,
// otherwise the signed integer.
func FormatMinutes(minutes *int) string {
	if minutes == nil {
		return ""
	}
	return strconv.Itoa(*minutes)
}
