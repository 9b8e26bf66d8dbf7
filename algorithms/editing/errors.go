package editing

import "fmt"

// RangeErrorKind identifies which band-range rule was violated
type RangeErrorKind string

const (
	OutOfRange        RangeErrorKind = "OUT_OF_RANGE"
	MinGreaterThanMax RangeErrorKind = "MIN_GREATER_THAN_MAX"
	NegativeMin       RangeErrorKind = "NEGATIVE_MIN"
)

// RangeError reports an invalid band range. Its message is meant for users.
type RangeError struct {
	Kind     RangeErrorKind `json:"kind"`
	Lower    int            `json:"lower"`
	Upper    int            `json:"upper"`
	NumBands int            `json:"num_bands"`
}

func (e *RangeError) Error() string {
	switch e.Kind {
	case OutOfRange:
		return "Maximum is out of range"
	case MinGreaterThanMax:
		return "Minimum is greater than maximum"
	case NegativeMin:
		return "Minimum is less than 0"
	default:
		return fmt.Sprintf("invalid band range [%d, %d) for %d bands", e.Lower, e.Upper, e.NumBands)
	}
}

// Detail returns the message with the offending values, for logs
func (e *RangeError) Detail() string {
	return fmt.Sprintf("%s: bands [%d, %d) of %d", e.Error(), e.Lower, e.Upper, e.NumBands)
}
