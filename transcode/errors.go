package transcode

import "fmt"

// DecodeError describes a failure to load or write audio
type DecodeError struct {
	Source  string `json:"source"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Source != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Source)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeOpen          = "OPEN_FAILED"
	ErrCodeInvalidFormat = "INVALID_FORMAT"
	ErrCodeDecoding      = "DECODING_FAILED"
	ErrCodeProbe         = "PROBE_FAILED"
	ErrCodeTimeout       = "TIMEOUT"
	ErrCodeEncoding      = "ENCODING_FAILED"
	ErrCodeEmpty         = "NO_SAMPLES"
)

// NewDecodeError creates a new decode error
func NewDecodeError(source, code, message string, cause error) *DecodeError {
	return &DecodeError{
		Source:  source,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
