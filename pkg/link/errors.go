package link

// Common error codes
const (
	ErrCodeOpen      = "CONNECTION_FAILED"
	ErrCodeTimeout   = "TIMEOUT"
	ErrCodeProtocol  = "PROTOCOL_ERROR"
	ErrCodeShortRead = "SHORT_READ"
)

// LinkError represents capture-link related errors
type LinkError struct {
	Device  string `json:"device"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *LinkError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *LinkError) Unwrap() error {
	return e.Cause
}

// NewLinkError creates a new link error
func NewLinkError(device, code, message string, cause error) *LinkError {
	return &LinkError{
		Device:  device,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
