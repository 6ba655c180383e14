package platform

import "fmt"

// Status is the result convention shared by all hooks: zero is success,
// negative values are failure kinds. The named codes below are the common
// vocabulary; boards may return their own negative codes as well.
type Status int32

const (
	StatusOK               Status = 0
	StatusFailed           Status = -1
	StatusNotSupported     Status = -2
	StatusInvalidParam     Status = -3
	StatusDenied           Status = -4
	StatusInvalidAddress   Status = -5
	StatusAlreadyAvailable Status = -6
)

// OK reports whether the status is a success.
func (s Status) OK() bool {
	return s == StatusOK
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	case StatusNotSupported:
		return "not supported"
	case StatusInvalidParam:
		return "invalid parameter"
	case StatusDenied:
		return "denied"
	case StatusInvalidAddress:
		return "invalid address"
	case StatusAlreadyAvailable:
		return "already available"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}
