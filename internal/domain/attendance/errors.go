package attendance

import "errors"

var (
	ErrAttendanceNotFound = errors.New("attendance log not found")
	ErrInvalidStatus      = errors.New("invalid attendance status")
)
