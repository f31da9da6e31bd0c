package matcher

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies assignment failures.
type Kind int

const (
	CapacityExceeded Kind = iota + 1
	AlreadyEnrolled
	ScheduleIncompatible
	RoomConflict
)

var kindNames = map[Kind]string{
	CapacityExceeded:     "CapacityExceeded",
	AlreadyEnrolled:      "AlreadyEnrolled",
	ScheduleIncompatible: "ScheduleIncompatible",
	RoomConflict:         "RoomConflict",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// AssignmentError reports why a teacher, student or room cannot be assigned to a course.
type AssignmentError struct {
	Kind Kind
	Msg  string
	// CourseID is the other course involved in a conflict, if any.
	CourseID int
}

func (e *AssignmentError) Error() string { return e.Msg }

// NewError builds an AssignmentError with a formatted message.
func NewError(kind Kind, format string, args ...interface{}) *AssignmentError {
	return &AssignmentError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// AsAssignmentError returns the *AssignmentError at the root of err, if any.
func AsAssignmentError(err error) (*AssignmentError, bool) {
	aErr, ok := errors.Cause(err).(*AssignmentError)
	return aErr, ok
}

func IsKind(err error, kind Kind) bool {
	aErr, ok := AsAssignmentError(err)
	return ok && aErr.Kind == kind
}
