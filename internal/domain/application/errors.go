package application

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("application not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnknownOperation  = errors.New("unknown operation")
	// ErrGuardViolation matches every *GuardViolation under errors.Is.
	ErrGuardViolation = &GuardViolation{}
)

// TransitionError reports an operation that is not legal from the current status.
type TransitionError struct {
	Op      Operation
	Current Status
	Target  Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s: application is %s (operation leads to %s)", e.Op, e.Current, e.Target)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

type GuardCode string

const (
	CodeSlotsExhausted           GuardCode = "slots_exhausted"
	CodeDeadlinePassed           GuardCode = "deadline_passed"
	CodeProgramInactive          GuardCode = "program_inactive"
	CodeIneligibleGPA            GuardCode = "ineligible_gpa"
	CodeIneligibleUnits          GuardCode = "ineligible_units"
	CodeIneligibleSchoolType     GuardCode = "ineligible_school_type"
	CodeInsufficientServiceHours GuardCode = "insufficient_service_hours"
	CodeDuplicateApplication     GuardCode = "duplicate_application"
	CodeDocumentsIncomplete      GuardCode = "documents_incomplete"
	CodeNoDocuments              GuardCode = "no_documents"
	CodeDocumentsNotApproved     GuardCode = "documents_not_approved"
	CodeNoRejectedDocuments      GuardCode = "no_rejected_documents"
	CodeDocumentsStillRejected   GuardCode = "documents_still_rejected"
	CodeServiceRequired          GuardCode = "service_required"
)

// GuardViolation is a business-rule failure with a human readable reason.
type GuardViolation struct {
	Code   GuardCode
	Reason string
}

func (e *GuardViolation) Error() string {
	if e.Reason == "" {
		return "guard violation: " + string(e.Code)
	}
	return e.Reason
}

// Is matches another GuardViolation with the same code; an empty code matches any.
func (e *GuardViolation) Is(target error) bool {
	t, ok := target.(*GuardViolation)
	if !ok {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

func violation(code GuardCode, format string, args ...any) *GuardViolation {
	return &GuardViolation{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is checks.
var (
	ErrSlotsExhausted           = &GuardViolation{Code: CodeSlotsExhausted, Reason: "no scholarship slots are available"}
	ErrDeadlinePassed           = &GuardViolation{Code: CodeDeadlinePassed, Reason: "the application deadline has passed"}
	ErrProgramInactive          = &GuardViolation{Code: CodeProgramInactive, Reason: "the scholarship program is not active"}
	ErrIneligibleGPA            = &GuardViolation{Code: CodeIneligibleGPA}
	ErrIneligibleUnits          = &GuardViolation{Code: CodeIneligibleUnits}
	ErrIneligibleSchoolType     = &GuardViolation{Code: CodeIneligibleSchoolType}
	ErrInsufficientServiceHours = &GuardViolation{Code: CodeInsufficientServiceHours}
	ErrDuplicateApplication     = &GuardViolation{Code: CodeDuplicateApplication, Reason: "an active application for this program already exists"}
	ErrDocumentsIncomplete      = &GuardViolation{Code: CodeDocumentsIncomplete}
	ErrNoDocuments              = &GuardViolation{Code: CodeNoDocuments, Reason: "no documents have been uploaded"}
	ErrDocumentsNotApproved     = &GuardViolation{Code: CodeDocumentsNotApproved}
	ErrNoRejectedDocuments      = &GuardViolation{Code: CodeNoRejectedDocuments, Reason: "no required document has been rejected"}
	ErrDocumentsStillRejected   = &GuardViolation{Code: CodeDocumentsStillRejected}
	ErrServiceRequired          = &GuardViolation{Code: CodeServiceRequired, Reason: "community service must be completed before disbursement"}
)

// PersistenceError wraps an underlying store failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return "persistence: " + e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
