package domain

// Kind classifies an expected business failure so handlers can map it to an
// HTTP status without inspecting individual errors.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindState         Kind = "state"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
)

// Error is a typed business error. All of these are expected outcomes and are
// returned to the caller; only infrastructure failures surface as plain errors.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrInvalidWindow  = &Error{KindValidation, "INVALID_WINDOW", "appointment time must fall within working hours: 07:00-12:00 or 14:00-18:00"}
	ErrInvalidDate    = &Error{KindValidation, "INVALID_DATE", "invalid appointment date (use YYYY-MM-DD)"}
	ErrInvalidTime    = &Error{KindValidation, "INVALID_TIME", "invalid appointment time (use HH:MM:SS)"}
	ErrInvalidAmount  = &Error{KindValidation, "INVALID_AMOUNT", "amount must not be negative"}
	ErrInvalidMethod  = &Error{KindValidation, "INVALID_METHOD", "payment method must be credit_card, debit_card or bank_transfer"}
	ErrAmountMismatch = &Error{KindValidation, "AMOUNT_MISMATCH", "amount does not match the appointment amount"}

	ErrInvalidDoctor = &Error{KindNotFound, "INVALID_DOCTOR", "doctor does not exist or is not active"}
	ErrNotFound      = &Error{KindNotFound, "NOT_FOUND", "appointment not found"}

	ErrSlotConflict = &Error{KindConflict, "SLOT_CONFLICT", "an appointment already exists for this doctor, date and time"}
	ErrAlreadyPaid  = &Error{KindConflict, "ALREADY_PAID", "this appointment has already been paid"}

	ErrInvalidState     = &Error{KindState, "INVALID_STATE", "action is not allowed in the appointment's current state"}
	ErrNotPaid          = &Error{KindState, "NOT_PAID", "only paid appointments can be reviewed"}
	ErrAlreadyCancelled = &Error{KindState, "ALREADY_CANCELLED", "this appointment was already cancelled"}

	ErrNotOwner = &Error{KindAuthorization, "NOT_OWNER", "you do not have permission to act on this appointment"}
)
