package domain

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// Appointment lifecycle states. Pending is initial; confirmed and cancelled
// are terminal (cancelled always, confirmed unless cancellation is allowed
// by policy). There is no way back to pending.
const (
	StatePending   = "pending"
	StatePaid      = "paid"
	StateConfirmed = "confirmed"
	StateCancelled = "cancelled"
)

// Actions a doctor or patient can apply to an existing appointment.
const (
	ActionConfirm = "confirm"
	ActionReject  = "reject"
	ActionCancel  = "cancel"
)

const (
	MethodCreditCard   = "credit_card"
	MethodDebitCard    = "debit_card"
	MethodBankTransfer = "bank_transfer"
)

const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// PaymentMethods lists every method the gateway accepts.
var PaymentMethods = []string{MethodCreditCard, MethodDebitCard, MethodBankTransfer}

func ValidMethod(m string) bool {
	for _, v := range PaymentMethods {
		if v == m {
			return true
		}
	}
	return false
}

// Actor identifies the authenticated caller of an operation. Role checks are
// explicit at each operation boundary instead of being inferred from context.
type Actor struct {
	ID   uint
	Role string
}

func (a Actor) IsPatient() bool { return a.Role == RolePatient }
func (a Actor) IsDoctor() bool  { return a.Role == RoleDoctor }
