package service

import (
	"context"
	"errors"

	"citamed/internal/domain"
	"citamed/internal/models"
	"citamed/pkg/gateway"
)

// LedgerStore is the append-only payment ledger.
type LedgerStore interface {
	HasCompleted(appointmentID uint) (bool, error)
	RecordCompleted(a *models.PaymentAttempt) error
	RecordFailed(a *models.PaymentAttempt) error
	ListByAppointment(appointmentID uint) ([]models.PaymentAttempt, error)
	ListByPatient(patientID uint) ([]models.PaymentAttempt, error)
}

// PaymentService drives the settlement workflow: it validates the submission
// against the appointment, runs the gateway charge and records the outcome in
// the ledger, settling the appointment on success.
type PaymentService struct {
	appts    AppointmentStore
	ledger   LedgerStore
	provider gateway.Provider
	notif    Notifier
}

func NewPaymentService(appts AppointmentStore, ledger LedgerStore, provider gateway.Provider, notif Notifier) *PaymentService {
	return &PaymentService{appts: appts, ledger: ledger, provider: provider, notif: notif}
}

// SubmitPayment charges the appointment amount for the acting patient.
// amountCents is an optional client-side echo of the amount; when non-zero it
// must match the appointment's recorded amount. A declined charge is not an
// error: the failed attempt is recorded and returned.
func (s *PaymentService) SubmitPayment(ctx context.Context, actor domain.Actor, appointmentID uint, method string, amountCents int64) (*models.PaymentAttempt, error) {
	a, err := s.appts.GetByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if !actor.IsPatient() || a.PatientID != actor.ID {
		return nil, domain.ErrNotOwner
	}
	if a.State != domain.StatePending {
		return nil, domain.ErrInvalidState
	}
	if !domain.ValidMethod(method) {
		return nil, domain.ErrInvalidMethod
	}
	if amountCents != 0 && amountCents != a.AmountCents {
		return nil, domain.ErrAmountMismatch
	}
	paid, err := s.ledger.HasCompleted(a.ID)
	if err != nil {
		return nil, err
	}
	if paid {
		return nil, domain.ErrAlreadyPaid
	}

	res, err := s.provider.Charge(ctx, gateway.ChargeRequest{
		AmountCents: a.AmountCents,
		Method:      method,
	})
	if err != nil {
		if errors.Is(err, gateway.ErrUnsupportedMethod) {
			return nil, domain.ErrInvalidMethod
		}
		return nil, err
	}

	attempt := &models.PaymentAttempt{
		AppointmentID:     a.ID,
		AmountCents:       a.AmountCents,
		Method:            method,
		Outcome:           res.Outcome,
		SettlementRef:     res.Reference,
		AuthorizationCode: res.AuthorizationCode,
		FeeCents:          res.FeeCents,
		DeclineReason:     res.DeclineReason,
		ProcessedAt:       res.ProcessedAt,
	}
	if res.Outcome == gateway.OutcomeCompleted {
		// The ledger write and the pending->paid settle are one transaction;
		// on conflict (double submission, cancellation during the charge) the
		// attempt is rolled back with it.
		if err := s.ledger.RecordCompleted(attempt); err != nil {
			return nil, err
		}
		a.State = domain.StatePaid
		if s.notif != nil {
			s.notif.AppointmentPaid(a.DoctorID, a)
		}
		return attempt, nil
	}
	if err := s.ledger.RecordFailed(attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// PaymentStatus summarizes an appointment's ledger, most recent attempt first.
type PaymentStatus struct {
	Appointment *models.Appointment     `json:"appointment"`
	IsPaid      bool                    `json:"is_paid"`
	Attempts    []models.PaymentAttempt `json:"attempts"`
}

// Status returns the payment state of an appointment owned by the actor.
func (s *PaymentService) Status(actor domain.Actor, appointmentID uint) (*PaymentStatus, error) {
	a, err := s.appts.GetByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if !actor.IsPatient() || a.PatientID != actor.ID {
		return nil, domain.ErrNotOwner
	}
	attempts, err := s.ledger.ListByAppointment(a.ID)
	if err != nil {
		return nil, err
	}
	isPaid := false
	for i := range attempts {
		if attempts[i].Outcome == domain.OutcomeCompleted {
			isPaid = true
			break
		}
	}
	return &PaymentStatus{Appointment: a, IsPaid: isPaid, Attempts: attempts}, nil
}

// History returns every attempt across the acting patient's appointments.
func (s *PaymentService) History(actor domain.Actor) ([]models.PaymentAttempt, error) {
	if !actor.IsPatient() {
		return nil, domain.ErrNotOwner
	}
	return s.ledger.ListByPatient(actor.ID)
}
