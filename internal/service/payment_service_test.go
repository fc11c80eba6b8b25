package service

import (
	"context"
	"testing"
	"time"

	"citamed/internal/domain"
	"citamed/internal/models"
	"citamed/pkg/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLedgerStore is a mock implementation of LedgerStore.
type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) HasCompleted(appointmentID uint) (bool, error) {
	args := m.Called(appointmentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerStore) RecordCompleted(a *models.PaymentAttempt) error {
	args := m.Called(a)
	return args.Error(0)
}

func (m *MockLedgerStore) RecordFailed(a *models.PaymentAttempt) error {
	args := m.Called(a)
	return args.Error(0)
}

func (m *MockLedgerStore) ListByAppointment(appointmentID uint) ([]models.PaymentAttempt, error) {
	args := m.Called(appointmentID)
	return args.Get(0).([]models.PaymentAttempt), args.Error(1)
}

func (m *MockLedgerStore) ListByPatient(patientID uint) ([]models.PaymentAttempt, error) {
	args := m.Called(patientID)
	return args.Get(0).([]models.PaymentAttempt), args.Error(1)
}

// stubProvider returns a canned result or error for every charge.
type stubProvider struct {
	result *gateway.ChargeResult
	err    error
	calls  int
}

func (p *stubProvider) Charge(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func completedCharge() *gateway.ChargeResult {
	return &gateway.ChargeResult{
		Outcome:           gateway.OutcomeCompleted,
		Reference:         "TXN_test-ref",
		AuthorizationCode: "AUTH-000001",
		FeeCents:          2175,
		ProcessedAt:       time.Date(2025, 7, 18, 9, 0, 0, 0, time.UTC),
	}
}

func newPaymentHarness(state string) (*MockAppointmentStore, *MockLedgerStore) {
	appts := new(MockAppointmentStore)
	appts.On("GetByID", uint(7)).Return(storedAppointment(state), nil)
	return appts, new(MockLedgerStore)
}

func TestSubmitPaymentCompleted(t *testing.T) {
	appts, ledger := newPaymentHarness(domain.StatePending)
	ledger.On("HasCompleted", uint(7)).Return(false, nil)
	ledger.On("RecordCompleted", mock.AnythingOfType("*models.PaymentAttempt")).Return(nil)
	provider := &stubProvider{result: completedCharge()}

	svc := NewPaymentService(appts, ledger, provider, nil)
	attempt, err := svc.SubmitPayment(context.Background(), patient, 7, domain.MethodCreditCard, 0)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeCompleted, attempt.Outcome)
	assert.Equal(t, uint(7), attempt.AppointmentID)
	assert.Equal(t, int64(75000), attempt.AmountCents)
	assert.Equal(t, "TXN_test-ref", attempt.SettlementRef)
	assert.Equal(t, int64(2175), attempt.FeeCents)
	assert.Equal(t, 1, provider.calls)
	ledger.AssertExpectations(t)
	ledger.AssertNotCalled(t, "RecordFailed", mock.Anything)
}

func TestSubmitPaymentDeclined(t *testing.T) {
	appts, ledger := newPaymentHarness(domain.StatePending)
	ledger.On("HasCompleted", uint(7)).Return(false, nil)
	ledger.On("RecordFailed", mock.AnythingOfType("*models.PaymentAttempt")).Return(nil)
	provider := &stubProvider{result: &gateway.ChargeResult{
		Outcome:       gateway.OutcomeFailed,
		Reference:     "TXN_declined-ref",
		DeclineReason: "insufficient_funds",
		ProcessedAt:   time.Now(),
	}}

	svc := NewPaymentService(appts, ledger, provider, nil)
	attempt, err := svc.SubmitPayment(context.Background(), patient, 7, domain.MethodDebitCard, 0)
	require.NoError(t, err)

	// A decline is a recorded outcome, not an error, and the appointment
	// stays payable.
	assert.Equal(t, domain.OutcomeFailed, attempt.Outcome)
	assert.Equal(t, "insufficient_funds", attempt.DeclineReason)
	ledger.AssertNotCalled(t, "RecordCompleted", mock.Anything)
	ledger.AssertExpectations(t)
}

func TestSubmitPaymentAmountMismatch(t *testing.T) {
	appts, ledger := newPaymentHarness(domain.StatePending)
	provider := &stubProvider{result: completedCharge()}

	svc := NewPaymentService(appts, ledger, provider, nil)
	_, err := svc.SubmitPayment(context.Background(), patient, 7, domain.MethodCreditCard, 50000)
	assert.ErrorIs(t, err, domain.ErrAmountMismatch)
	assert.Zero(t, provider.calls)
}

func TestSubmitPaymentMatchingEcho(t *testing.T) {
	appts, ledger := newPaymentHarness(domain.StatePending)
	ledger.On("HasCompleted", uint(7)).Return(false, nil)
	ledger.On("RecordCompleted", mock.AnythingOfType("*models.PaymentAttempt")).Return(nil)
	provider := &stubProvider{result: completedCharge()}

	svc := NewPaymentService(appts, ledger, provider, nil)
	_, err := svc.SubmitPayment(context.Background(), patient, 7, domain.MethodCreditCard, 75000)
	assert.NoError(t, err)
}

func TestSubmitPaymentInvalidMethod(t *testing.T) {
	appts, ledger := newPaymentHarness(domain.StatePending)
	provider := &stubProvider{result: completedCharge()}

	svc := NewPaymentService(appts, ledger, provider, nil)
	_, err := svc.SubmitPayment(context.Background(), patient, 7, "crypto", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidMethod)
	assert.Zero(t, provider.calls)
}

func TestSubmitPaymentGatewayRejectsMethod(t *testing.T) {
	appts, ledger := newPaymentHarness(domain.StatePending)
	ledger.On("HasCompleted", uint(7)).Return(false, nil)
	provider := &stubProvider{err: gateway.ErrUnsupportedMethod}

	svc := NewPaymentService(appts, ledger, provider, nil)
	_, err := svc.SubmitPayment(context.Background(), patient, 7, domain.MethodBankTransfer, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidMethod)
}

func TestSubmitPaymentWrongState(t *testing.T) {
	for _, state := range []string{domain.StatePaid, domain.StateConfirmed, domain.StateCancelled} {
		appts, ledger := newPaymentHarness(state)
		provider := &stubProvider{result: completedCharge()}

		svc := NewPaymentService(appts, ledger, provider, nil)
		_, err := svc.SubmitPayment(context.Background(), patient, 7, domain.MethodCreditCard, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidState, "state %s", state)
		assert.Zero(t, provider.calls)
	}
}

func TestSubmitPaymentAlreadyPaidLedger(t *testing.T) {
	appts, ledger := newPaymentHarness(domain.StatePending)
	ledger.On("HasCompleted", uint(7)).Return(true, nil)
	provider := &stubProvider{result: completedCharge()}

	svc := NewPaymentService(appts, ledger, provider, nil)
	_, err := svc.SubmitPayment(context.Background(), patient, 7, domain.MethodCreditCard, 0)
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
	assert.Zero(t, provider.calls)
}

func TestSubmitPaymentDoubleSettleRace(t *testing.T) {
	// Two submissions both passed the ledger pre-check; the second settle
	// hits the completion_key unique index inside the transaction.
	appts, ledger := newPaymentHarness(domain.StatePending)
	ledger.On("HasCompleted", uint(7)).Return(false, nil)
	ledger.On("RecordCompleted", mock.AnythingOfType("*models.PaymentAttempt")).Return(domain.ErrAlreadyPaid)
	provider := &stubProvider{result: completedCharge()}

	svc := NewPaymentService(appts, ledger, provider, nil)
	_, err := svc.SubmitPayment(context.Background(), patient, 7, domain.MethodCreditCard, 0)
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
}

func TestSubmitPaymentNotOwner(t *testing.T) {
	appts, ledger := newPaymentHarness(domain.StatePending)
	provider := &stubProvider{result: completedCharge()}
	svc := NewPaymentService(appts, ledger, provider, nil)

	stranger := domain.Actor{ID: 55, Role: domain.RolePatient}
	_, err := svc.SubmitPayment(context.Background(), stranger, 7, domain.MethodCreditCard, 0)
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	_, err = svc.SubmitPayment(context.Background(), doctor, 7, domain.MethodCreditCard, 0)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestPaymentStatus(t *testing.T) {
	appts, ledger := newPaymentHarness(domain.StatePaid)
	ledger.On("ListByAppointment", uint(7)).Return([]models.PaymentAttempt{
		{ID: 2, Outcome: domain.OutcomeCompleted},
		{ID: 1, Outcome: domain.OutcomeFailed},
	}, nil)

	svc := NewPaymentService(appts, ledger, &stubProvider{}, nil)
	st, err := svc.Status(patient, 7)
	require.NoError(t, err)

	assert.True(t, st.IsPaid)
	assert.Len(t, st.Attempts, 2)
	assert.Equal(t, uint(7), st.Appointment.ID)
}

func TestPaymentStatusUnpaid(t *testing.T) {
	appts, ledger := newPaymentHarness(domain.StatePending)
	ledger.On("ListByAppointment", uint(7)).Return([]models.PaymentAttempt{
		{ID: 1, Outcome: domain.OutcomeFailed},
	}, nil)

	svc := NewPaymentService(appts, ledger, &stubProvider{}, nil)
	st, err := svc.Status(patient, 7)
	require.NoError(t, err)
	assert.False(t, st.IsPaid)
}

func TestPaymentHistoryPatientsOnly(t *testing.T) {
	ledger := new(MockLedgerStore)
	ledger.On("ListByPatient", uint(10)).Return([]models.PaymentAttempt{{ID: 1}}, nil)

	svc := NewPaymentService(new(MockAppointmentStore), ledger, &stubProvider{}, nil)

	history, err := svc.History(patient)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = svc.History(doctor)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}
