package event

import (
	"github.com/leaseledger/backend/internal/domain/billing"
	"github.com/leaseledger/backend/internal/domain/leasing"
)

// RegisterAllEvents registers all domain event types with the serializer
// This is required for the OutboxProcessor to deserialize events from the outbox table
func RegisterAllEvents(serializer *EventSerializer) {
	// Billing domain - Rent Obligation events
	serializer.Register(billing.EventTypeRentObligationCreated, &billing.RentObligationCreatedEvent{})
	serializer.Register(billing.EventTypePaymentApplied, &billing.PaymentAppliedEvent{})
	serializer.Register(billing.EventTypeObligationOverdue, &billing.ObligationOverdueEvent{})
	serializer.Register(billing.EventTypeUtilitiesMerged, &billing.UtilitiesMergedEvent{})
	serializer.Register(billing.EventTypeObligationSettled, &billing.ObligationSettledEvent{})
	serializer.Register(billing.EventTypeObligationWrittenOff, &billing.ObligationWrittenOffEvent{})

	// Billing domain - Payment Submission events
	serializer.Register(billing.EventTypePaymentSubmitted, &billing.PaymentSubmittedEvent{})
	serializer.Register(billing.EventTypePaymentVerified, &billing.PaymentVerifiedEvent{})
	serializer.Register(billing.EventTypePaymentRejected, &billing.PaymentRejectedEvent{})

	// Billing domain - Utility Charge events
	serializer.Register(billing.EventTypeUtilityChargeCreated, &billing.UtilityChargeCreatedEvent{})
	serializer.Register(billing.EventTypeUtilityChargeFinalized, &billing.UtilityChargeFinalizedEvent{})
	serializer.Register(billing.EventTypeUtilityChargeBilled, &billing.UtilityChargeBilledEvent{})

	// Leasing domain - Lease events
	serializer.Register(leasing.EventTypeLeaseCreated, &leasing.LeaseCreatedEvent{})
	serializer.Register(leasing.EventTypeLeaseActivated, &leasing.LeaseActivatedEvent{})
	serializer.Register(leasing.EventTypeLeaseAmended, &leasing.LeaseAmendedEvent{})
	serializer.Register(leasing.EventTypeLeaseTerminated, &leasing.LeaseTerminatedEvent{})

	// Leasing domain - Security Deposit events
	serializer.Register(leasing.EventTypeDepositCollected, &leasing.DepositCollectedEvent{})
	serializer.Register(leasing.EventTypeDepositFinalized, &leasing.DepositFinalizedEvent{})

	// Leasing domain - Settlement events
	serializer.Register(leasing.EventTypeSettlementCompleted, &leasing.SettlementCompletedEvent{})
	serializer.Register(leasing.EventTypeTenantDebtRecorded, &leasing.TenantDebtRecordedEvent{})
}
