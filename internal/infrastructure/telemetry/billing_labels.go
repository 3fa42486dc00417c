package telemetry

// Billing engine operation names used as profiling label values.
const (
	OperationGenerateObligations = "generate_obligations"
	OperationPromoteOverdue      = "promote_overdue"
	OperationApplyPayment        = "apply_payment"
	OperationVerifySubmission    = "verify_submission"
	OperationMergeUtilities      = "merge_utilities"
	OperationSettleLease         = "settle_lease"
)

// ProfilingLabelMode is the label key distinguishing variants of an operation.
const ProfilingLabelMode = "mode"

// BillingOperationLabels creates profiling labels for billing engine operations.
// The mode qualifier separates variants of the same operation in the profiler,
// such as "bulk" verification or a "preview" settlement; pass "" when there is
// no variant.
func BillingOperationLabels(operation, mode string) map[string]string {
	labels := map[string]string{
		ProfilingLabelOperation: operation,
	}
	if mode != "" {
		labels[ProfilingLabelMode] = mode
	}
	return labels
}
