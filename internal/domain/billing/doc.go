// Package billing provides domain models for the rent payment lifecycle of leased residential units.
//
// This package implements the billing bounded context, which is responsible for:
//   - Generating one rent obligation per active lease per billing period
//   - Applying verified payments against obligations and deriving status
//   - Promoting pending obligations to overdue once their grace window elapses
//   - Merging monthly utility charges into the period's rent obligation
//
// Key Aggregates:
//   - RentObligation: One billing period's rent due, with an append-only update history
//   - PaymentSubmission: Renter-asserted payment evidence awaiting admin verification
//   - UtilityCharge: Itemized monthly utility bill, merged into an obligation exactly once
//
// Pure Functions:
//   - Grace calculator: effective due date, overdue flag and days overdue from lease terms
//
// The billing domain integrates with:
//   - Leasing domain: For lease terms (rent, late fee, grace period) and settlement
//   - Audit domain: Every financial mutation leaves an activity record
//   - Notification domain: Verification and overdue outcomes notify the renter
package billing
