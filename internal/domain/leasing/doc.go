// Package leasing provides domain models for the tenancy lifecycle of leased residential units.
//
// This package implements the leasing bounded context, which is responsible for:
//   - Lease lifecycle: draft, activation (deposit collection, unit occupancy), amendment, termination
//   - Security deposit custody and its one-shot disposition at offboarding
//   - The settlement record: the durable account of how an offboarding was resolved
//
// Key Aggregates:
//   - Lease: billing terms binding a renter to a unit
//   - SecurityDeposit: collected at activation, finalized exactly once with conservation
//     (returned + deductions = collected)
//   - Settlement: write-once offboarding record for dispute resolution
//   - Tenant, Unit: the renter and the housing unit, kept to what billing needs
//
// The leasing domain integrates with:
//   - Billing domain: lease terms drive obligation generation; settlement resolves open obligations
//   - Audit domain: activation, amendment and settlement leave activity records
package leasing
