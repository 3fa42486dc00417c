// Package notification contains the in-app notification dispatch log.
//
// The payment lifecycle produces messages that tenants and managers
// should see: a submission was verified or rejected, rent went
// overdue, utilities were folded into an obligation, a settlement
// completed. Each message is stored as a Notification row; delivery
// channels (push, SMS, email) consume the log outside this engine.
//
// Notification writes are fire-and-forget from the caller's point of
// view. A failed insert is logged and never fails the business
// operation that triggered it.
package notification
