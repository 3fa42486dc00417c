// Package audit provides the append-only activity trail for financial operations.
//
// Every payment application, verification decision, overdue promotion and
// settlement leaves a structured ActivityRecord keyed by the affected
// resource. Records carry typed extra data rather than prose, are written
// once, and are never edited, so the trail can replay how any balance came
// to be.
package audit
