// Package tasks runs the sync pipeline with real-time progress reporting.
//
// # Pipeline
//
// [SubscriptionEngine] implements [SyncEngine] as a strictly sequential chain:
//
//  1. [Authorize] : obtain a bearer token from the injected [oauth2.TokenSource]
//  2. [FetchSubscriptions] : page through the subscription listing
//  3. [EncodeOPML] : build one category outline holding a leaf per channel
//  4. [ImportOPML] : login, upload and classify the report
//
// Every stage fails fast and the error is prefixed with the stage name. There is
// no partial success: a failed run must be started again from the beginning.
//
// # Progress Reporting
//
// Operations take an optional send-only channel of [ProgressUpdate]. Sends use
// select with default so a slow consumer never blocks the pipeline; the fetch stage
// emits one update per page.
//
// # Scheduling
//
// [Scheduler] repeats a [Job] on a cron expression parsed by robfig/cron. Overlapping
// activations are skipped and panics are recovered, so a long import never runs twice.
package tasks
