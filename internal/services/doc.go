// Package services implements the two remote ends of a sync: the YouTube Data API
// subscription listing ([YouTubeService]) and the Tiny Tiny RSS JSON API ([TTRSSService]).
//
// # Transport
//
// Both clients sit on [APIService], a thin JSON-over-HTTP helper that returns the raw
// status, headers and body of a call. Authentication is a property of the
// [http.Client] handed to it: the YouTube client uses an [oauth2.Transport] fed by an
// injectable [oauth2.TokenSource], so tests substitute a static token.
//
// # Subscriptions
//
// [YouTubeService.FetchAll] requests pages of 50 in alphabetical order and follows
// nextPageToken until it is absent, reporting progress after every page. Pages are
// paced by a [rate.Limiter]. Any non-2xx status or malformed page aborts the fetch
// with [shared.ErrFetchFailed]; no partial result is returned and nothing is retried.
//
// # Import
//
// [TTRSSService.Upload] performs login → importOPML → logout over one session.
// Responses share the envelope {seq, status, content}; content is discriminated by
// [DecodeContent] in a fixed order:
//
//  1. an object with "session_id" is a [LoginContent]
//  2. an object with "message", "duplicate_message" and "added_message" is an [ImportResult]
//  3. anything else is an [ErrorContent] carrying the raw JSON
//
// A non-zero status or an unexpected shape yields a [ResponseError] that wraps
// [shared.ErrLoginFailed] or [shared.ErrImportFailed] and keeps the raw content.
//
// Report lines are bucketed with [FilterEvents]; the event total excludes the banner
// and trailing separator lines of the report.
package services
