// Package auth obtains OAuth2 bearer tokens for the YouTube Data API.
//
// # Installed Flow
//
// [InstalledFlow] reads the application secret (client_secret.json, as downloaded from
// the Google Cloud console) and a token cache from the config directory. A cached token
// that is still valid, or that carries a refresh token, is reused. Otherwise the
// authorization code flow runs: a loopback listener is started, the user is asked to
// visit the consent URL (the browser is opened when possible) and the flow waits for the
// redirect until the configured timeout. The resulting token is written to the cache.
//
// Tokens refreshed later through the returned [oauth2.TokenSource] are persisted too, so
// the cache file is the only state written to disk.
//
// # Scope
//
// Only [YouTubeReadOnlyScope] is requested. Callers that need a token without the full
// flow type can use [GetToken].
//
// # Errors
//   - [shared.ErrMissingSecret] : the secret file is missing or unreadable
//   - [shared.ErrTimeout] : the user did not finish the browser flow in time
//   - [shared.ErrAuthFailed] : malformed secret, denied consent or failed code exchange
package auth
