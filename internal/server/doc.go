// Package server provides the loopback HTTP listener used by the OAuth installed-app flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [BasicRouter] implements it on top of [http.ServeMux]; [Middleware] wraps handlers
// in reverse order (last added executes first).
//
// # OAuth Callback Handler
//
// [OAuthHandler] receives the authorization redirect. It validates the state parameter
// (CSRF protection), exchanges the authorization code together with the PKCE verifier,
// and sends exactly one [OAuthResult] through a channel. Later callbacks are rejected.
//
// # Callback Server
//
// [CallbackServer] binds 127.0.0.1 on an ephemeral port so the redirect URL is only
// reachable from the local machine, serves the router in the background and is shut
// down as soon as the result has been received.
package server
