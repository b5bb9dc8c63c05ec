// Package server provides the HTTP plumbing for the catalog OAuth callback.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code through an
// [Exchanger], and sends the result through a channel. It only processes one callback to prevent replay attacks.
//
// [AwaitCallback] serves the handler on a listener until a result arrives or the context ends, then shuts the
// server down. The auth and import commands use it when no cached token exists.
package server
