// Package services defines the [Catalog] interface for the music catalog a playlist
// is rebuilt in, and implements it for Spotify.
//
// # Catalog Interface
//
// The import stage only needs five operations: look up the current user, create
// and delete (unfollow) a playlist, search for a single best-match track, and add
// a batch of at most [MaxBatchSize] tracks.
//
// # Spotify Implementation
//
// [SpotifyCatalog] wraps github.com/zmb3/spotify/v2. [SpotifyAuth] owns the
// OAuth2 authenticator and the on-disk [TokenCache]; the oauth2 transport
// refreshes expired access tokens, and callers persist the refreshed token after
// a run with [SpotifyAuth.SaveToken].
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrMissingCredentials] : client id/secret not configured
//   - [shared.ErrNotAuthenticated] : no cached token, run the auth command
//   - [shared.ErrAPIRequest] : a catalog call failed
//   - [shared.ErrInvalidInput] : a batch exceeded [MaxBatchSize]
package services
