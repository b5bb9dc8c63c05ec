package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/desertthunder/tracklift/internal/server"
	"github.com/desertthunder/tracklift/internal/services"
	"github.com/desertthunder/tracklift/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// AuthLogin performs the OAuth2 flow for Spotify and caches the token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.spotifyAuth()
	if err != nil {
		return err
	}

	if _, err := r.authorize(ctx, auth, "authorization"); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token saved to %s\n\n", auth.Cache().Path())
	r.writePlain("You can now use: tracklift import\n")
	return nil
}

// AuthStatus reports whether a token is cached and whether the account is reachable.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.spotifyAuth()
	if err != nil {
		return err
	}

	token, err := auth.Cache().Load()
	if err != nil {
		return err
	}
	if token == nil {
		return r.writePlain("✗ Not authenticated (run: tracklift auth login)\n")
	}

	r.writePlain("Token: %s\n", auth.Cache().Path())
	if !token.Expiry.IsZero() {
		r.writePlain("Expires: %s\n", token.Expiry.Format(time.RFC3339))
	}

	catalog := auth.Catalog(ctx, token)
	user, err := catalog.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	if err := auth.SaveToken(catalog); err != nil {
		r.logger.Warn("failed to save refreshed token", "err", err)
	}
	return r.writePlain("✓ Authenticated as %s (%s)\n", user.DisplayName, user.ID)
}

// AuthLogout removes the cached token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.spotifyAuth()
	if err != nil {
		return err
	}
	if err := auth.Cache().Delete(); err != nil {
		return err
	}
	return r.writePlain("✓ Token removed from %s\n", auth.Cache().Path())
}

func (r *Runner) spotifyAuth() (*services.SpotifyAuth, error) {
	if r.auth != nil {
		return r.auth, nil
	}
	auth, err := services.NewSpotifyAuth(r.config.Credentials.Spotify)
	if err != nil {
		return nil, err
	}
	r.auth = auth
	return auth, nil
}

// ensureCatalog gives the engine a catalog, authorizing in the browser when no token is cached.
func (r *Runner) ensureCatalog(ctx context.Context) error {
	if r.catalog != nil {
		r.engine.SetCatalog(r.catalog)
		return nil
	}

	auth, err := r.spotifyAuth()
	if err != nil {
		return err
	}

	catalog, err := auth.CachedCatalog(ctx)
	if errors.Is(err, shared.ErrNotAuthenticated) {
		r.logger.Info("no cached token, starting authorization")
		token, authErr := r.authorize(ctx, auth, "authorization")
		if authErr != nil {
			return authErr
		}
		catalog, err = auth.Catalog(ctx, token), nil
	}
	if err != nil {
		return err
	}

	r.catalog = catalog
	r.engine.SetCatalog(catalog)
	return nil
}

// saveRefreshedToken writes back a token the client refreshed during the run.
func (r *Runner) saveRefreshedToken() {
	catalog, ok := r.catalog.(*services.SpotifyCatalog)
	if !ok || r.auth == nil {
		return
	}
	if err := r.auth.SaveToken(catalog); err != nil {
		r.logger.Warn("failed to save refreshed token", "err", err)
	}
}

// authorize executes the OAuth2 authorization flow with a local HTTP server and caches the token.
func (r *Runner) authorize(ctx context.Context, auth *services.SpotifyAuth, prefix string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot listen on %s: %v", shared.ErrServiceUnavailable, addr, err)
	}

	authURL := auth.AuthURL(state)
	r.writePlain("→ Opening browser for Spotify %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	token, err := server.AwaitCallback(ctx, ln, server.NewOAuthHandler(auth, state), r.logger)
	if err != nil {
		return nil, err
	}

	if err := auth.Cache().Save(token); err != nil {
		return nil, fmt.Errorf("failed to cache token: %w", err)
	}
	return token, nil
}
