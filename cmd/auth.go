package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/sift/internal/models"
	"github.com/desertthunder/sift/internal/server"
	"github.com/desertthunder/sift/internal/services"
	"github.com/desertthunder/sift/internal/shared"
	"github.com/desertthunder/sift/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// oauthService returns the runner's service as an [services.OAuthService],
// building one from config when the runner has no usable service yet.
func (r *Runner) oauthService() (services.OAuthService, error) {
	if svc, ok := r.service.(services.OAuthService); ok {
		return svc, nil
	}

	svc, err := services.NewSpotifyService(r.config.Credentials.Spotify.Map())
	if err != nil {
		return nil, err
	}

	svc.SetPageSizes(r.config.Scan.PlaylistPageSize, r.config.Scan.TrackPageSize)
	r.service = svc
	r.engine = tasks.NewScanEngine(svc)

	return svc, nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(oauthSrv services.OAuthService, prefix string) (*oauth2.Token, error) {
	state := shared.GenerateState()

	authURL := oauthSrv.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(oauthSrv.GetOAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server for %s at %v", prefix, serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}

// persistSession stores the token set as the newest session, attaching the
// account identity when the profile fetch succeeds.
func (r *Runner) persistSession(ctx context.Context, svc services.Service, token *oauth2.Token) (*models.Session, error) {
	if _, err := r.database(); err != nil {
		return nil, err
	}

	session := models.NewSession(0, token.AccessToken, token.RefreshToken, token.TokenType, token.Expiry)

	credentials := map[string]string{"access_token": token.AccessToken, "refresh_token": token.RefreshToken}
	if err := svc.Authenticate(ctx, credentials); err != nil {
		r.logger.Warn("failed to authenticate with new token", "error", err)
	} else if user, err := svc.CurrentUser(ctx); err != nil {
		r.logger.Warn("failed to fetch account profile", "error", err)
	} else {
		session.SetUser(user.ID, user.DisplayName)
	}

	if err := r.sessions.Create(session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return session, nil
}

// sessionCredentials returns the stored token set a scan authenticates with,
// refreshing an expired session first. A failed persist of refreshed tokens
// only warns; the in-memory tokens are still good for this run.
func (r *Runner) sessionCredentials(ctx context.Context) (map[string]string, error) {
	if _, err := r.database(); err != nil {
		return nil, err
	}

	session, err := r.sessions.GetLatest()
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: no session found; run 'sift auth login' first", shared.ErrNotAuthenticated)
	}

	if session.Expired() {
		if session.RefreshToken() == "" {
			return nil, fmt.Errorf("%w: run 'sift auth login' again", shared.ErrTokenExpired)
		}

		oauthSrv, err := r.oauthService()
		if err != nil {
			return nil, err
		}

		r.logger.Info("access token expired, refreshing")
		token, err := oauthSrv.Refresh(ctx, session.RefreshToken())
		if err != nil {
			return nil, err
		}

		session.UpdateTokens(token.AccessToken, token.RefreshToken, token.Expiry)
		if err := r.sessions.Update(session); err != nil {
			r.logger.Warn("failed to persist refreshed session", "error", err)
		}
	}

	return map[string]string{
		"access_token":  session.AccessToken(),
		"refresh_token": session.RefreshToken(),
	}, nil
}

// storeRefreshedToken persists a token set the HTTP client refreshed
// transparently mid-scan.
func (r *Runner) storeRefreshedToken(token *oauth2.Token) {
	if r.sessions == nil {
		return
	}

	session, err := r.sessions.GetLatest()
	if err != nil || session == nil {
		return
	}

	session.UpdateTokens(token.AccessToken, token.RefreshToken, token.Expiry)
	if err := r.sessions.Update(session); err != nil {
		r.logger.Warn("failed to persist refreshed session", "error", err)
	}
}

// AuthLogin runs the authorization-code flow and stores the resulting session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	r.applyVerbosity(cmd)
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	if err := r.config.Validate(); err != nil {
		return fmt.Errorf("%w: fill in the [credentials.spotify] section of %s", err, r.configPath)
	}

	oauthSrv, err := r.oauthService()
	if err != nil {
		return err
	}

	token, err := r.doOAuth(oauthSrv, "login")
	if err != nil {
		return err
	}

	session, err := r.persistSession(ctx, oauthSrv, token)
	if err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	if session.DisplayName() != "" {
		r.writePlain("Account: %s\n", session.DisplayName())
	}
	r.writePlain("You can now run: sift scan\n")

	return nil
}

// AuthStatus reports the stored session state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.applyVerbosity(cmd)
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	if _, err := r.database(); err != nil {
		return err
	}

	session, err := r.sessions.GetLatest()
	if err != nil {
		return err
	}

	if session == nil {
		r.writePlain("✗ Not authenticated\n")
		r.writePlain("Run 'sift auth login' to authorize\n")
		return nil
	}

	r.writePlain("✓ Authenticated\n")
	if session.DisplayName() != "" {
		r.writePlain("Account: %s\n", session.DisplayName())
	}

	switch {
	case session.ExpiresAt().IsZero():
		r.writePlain("Token: no known expiry\n")
	case session.Expired() && session.RefreshToken() != "":
		r.writePlain("Token: expired (will refresh on next scan)\n")
	case session.Expired():
		r.writePlain("Token: expired; run 'sift auth login' again\n")
	default:
		r.writePlain("Token: valid until %s\n", session.ExpiresAt().Format(time.RFC1123))
	}

	return nil
}

// authCommand handles authorization operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize with Spotify using OAuth2",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Enable debug logging",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Show the stored session state",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Enable debug logging",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}
