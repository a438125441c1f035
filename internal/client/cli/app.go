package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/crmconsole/internal/client/client"
	"github.com/dmitrijs2005/crmconsole/internal/client/config"
	"github.com/dmitrijs2005/crmconsole/internal/client/cooldown"
	"github.com/dmitrijs2005/crmconsole/internal/client/credentials"
	"github.com/dmitrijs2005/crmconsole/internal/client/services"
	"github.com/dmitrijs2005/crmconsole/internal/client/session"
	"github.com/dmitrijs2005/crmconsole/internal/client/storage"
	"github.com/dmitrijs2005/crmconsole/internal/filex"
	"github.com/dmitrijs2005/crmconsole/internal/logging"
)

var errNotFound = errors.New("not found")

type App struct {
	config       *config.Config
	log          logging.Logger
	db           *sql.DB
	authService  services.AuthService
	adminService services.AdminService
	crmService   services.CRMService
	token        client.TokenFunc
	surface      services.Surface
	reader       *bufio.Reader
	out          io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log, err := logging.New(os.Stderr, c.LogLevel, "text")
	if err != nil {
		return nil, err
	}

	if _, err := filex.EnsureParentDir(c.DBPath); err != nil {
		log.Error(ctx, "error creating data directory", "error", err)
		return nil, err
	}

	db, err := storage.InitDatabase(ctx, c.DBPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	creds, err := credentials.Open(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	pending, err := credentials.OpenPending(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	gw, err := client.NewHTTPClient(c.APIBaseURL, creds.AccessToken,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{
		config: c,
		log:    log,
		db:     db,
		token:  creds.AccessToken,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	a.authService = services.NewAuthService(gw, creds, pending, session.NewCache(),
		services.WithNavigator(a),
		services.WithLogger(log),
		services.WithRequestTimeout(c.RequestTimeout),
		services.WithCooldown(cooldown.New(c.CooldownSeconds())),
	)
	a.adminService = services.NewAdminService(gw)
	a.crmService = services.NewCRMService(gw)
	a.authService.OnLogout(a.adminService.Invalidate)
	a.authService.OnLogout(a.crmService.Invalidate)

	return a, nil
}

// Run restores the previous session, if any, and blocks in the REPL until
// the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() {
	a.authService.Close()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(context.Background(), "closing database", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.authService.State() == services.StateAuthenticated
}

func (a *App) isAwaitingOtp() bool {
	return a.authService.State() == services.StateAwaitingOtp
}

// Navigate follows the intents emitted by the session controller. The
// console has no screens, so it remembers where it is and tells the user
// what to do next.
func (a *App) Navigate(in services.Intent) {
	a.surface = in.Surface
	switch in.Surface {
	case services.SurfaceVerifyOtp:
		a.printf("We sent a 4-digit code to %s. Type 'verify' to enter it.\n", in.Email)
	case services.SurfaceDashboard:
		a.println("Signed in. Type 'help' for commands.")
	case services.SurfaceLogin:
		a.println("Signed out. Type 'login' to sign in again.")
	case services.SurfaceSignup:
		a.println("Type 'register' to create an account.")
	}
}

// report prints the display text of err.
func (a *App) report(_ context.Context, err error) error {
	if err == nil {
		return nil
	}
	a.println("Error:", services.Message(err))
	return err
}

// reportRequest is report for data calls. A 401 there means the session has
// expired, so the cached user is re-probed.
func (a *App) reportRequest(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	_ = a.report(ctx, err)
	if errors.Is(err, client.ErrUnauthorized) {
		if _, perr := a.authService.CheckAuthStatus(ctx); perr != nil {
			a.println("Your session has expired. Please log in again.")
		}
	}
	return err
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
