// Package server wires the development API: in-memory stores, the users
// and crm services and the HTTP server, and runs it until a shutdown signal.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/crmconsole/internal/logging"
	"github.com/dmitrijs2005/crmconsole/internal/server/auth"
	"github.com/dmitrijs2005/crmconsole/internal/server/config"
	"github.com/dmitrijs2005/crmconsole/internal/server/crm"
	"github.com/dmitrijs2005/crmconsole/internal/server/httpapi"
	"github.com/dmitrijs2005/crmconsole/internal/server/refreshtokens"
	"github.com/dmitrijs2005/crmconsole/internal/server/users"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *users.Service
	crmService  *crm.Service
}

func NewApp(c *config.Config) (*App, error) {

	logger, err := logging.New(os.Stdout, c.LogLevel, "json")
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	if c.OTPSecret == "" {
		logger.Warn(context.Background(), "no OTP secret configured, codes will not survive a restart")
	}

	us := users.NewService(users.NewMemoryRepository(), refreshtokens.NewMemoryRepository(), auth.NewOTPIssuer(c.OTPSecret), logger, c)
	cs := crm.NewService(crm.NewMemoryRepository(), logger)

	return &App{config: c, logger: logger, userService: us, crmService: cs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config, app.logger, app.userService, app.crmService)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.logger.Info(ctx, "App stopped")
}
