package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/crmconsole/internal/client/services"
)

func (a *App) getStatus() string {
	s := ""
	switch a.authService.State() {
	case services.StateAuthenticated:
		if u := a.authService.User(); u != nil {
			s = u.Email
		}
	case services.StateAwaitingOtp:
		s = "verify " + a.authService.PendingEmail()
		if n := a.authService.Cooldown(); n > 0 {
			s = fmt.Sprintf("%s, resend in %ds", s, n)
		}
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root prints the banner, restores a persisted session and runs the REPL.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to the CRM console (type 'help' for commands)")
	a.restore(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}
