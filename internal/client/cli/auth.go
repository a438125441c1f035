package cli

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/crmconsole/internal/client/client"
	"github.com/dmitrijs2005/crmconsole/internal/client/credentials"
	"github.com/dmitrijs2005/crmconsole/internal/client/services"
	"github.com/dmitrijs2005/crmconsole/internal/common"
)

// The get* variables are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText      = GetSimpleText
	getTextWithDefault = GetTextWithDefault
	getConfirmation    = GetConfirmation
	getMultiline       = GetMultiline
	getPassword        = GetPassword
)

// Register prompts for the sign-up form, checks it locally (including the
// password confirmation) and submits it. On success the controller moves the
// console to OTP entry.
func (a *App) Register(ctx context.Context) error {
	var in services.RegisterInput
	var err error

	if in.Name, err = getSimpleText(a.reader, "First name", a.out); err != nil {
		return err
	}
	if in.Surname, err = getSimpleText(a.reader, "Last name", a.out); err != nil {
		return err
	}
	if in.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	in.Password = string(password)
	if err := services.ValidateSignup(in, string(confirm)); err != nil {
		return a.report(ctx, err)
	}

	return a.report(ctx, a.authService.Register(ctx, in))
}

// Verify asks for the emailed code and exchanges it for a session.
func (a *App) Verify(ctx context.Context) error {
	code, err := getSimpleText(a.reader, "Enter the 4-digit code", a.out)
	if err != nil {
		return err
	}
	return a.report(ctx, a.authService.VerifyOtp(ctx, "", code))
}

// Resend requests a fresh code for the pending registration.
func (a *App) Resend(ctx context.Context) error {
	err := a.authService.ResendOtp(ctx, "")
	if errors.Is(err, services.ErrCooldownActive) {
		a.printf("Please wait %ds before requesting a new code.\n", a.authService.Cooldown())
		return err
	}
	if err != nil {
		return a.report(ctx, err)
	}
	a.printf("A new code has been sent. You can request another in %ds.\n", a.authService.Cooldown())
	return nil
}

// Abandon drops the pending registration.
func (a *App) Abandon(ctx context.Context) error {
	return a.report(ctx, a.authService.AbandonRegistration(ctx))
}

// Login prompts for username and password and signs in. A failed attempt
// keeps whatever session was active before.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username or email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.report(ctx, a.authService.Login(ctx, username, string(password)))
}

// Logout clears the session. Local storage failures are reported but the
// console is signed out regardless.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		a.log.Warn(ctx, "logout", "error", err)
		return err
	}
	return nil
}

// Status re-checks the stored token and prints who is signed in.
func (a *App) Status(ctx context.Context) error {
	user, err := a.authService.CheckAuthStatus(ctx)
	if err != nil {
		switch {
		case errors.Is(err, client.ErrUnavailable):
			return a.report(ctx, err)
		case a.token() != "":
			a.println("Your session has expired. Please log in again.")
		case a.authService.PendingEmail() != "":
			a.printf("Awaiting verification for %s.\n", a.authService.PendingEmail())
		default:
			a.println("Not signed in.")
		}
		return nil
	}

	a.printf("Signed in as %s <%s>", user.DisplayName(), user.Email)
	if user.Role != "" {
		a.printf(" (%s)", user.Role)
	}
	a.println()

	if info, ok := credentials.Describe(a.token()); ok && !info.ExpiresAt.IsZero() {
		a.printf("Token expires %s\n", info.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

// restore probes a session persisted by a previous run. It is silent when
// there is nothing to restore.
func (a *App) restore(ctx context.Context) {
	user, err := a.authService.CheckAuthStatus(ctx)
	if err == nil {
		a.surface = services.SurfaceDashboard
		a.printf("Welcome back, %s.\n", user.DisplayName())
		return
	}

	switch {
	case errors.Is(err, client.ErrUnavailable):
		a.log.Warn(ctx, "could not check stored session", "error", err)
		a.println("The server is unreachable. Type 'status' to retry.")
	case a.token() != "":
		a.log.Info(ctx, "stored session is no longer valid", "error", err)
		a.println("Your previous session has expired. Please log in.")
	}

	if email := a.authService.PendingEmail(); email != "" {
		a.surface = services.SurfaceVerifyOtp
		a.printf("Registration for %s is awaiting verification. Type 'verify', 'resend' or 'abandon'.\n", email)
	}
}
