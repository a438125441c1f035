// Package services contains application services for the CRM console.
// This file defines the session controller: registration, OTP verification
// and resend, login, session rehydration and logout.
package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/crmconsole/internal/client/client"
	"github.com/dmitrijs2005/crmconsole/internal/client/cooldown"
	"github.com/dmitrijs2005/crmconsole/internal/client/credentials"
	"github.com/dmitrijs2005/crmconsole/internal/client/models"
	"github.com/dmitrijs2005/crmconsole/internal/client/session"
	"github.com/dmitrijs2005/crmconsole/internal/logging"
	"golang.org/x/sync/singleflight"
)

// DefaultRequestTimeout bounds every gateway call made by the controller.
const DefaultRequestTimeout = 30 * time.Second

// AuthService is the session controller.
//
// Contract:
//   - Register: create the account and start OTP verification; no credentials
//     are written.
//   - VerifyOtp: exchange the emailed code for credentials.
//   - ResendOtp: request a fresh code; rejected with ErrCooldownActive while
//     the cooldown runs.
//   - Login: exchange username and password for credentials. A failure
//     leaves an existing session untouched.
//   - CheckAuthStatus: probe the stored token. Failure clears the cached user
//     but keeps the credentials.
//   - Logout: clear everything session-scoped. Idempotent.
//
// Operations return the OpError they also record; ErrOperationInFlight is
// returned, and nothing else happens, when the same operation is already
// pending. All methods are safe for concurrent use.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) error
	VerifyOtp(ctx context.Context, email, code string) error
	ResendOtp(ctx context.Context, email string) error
	Login(ctx context.Context, username, password string) error
	CheckAuthStatus(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
	AbandonRegistration(ctx context.Context) error

	State() State
	OperationState(op Operation) OperationState
	User() *models.User
	PendingEmail() string
	// Cooldown is the number of seconds before a resend is allowed.
	Cooldown() int
	CanResend() bool
	LastError() error
	ClearError()

	// Subscribe observes the cached user. fn must not call mutating
	// operations of the service.
	Subscribe(fn session.Listener) (unsubscribe func())
	// OnLogout registers fn to drop session-scoped caches on logout.
	OnLogout(fn func())
	// Close stops the cooldown timer.
	Close()
}

// CredentialStore is the durable token store.
type CredentialStore interface {
	Get() *credentials.Credentials
	Set(ctx context.Context, c credentials.Credentials) error
	Clear(ctx context.Context) error
}

// PendingStore keeps the email of a registration awaiting verification.
type PendingStore interface {
	Get() string
	Set(ctx context.Context, email string) error
	Clear(ctx context.Context) error
}

type AuthOption func(*authService)

func WithNavigator(n Navigator) AuthOption {
	return func(a *authService) { a.nav = n }
}

func WithLogger(l logging.Logger) AuthOption {
	return func(a *authService) { a.log = l }
}

// WithRequestTimeout overrides DefaultRequestTimeout; 0 disables it.
func WithRequestTimeout(d time.Duration) AuthOption {
	return func(a *authService) { a.timeout = d }
}

// WithCooldown replaces the default 60 second resend cooldown timer.
func WithCooldown(t *cooldown.Timer) AuthOption {
	return func(a *authService) { a.cooldown = t }
}

type authService struct {
	api      client.AuthAPI
	creds    CredentialStore
	pending  PendingStore
	cache    *session.Cache
	cooldown *cooldown.Timer
	nav      Navigator
	log      logging.Logger
	timeout  time.Duration

	probe singleflight.Group

	// writeMu serializes writes to the credential store and the cache.
	writeMu sync.Mutex
	epoch   uint64

	mu           sync.Mutex
	ops          map[Operation]OperationState
	lastErr      error
	invalidators []func()
}

// NewAuthService builds the controller on top of already opened stores, so
// the session is known synchronously: stored credentials authorize requests
// right away and a stored pending email resumes OTP entry.
func NewAuthService(api client.AuthAPI, creds CredentialStore, pending PendingStore, cache *session.Cache, opts ...AuthOption) AuthService {
	a := &authService{
		api:     api,
		creds:   creds,
		pending: pending,
		cache:   cache,
		nav:     nopNavigator{},
		log:     logging.Discard(),
		timeout: DefaultRequestTimeout,
		ops:     make(map[Operation]OperationState, len(trackedOps)),
	}
	for _, o := range opts {
		o(a)
	}
	if a.cooldown == nil {
		a.cooldown = cooldown.New(cooldown.DefaultWindow)
	}
	return a
}

func (a *authService) Register(ctx context.Context, in RegisterInput) error {
	in = in.normalize()
	if err := a.start(OpRegister, func() *OpError { return validateRegister(in) }); err != nil {
		return err
	}

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.api.Register(rctx, client.RegisterRequest{
		Name:     in.Name,
		Surname:  in.Surname,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		return a.fail(ctx, newOpError(OpRegister, ErrRegistrationFailed, err))
	}

	email := resp.Email
	if email == "" {
		email = in.Email
	}

	if err := a.pending.Set(ctx, email); err != nil {
		return a.fail(ctx, &OpError{Op: OpRegister, Kind: ErrRegistrationFailed, Message: "Could not save registration state", Err: err})
	}
	a.cooldown.Reset()

	a.succeed(OpRegister)
	a.log.Info(ctx, "registration accepted, awaiting otp", "email", email)
	a.nav.Navigate(Intent{Surface: SurfaceVerifyOtp, Email: email})
	return nil
}

func (a *authService) VerifyOtp(ctx context.Context, email, code string) error {
	email = a.contextEmail(email)
	code = strings.TrimSpace(code)

	err := a.start(OpVerifyOtp, func() *OpError {
		if email == "" {
			return &OpError{Op: OpVerifyOtp, Kind: ErrMissingContext, Message: fallbackMessages[ErrMissingContext]}
		}
		return validateCode(code)
	})
	if err != nil {
		a.redirectOnMissingContext(err)
		return err
	}

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.api.VerifyEmail(rctx, email, code)
	if err != nil {
		return a.fail(ctx, newOpError(OpVerifyOtp, ErrOtpVerificationFailed, err))
	}

	if err := a.establishSession(ctx, OpVerifyOtp, ErrOtpVerificationFailed, resp); err != nil {
		return err
	}
	a.log.Info(ctx, "email verified", "email", email)
	return nil
}

func (a *authService) ResendOtp(ctx context.Context, email string) error {
	email = a.contextEmail(email)

	err := a.start(OpResendOtp, func() *OpError {
		if email == "" {
			return &OpError{Op: OpResendOtp, Kind: ErrMissingContext, Message: fallbackMessages[ErrMissingContext]}
		}
		return nil
	})
	if err != nil {
		a.redirectOnMissingContext(err)
		return err
	}

	// The cooldown runs independently of the request outcome.
	a.cooldown.Start()

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.api.ResendOTP(rctx, email); err != nil {
		return a.fail(ctx, newOpError(OpResendOtp, ErrResendFailed, err))
	}

	a.mu.Lock()
	a.ops[OpResendOtp] = OperationState{Status: StatusSucceeded}
	a.lastErr = nil
	a.mu.Unlock()

	a.log.Info(ctx, "otp resent", "email", email)
	return nil
}

func (a *authService) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if err := a.start(OpLogin, func() *OpError { return validateLogin(username, password) }); err != nil {
		return err
	}

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.api.Login(rctx, username, password)
	if err != nil {
		return a.fail(ctx, newOpError(OpLogin, ErrLoginFailed, err))
	}

	if err := a.establishSession(ctx, OpLogin, ErrLoginFailed, resp); err != nil {
		return err
	}
	a.log.Info(ctx, "logged in", "username", username)
	return nil
}

// CheckAuthStatus returns the current user, or nil and an error wrapping
// ErrNotAuthenticated. Concurrent calls share one request.
func (a *authService) CheckAuthStatus(ctx context.Context) (*models.User, error) {
	if a.creds.Get() == nil {
		a.cache.Clear()
		return nil, &OpError{Op: OpCheckAuth, Kind: ErrNotAuthenticated, Message: fallbackMessages[ErrNotAuthenticated]}
	}

	v, err, _ := a.probe.Do("current-user", func() (any, error) {
		a.writeMu.Lock()
		epoch := a.epoch
		a.writeMu.Unlock()

		rctx, cancel := a.withTimeout(ctx)
		defer cancel()

		user, err := a.api.CurrentUser(rctx)

		a.writeMu.Lock()
		defer a.writeMu.Unlock()

		if err != nil || user == nil {
			if a.epoch == epoch {
				a.cache.Clear()
			}
			return nil, err
		}
		if a.epoch != epoch {
			// the session changed while the request was in flight
			return nil, nil
		}
		a.cache.Set(user)
		return user, nil
	})
	if err != nil {
		a.log.Debug(ctx, "auth probe failed", "error", err)
		return nil, newOpError(OpCheckAuth, ErrNotAuthenticated, err)
	}
	user, _ := v.(*models.User)
	if user == nil {
		return nil, &OpError{Op: OpCheckAuth, Kind: ErrNotAuthenticated, Message: fallbackMessages[ErrNotAuthenticated]}
	}
	return user.Clone(), nil
}

// Logout clears credentials, the pending registration, the cached user,
// the cooldown and every registered cache, then asks for the login surface.
// Storage errors are returned joined; the in-memory session is gone either
// way.
func (a *authService) Logout(ctx context.Context) error {
	a.writeMu.Lock()
	a.epoch++
	var errs []error
	if err := a.creds.Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.pending.Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	a.cache.Clear()
	a.writeMu.Unlock()

	a.cooldown.Reset()

	a.mu.Lock()
	a.resetOpsLocked(trackedOps...)
	a.lastErr = nil
	invalidators := append([]func(){}, a.invalidators...)
	a.mu.Unlock()

	for _, fn := range invalidators {
		fn()
	}

	err := errors.Join(errs...)
	if err != nil {
		a.log.Warn(ctx, "logout left stale local state", "error", err)
	} else {
		a.log.Info(ctx, "logged out")
	}

	a.nav.Navigate(Intent{Surface: SurfaceLogin})
	return err
}

// AbandonRegistration drops the pending registration and returns to the
// sign-up surface.
func (a *authService) AbandonRegistration(ctx context.Context) error {
	err := a.pending.Clear(ctx)
	a.cooldown.Reset()

	a.mu.Lock()
	a.resetOpsLocked(OpRegister, OpVerifyOtp, OpResendOtp)
	a.lastErr = nil
	a.mu.Unlock()

	a.nav.Navigate(Intent{Surface: SurfaceSignup})
	return err
}

func (a *authService) State() State {
	authenticated := a.cache.Get() != nil && a.creds.Get() != nil
	pending := a.pending.Get() != ""

	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case authenticated:
		return StateAuthenticated
	case a.ops[OpRegister].Pending():
		return StateRegistering
	case a.ops[OpLogin].Pending():
		return StateLoggingIn
	case pending:
		return StateAwaitingOtp
	default:
		return StateAnonymous
	}
}

func (a *authService) OperationState(op Operation) OperationState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ops[op]
}

func (a *authService) User() *models.User {
	return a.cache.Get()
}

func (a *authService) PendingEmail() string {
	return a.pending.Get()
}

func (a *authService) Cooldown() int {
	return a.cooldown.Remaining()
}

func (a *authService) CanResend() bool {
	if a.cooldown.Remaining() > 0 {
		return false
	}
	return !a.OperationState(OpResendOtp).Pending()
}

func (a *authService) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

func (a *authService) ClearError() {
	a.mu.Lock()
	a.lastErr = nil
	a.mu.Unlock()
}

func (a *authService) Subscribe(fn session.Listener) func() {
	return a.cache.Subscribe(fn)
}

func (a *authService) OnLogout(fn func()) {
	a.mu.Lock()
	a.invalidators = append(a.invalidators, fn)
	a.mu.Unlock()
}

func (a *authService) Close() {
	a.cooldown.Stop()
}

// start moves op to Pending. A validation failure is recorded as the
// operation's outcome; a pending op or an active resend cooldown is
// rejected without touching any state.
func (a *authService) start(op Operation, validate func() *OpError) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ops[op].Pending() {
		return ErrOperationInFlight
	}
	if op == OpResendOtp && a.cooldown.Remaining() > 0 {
		return &OpError{Op: op, Kind: ErrCooldownActive, Message: fallbackMessages[ErrCooldownActive]}
	}
	if err := validate(); err != nil {
		a.ops[op] = OperationState{Status: StatusFailed, Err: err}
		if !errors.Is(err, ErrMissingContext) {
			a.lastErr = err
		}
		return err
	}
	a.ops[op] = OperationState{Status: StatusPending}
	return nil
}

func (a *authService) fail(ctx context.Context, err *OpError) error {
	a.mu.Lock()
	a.ops[err.Op] = OperationState{Status: StatusFailed, Err: err}
	a.lastErr = err
	a.mu.Unlock()

	a.log.Warn(ctx, "operation failed", "op", string(err.Op), "error", err.Err)
	return err
}

func (a *authService) succeed(op Operation) {
	a.mu.Lock()
	a.ops[op] = OperationState{Status: StatusSucceeded}
	a.lastErr = nil
	a.mu.Unlock()
}

// resetOpsLocked returns settled operations to Idle. Pending ones keep
// running and settle on their own.
func (a *authService) resetOpsLocked(ops ...Operation) {
	for _, op := range ops {
		if !a.ops[op].Pending() {
			a.ops[op] = OperationState{}
		}
	}
}

// establishSession stores the credentials from resp, supersedes the cached
// user, drops the pending registration and moves to the dashboard. When the
// response carries no user it is fetched with the new token; if that fails
// the previous credentials are put back.
func (a *authService) establishSession(ctx context.Context, op Operation, kind error, resp *client.AuthResponse) error {
	a.writeMu.Lock()

	prev := a.creds.Get()
	if err := a.creds.Set(ctx, credentials.Credentials{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}); err != nil {
		a.writeMu.Unlock()
		return a.fail(ctx, &OpError{Op: op, Kind: kind, Message: "Could not save session", Err: err})
	}

	user := resp.User
	if user == nil {
		rctx, cancel := a.withTimeout(ctx)
		u, err := a.api.CurrentUser(rctx)
		cancel()
		if err != nil || u == nil {
			a.restoreCredentials(ctx, prev)
			a.writeMu.Unlock()
			return a.fail(ctx, newOpError(op, kind, err))
		}
		user = u
	}

	// stale probes must not overwrite the new user
	a.epoch++
	a.cache.Set(user)
	a.writeMu.Unlock()

	if err := a.pending.Clear(ctx); err != nil {
		a.log.Warn(ctx, "could not clear pending registration", "error", err)
	}
	a.cooldown.Reset()

	a.succeed(op)
	a.nav.Navigate(Intent{Surface: SurfaceDashboard})
	return nil
}

func (a *authService) restoreCredentials(ctx context.Context, prev *credentials.Credentials) {
	var err error
	if prev == nil {
		err = a.creds.Clear(ctx)
	} else {
		err = a.creds.Set(ctx, *prev)
	}
	if err != nil {
		a.log.Error(ctx, "could not restore credentials", "error", err)
	}
}

// contextEmail falls back to the pending registration.
func (a *authService) contextEmail(email string) string {
	if email = strings.TrimSpace(email); email != "" {
		return email
	}
	return a.pending.Get()
}

func (a *authService) redirectOnMissingContext(err error) {
	if errors.Is(err, ErrMissingContext) {
		a.nav.Navigate(Intent{Surface: SurfaceSignup})
	}
}

func (a *authService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}
