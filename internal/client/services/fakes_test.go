package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/crmconsole/internal/client/client"
	"github.com/dmitrijs2005/crmconsole/internal/client/cooldown"
	"github.com/dmitrijs2005/crmconsole/internal/client/credentials"
	"github.com/dmitrijs2005/crmconsole/internal/client/models"
	"github.com/dmitrijs2005/crmconsole/internal/client/session"
)

// ---- fake gateway ----

type fakeAuthAPI struct {
	mu sync.Mutex

	RegisterResp *client.RegisterResponse
	RegisterErr  error
	VerifyResp   *client.AuthResponse
	VerifyErr    error
	ResendErr    error
	LoginResp    *client.AuthResponse
	LoginErr     error
	MeResp       *models.User
	MeErr        error

	// entered receives once per call when set; gate is then awaited.
	entered chan string
	gate    chan struct{}

	calls map[string]int

	LastRegister    client.RegisterRequest
	LastVerifyEmail string
	LastVerifyCode  string
	LastResendEmail string
	LastLoginUser   string
	LastLoginPass   string
}

func (f *fakeAuthAPI) enter(ctx context.Context, name string) error {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
	entered, gate := f.entered, f.gate
	f.mu.Unlock()

	if entered != nil {
		entered <- name
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *fakeAuthAPI) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAuthAPI) Register(ctx context.Context, req client.RegisterRequest) (*client.RegisterResponse, error) {
	if err := f.enter(ctx, "register"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastRegister = req
	return f.RegisterResp, f.RegisterErr
}

func (f *fakeAuthAPI) VerifyEmail(ctx context.Context, email, code string) (*client.AuthResponse, error) {
	if err := f.enter(ctx, "verify"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastVerifyEmail, f.LastVerifyCode = email, code
	return f.VerifyResp, f.VerifyErr
}

func (f *fakeAuthAPI) ResendOTP(ctx context.Context, email string) error {
	if err := f.enter(ctx, "resend"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastResendEmail = email
	return f.ResendErr
}

func (f *fakeAuthAPI) Login(ctx context.Context, username, password string) (*client.AuthResponse, error) {
	if err := f.enter(ctx, "login"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastLoginUser, f.LastLoginPass = username, password
	return f.LoginResp, f.LoginErr
}

func (f *fakeAuthAPI) CurrentUser(ctx context.Context) (*models.User, error) {
	if err := f.enter(ctx, "me"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.MeResp.Clone(), f.MeErr
}

// ---- in-memory stores ----

type memCreds struct {
	mu       sync.Mutex
	current  *credentials.Credentials
	SetErr   error
	ClearErr error
}

func (m *memCreds) Get() *credentials.Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	c := *m.current
	return &c
}

func (m *memCreds) Set(_ context.Context, c credentials.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.current = &c
	return nil
}

func (m *memCreds) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	return m.ClearErr
}

type memPending struct {
	mu       sync.Mutex
	email    string
	SetErr   error
	ClearErr error
}

func (m *memPending) Get() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.email
}

func (m *memPending) Set(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.email = email
	return nil
}

func (m *memPending) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.email = ""
	return m.ClearErr
}

// ---- navigation recorder ----

type navRecorder struct {
	mu      sync.Mutex
	intents []Intent
}

func (n *navRecorder) Navigate(in Intent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.intents = append(n.intents, in)
}

func (n *navRecorder) Last() (Intent, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.intents) == 0 {
		return Intent{}, false
	}
	return n.intents[len(n.intents)-1], true
}

func (n *navRecorder) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.intents)
}

// ---- manual ticker ----

type manualTicker struct {
	ch chan time.Time
	mu sync.Mutex
	// stopped is guarded by mu
	stopped bool
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }

func (m *manualTicker) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

func (m *manualTicker) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

type manualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (c *manualClock) newTicker(time.Duration) cooldown.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *manualClock) last() *manualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return nil
	}
	return c.tickers[len(c.tickers)-1]
}

// ---- harness ----

type harness struct {
	api     *fakeAuthAPI
	creds   *memCreds
	pending *memPending
	nav     *navRecorder
	clock   *manualClock
	cache   *session.Cache
	svc     AuthService
}

func newHarness(opts ...AuthOption) *harness {
	h := &harness{
		api:     &fakeAuthAPI{},
		creds:   &memCreds{},
		pending: &memPending{},
		nav:     &navRecorder{},
		clock:   &manualClock{},
	}
	return h.build(opts...)
}

func (h *harness) build(opts ...AuthOption) *harness {
	base := []AuthOption{
		WithNavigator(h.nav),
		WithCooldown(cooldown.New(cooldown.DefaultWindow, cooldown.WithTicker(h.clock.newTicker))),
	}
	h.cache = session.NewCache()
	h.svc = NewAuthService(h.api, h.creds, h.pending, h.cache, append(base, opts...)...)
	return h
}

func sampleUser() *models.User {
	return &models.User{ID: "1", Name: "A", Surname: "B", Email: "a@b.com", Verified: true}
}
