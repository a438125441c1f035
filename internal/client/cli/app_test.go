package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/crmconsole/internal/client/client"
	"github.com/dmitrijs2005/crmconsole/internal/client/cooldown"
	"github.com/dmitrijs2005/crmconsole/internal/client/credentials"
	"github.com/dmitrijs2005/crmconsole/internal/client/models"
	"github.com/dmitrijs2005/crmconsole/internal/client/services"
	"github.com/dmitrijs2005/crmconsole/internal/client/session"
	"github.com/dmitrijs2005/crmconsole/internal/client/storage"
	"github.com/dmitrijs2005/crmconsole/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeGateway implements client.Gateway.
type fakeGateway struct {
	mu sync.Mutex

	registerResp *client.RegisterResponse
	registerErr  error
	verifyResp   *client.AuthResponse
	verifyErr    error
	resendErr    error
	loginResp    *client.AuthResponse
	loginErr     error
	me           *models.User
	meErr        error

	dashboard *models.AdminDashboard
	page      *models.CustomerPage
	stats     *models.CRMStats
	dataErr   error

	lastRegister   client.RegisterRequest
	lastCode       string
	lastLoginUser  string
	lastLoginPass  string
	lastFilter     models.CustomerFilter
	lastCustomer   models.CustomerInput
	lastAccount    models.NewAccount
	lastUpdate     models.AccountUpdate
	lastID         int64
	resendCalls    int
	toggled        []int64
	deletedUsers   []int64
	deletedCustomr []int64
}

func (f *fakeGateway) Register(_ context.Context, req client.RegisterRequest) (*client.RegisterResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRegister = req
	return f.registerResp, f.registerErr
}

func (f *fakeGateway) VerifyEmail(_ context.Context, _, code string) (*client.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCode = code
	return f.verifyResp, f.verifyErr
}

func (f *fakeGateway) ResendOTP(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resendCalls++
	return f.resendErr
}

func (f *fakeGateway) Login(_ context.Context, username, password string) (*client.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLoginUser, f.lastLoginPass = username, password
	return f.loginResp, f.loginErr
}

func (f *fakeGateway) CurrentUser(context.Context) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.me.Clone(), f.meErr
}

func (f *fakeGateway) AdminDashboard(context.Context) (*models.AdminDashboard, error) {
	return f.dashboard, f.dataErr
}

func (f *fakeGateway) CreateUser(_ context.Context, u models.NewAccount) (*models.AccountUser, error) {
	f.lastAccount = u
	return &models.AccountUser{ID: 7, Name: u.Name, Email: u.Email}, f.dataErr
}

func (f *fakeGateway) UpdateUser(_ context.Context, id int64, u models.AccountUpdate) (*models.AccountUser, error) {
	f.lastID, f.lastUpdate = id, u
	return &models.AccountUser{ID: id}, f.dataErr
}

func (f *fakeGateway) DeleteUser(_ context.Context, id int64) error {
	f.deletedUsers = append(f.deletedUsers, id)
	return f.dataErr
}

func (f *fakeGateway) ToggleUserActive(_ context.Context, id int64) error {
	f.toggled = append(f.toggled, id)
	return f.dataErr
}

func (f *fakeGateway) LatestCustomers(context.Context, int) (*models.CustomerPage, error) {
	return f.page, f.dataErr
}

func (f *fakeGateway) Customers(_ context.Context, flt models.CustomerFilter) (*models.CustomerPage, error) {
	f.lastFilter = flt
	return f.page, f.dataErr
}

func (f *fakeGateway) CreateCustomer(_ context.Context, in models.CustomerInput) (*models.Customer, error) {
	f.lastCustomer = in
	return &models.Customer{ID: 11, FullName: in.FullName, Username: in.Username()}, f.dataErr
}

func (f *fakeGateway) UpdateCustomer(_ context.Context, id int64, in models.CustomerInput) (*models.Customer, error) {
	f.lastID, f.lastCustomer = id, in
	return &models.Customer{ID: id}, f.dataErr
}

func (f *fakeGateway) DeleteCustomer(_ context.Context, id int64) error {
	f.deletedCustomr = append(f.deletedCustomr, id)
	return f.dataErr
}

func (f *fakeGateway) CRMStats(context.Context) (*models.CRMStats, error) {
	return f.stats, f.dataErr
}

var _ client.Gateway = (*fakeGateway)(nil)

// idleTicker never fires, so the cooldown stays where Start put it.
type idleTicker struct{ c chan time.Time }

func (t idleTicker) C() <-chan time.Time { return t.c }
func (t idleTicker) Stop()               {}

type testApp struct {
	*App
	gw    *fakeGateway
	creds *credentials.Store
	out   *bytes.Buffer
}

// newTestApp builds an App the way NewApp does, with the REST gateway
// replaced by a fake and the database in a temp dir.
func newTestApp(t *testing.T, gw *fakeGateway) *testApp {
	t.Helper()
	ctx := context.Background()

	db, err := storage.InitDatabase(ctx, filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)

	creds, err := credentials.Open(ctx, db)
	require.NoError(t, err)
	pending, err := credentials.OpenPending(ctx, db)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	a := &App{
		log:    logging.Discard(),
		db:     db,
		token:  creds.AccessToken,
		reader: bufio.NewReader(strings.NewReader("")),
		out:    out,
	}
	timer := cooldown.New(cooldown.DefaultWindow, cooldown.WithTicker(func(time.Duration) cooldown.Ticker {
		return idleTicker{c: make(chan time.Time)}
	}))
	a.authService = services.NewAuthService(gw, creds, pending, session.NewCache(),
		services.WithNavigator(a),
		services.WithLogger(logging.Discard()),
		services.WithCooldown(timer),
	)
	a.adminService = services.NewAdminService(gw)
	a.crmService = services.NewCRMService(gw)
	a.authService.OnLogout(a.adminService.Invalidate)
	a.authService.OnLogout(a.crmService.Invalidate)
	t.Cleanup(a.Close)

	return &testApp{App: a, gw: gw, creds: creds, out: out}
}

// signIn stores a token and warms the session cache.
func (ta *testApp) signIn(t *testing.T) {
	t.Helper()
	ta.gw.me = &models.User{ID: "1", Name: "Ada", Surname: "Lovelace", Email: "ada@example.com", Role: "superuser"}
	require.NoError(t, ta.creds.Set(context.Background(), credentials.Credentials{AccessToken: "tok"}))
	_, err := ta.authService.CheckAuthStatus(context.Background())
	require.NoError(t, err)
	ta.out.Reset()
}

func stubInputs(t *testing.T, lines []string, passwords ...string) {
	t.Helper()
	origST, origTD, origGC, origML, origGP := getSimpleText, getTextWithDefault, getConfirmation, getMultiline, getPassword

	next := func() string {
		if len(lines) == 0 {
			return ""
		}
		s := lines[0]
		lines = lines[1:]
		return s
	}
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return next(), nil }
	getTextWithDefault = func(_ *bufio.Reader, _, def string, _ io.Writer) (string, error) {
		if s := next(); s != "" {
			return s, nil
		}
		return def, nil
	}
	getConfirmation = func(_ *bufio.Reader, _ string, _ io.Writer) (bool, error) { return next() == "y", nil }
	getMultiline = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return next(), nil }
	getPassword = func(string, io.Writer) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, nil
		}
		p := passwords[0]
		passwords = passwords[1:]
		return []byte(p), nil
	}

	t.Cleanup(func() {
		getSimpleText, getTextWithDefault, getConfirmation, getMultiline, getPassword = origST, origTD, origGC, origML, origGP
	})
}
