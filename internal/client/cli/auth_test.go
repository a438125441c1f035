package cli

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/crmconsole/internal/client/client"
	"github.com/dmitrijs2005/crmconsole/internal/client/credentials"
	"github.com/dmitrijs2005/crmconsole/internal/client/models"
	"github.com/dmitrijs2005/crmconsole/internal/client/services"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	ta := newTestApp(t, &fakeGateway{registerResp: &client.RegisterResponse{Email: "ada@example.com"}})
	stubInputs(t, []string{"Ada", "Lovelace", "ada@example.com"}, "password1", "password1")

	require.NoError(t, ta.Register(context.Background()))

	assert.Equal(t, client.RegisterRequest{Name: "Ada", Surname: "Lovelace", Email: "ada@example.com", Password: "password1"}, ta.gw.lastRegister)
	assert.Equal(t, services.SurfaceVerifyOtp, ta.surface)
	assert.True(t, ta.isAwaitingOtp())
	assert.Contains(t, ta.out.String(), "We sent a 4-digit code to ada@example.com")
}

func TestRegister_PasswordMismatchNeverReachesBackend(t *testing.T) {
	ta := newTestApp(t, &fakeGateway{})
	stubInputs(t, []string{"Ada", "Lovelace", "ada@example.com"}, "password1", "password2")

	err := ta.Register(context.Background())
	require.ErrorIs(t, err, services.ErrValidationFailed)

	assert.Empty(t, ta.gw.lastRegister.Email)
	assert.Contains(t, ta.out.String(), "Error: Passwords do not match")
}

func TestRegister_BackendMessageShown(t *testing.T) {
	ta := newTestApp(t, &fakeGateway{registerErr: &client.APIError{StatusCode: 400, Message: "Email already registered"}})
	stubInputs(t, []string{"Ada", "Lovelace", "ada@example.com"}, "password1", "password1")

	require.ErrorIs(t, ta.Register(context.Background()), services.ErrRegistrationFailed)
	assert.Contains(t, ta.out.String(), "Error: Email already registered")
	assert.False(t, ta.isAwaitingOtp())
}

func TestVerify_EstablishesSession(t *testing.T) {
	user := &models.User{ID: "1", Name: "Ada", Email: "ada@example.com"}
	ta := newTestApp(t, &fakeGateway{
		registerResp: &client.RegisterResponse{Email: "ada@example.com"},
		verifyResp:   &client.AuthResponse{AccessToken: "tok", User: user},
	})
	stubInputs(t, []string{"Ada", "Lovelace", "ada@example.com", "1234"}, "password1", "password1")

	ctx := context.Background()
	require.NoError(t, ta.Register(ctx))
	require.NoError(t, ta.Verify(ctx))

	assert.Equal(t, "1234", ta.gw.lastCode)
	assert.True(t, ta.isLoggedIn())
	assert.Equal(t, services.SurfaceDashboard, ta.surface)
	assert.Equal(t, "tok", ta.token())
	assert.Equal(t, "(ada@example.com)", ta.getStatus())
}

func TestResend_CooldownIsReported(t *testing.T) {
	ta := newTestApp(t, &fakeGateway{registerResp: &client.RegisterResponse{Email: "ada@example.com"}})
	stubInputs(t, []string{"Ada", "Lovelace", "ada@example.com"}, "password1", "password1")

	ctx := context.Background()
	require.NoError(t, ta.Register(ctx))
	ta.out.Reset()

	require.NoError(t, ta.Resend(ctx))
	assert.Contains(t, ta.out.String(), "You can request another in 60s")
	assert.Equal(t, "(verify ada@example.com, resend in 60s)", ta.getStatus())

	ta.out.Reset()
	require.ErrorIs(t, ta.Resend(ctx), services.ErrCooldownActive)
	assert.Contains(t, ta.out.String(), "Please wait 60s")
	assert.Equal(t, 1, ta.gw.resendCalls)
}

func TestAbandon_ReturnsToSignup(t *testing.T) {
	ta := newTestApp(t, &fakeGateway{registerResp: &client.RegisterResponse{Email: "ada@example.com"}})
	stubInputs(t, []string{"Ada", "Lovelace", "ada@example.com"}, "password1", "password1")

	ctx := context.Background()
	require.NoError(t, ta.Register(ctx))
	require.NoError(t, ta.Abandon(ctx))

	assert.False(t, ta.isAwaitingOtp())
	assert.Equal(t, services.SurfaceSignup, ta.surface)
	assert.Equal(t, "", ta.getStatus())
}

func TestLogin_Success(t *testing.T) {
	user := &models.User{ID: "1", Name: "Ada", Email: "ada@example.com"}
	ta := newTestApp(t, &fakeGateway{loginResp: &client.AuthResponse{AccessToken: "tok", User: user}})
	stubInputs(t, []string{"ada"}, "password1")

	require.NoError(t, ta.Login(context.Background()))

	assert.Equal(t, "ada", ta.gw.lastLoginUser)
	assert.Equal(t, "password1", ta.gw.lastLoginPass)
	assert.True(t, ta.isLoggedIn())
	assert.Contains(t, ta.out.String(), "Signed in.")
}

func TestLogin_FailureKeepsSession(t *testing.T) {
	ta := newTestApp(t, &fakeGateway{loginErr: &client.APIError{StatusCode: 401, Message: "Invalid credentials"}})
	ta.signIn(t)
	stubInputs(t, []string{"ada"}, "wrong-password")

	require.ErrorIs(t, ta.Login(context.Background()), services.ErrLoginFailed)

	assert.True(t, ta.isLoggedIn())
	assert.Equal(t, "tok", ta.token())
	assert.Contains(t, ta.out.String(), "Error: Invalid credentials")
}

func TestLogout(t *testing.T) {
	ta := newTestApp(t, &fakeGateway{})
	ta.signIn(t)

	require.NoError(t, ta.Logout(context.Background()))

	assert.False(t, ta.isLoggedIn())
	assert.Empty(t, ta.token())
	assert.Equal(t, services.SurfaceLogin, ta.surface)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("signed out", func(t *testing.T) {
		ta := newTestApp(t, &fakeGateway{})
		require.NoError(t, ta.Status(ctx))
		assert.Contains(t, ta.out.String(), "Not signed in.")
	})

	t.Run("signed in with jwt", func(t *testing.T) {
		ta := newTestApp(t, &fakeGateway{})
		ta.signIn(t)

		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(exp),
		}).SignedString([]byte("k"))
		require.NoError(t, err)
		require.NoError(t, ta.creds.Set(ctx, credentials.Credentials{AccessToken: tok}))

		require.NoError(t, ta.Status(ctx))
		out := ta.out.String()
		assert.Contains(t, out, "Signed in as Ada Lovelace <ada@example.com> (superuser)")
		assert.Contains(t, out, "Token expires "+exp.Local().Format(time.RFC1123))
	})

	t.Run("expired token", func(t *testing.T) {
		ta := newTestApp(t, &fakeGateway{})
		ta.signIn(t)
		ta.gw.meErr = &client.APIError{StatusCode: 401, Message: "Token expired"}

		require.NoError(t, ta.Status(ctx))
		assert.Contains(t, ta.out.String(), "Your session has expired")
		assert.False(t, ta.isLoggedIn())
	})
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("valid session", func(t *testing.T) {
		ta := newTestApp(t, &fakeGateway{})
		ta.signIn(t)

		ta.restore(ctx)
		assert.Equal(t, services.SurfaceDashboard, ta.surface)
		assert.Contains(t, ta.out.String(), "Welcome back, Ada Lovelace.")
	})

	t.Run("server down", func(t *testing.T) {
		ta := newTestApp(t, &fakeGateway{})
		ta.signIn(t)
		ta.gw.meErr = client.ErrUnavailable

		ta.restore(ctx)
		assert.Contains(t, ta.out.String(), "The server is unreachable")
		assert.Equal(t, "tok", ta.token())
	})

	t.Run("nothing stored", func(t *testing.T) {
		ta := newTestApp(t, &fakeGateway{})
		ta.restore(ctx)
		assert.Empty(t, ta.out.String())
	})
}
