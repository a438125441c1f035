package services

// Surface names a screen of the console.
type Surface string

const (
	SurfaceLogin     Surface = "login"
	SurfaceSignup    Surface = "signup"
	SurfaceVerifyOtp Surface = "verify-otp"
	SurfaceDashboard Surface = "dashboard"
)

// Intent asks the presentation layer to move to Surface. Email is set when
// the target needs it (OTP entry).
type Intent struct {
	Surface Surface
	Email   string
}

type Navigator interface {
	Navigate(Intent)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Intent)

func (f NavigatorFunc) Navigate(in Intent) { f(in) }

type nopNavigator struct{}

func (nopNavigator) Navigate(Intent) {}
