package services

// Operation identifies one of the controller's user-triggered operations.
type Operation string

const (
	OpRegister  Operation = "register"
	OpVerifyOtp Operation = "verify-otp"
	OpResendOtp Operation = "resend-otp"
	OpLogin     Operation = "login"
	// OpCheckAuth tags rehydration errors. Its state is not tracked.
	OpCheckAuth Operation = "check-auth"
)

var trackedOps = []Operation{OpRegister, OpVerifyOtp, OpResendOtp, OpLogin}

type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// OperationState is the lifecycle of a single operation. Err is set only
// when Status is StatusFailed.
type OperationState struct {
	Status Status
	Err    error
}

func (s OperationState) Pending() bool { return s.Status == StatusPending }

// State is the derived session state.
type State int

const (
	StateAnonymous State = iota
	StateRegistering
	StateAwaitingOtp
	StateLoggingIn
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateRegistering:
		return "registering"
	case StateAwaitingOtp:
		return "awaiting-otp"
	case StateLoggingIn:
		return "logging-in"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}
