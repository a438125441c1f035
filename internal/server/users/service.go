package users

import (
	"context"
	"errors"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/crmconsole/internal/common"
	"github.com/dmitrijs2005/crmconsole/internal/logging"
	"github.com/dmitrijs2005/crmconsole/internal/server/auth"
	"github.com/dmitrijs2005/crmconsole/internal/server/config"
	"github.com/dmitrijs2005/crmconsole/internal/server/refreshtokens"
	"github.com/dmitrijs2005/crmconsole/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Registration is the input of Register.
type Registration struct {
	Name     string
	Surname  string
	Email    string
	Password string
}

// Account is the input of CreateUser and UpdateUser. An empty Password
// keeps the current one on update and is generated on create.
type Account struct {
	Name     string
	Surname  string
	Email    string
	Role     string
	IsActive bool
	Password string
}

type Service struct {
	repo                         Repository
	refreshTokenRepo             refreshtokens.Repository
	otp                          *auth.OTPIssuer
	log                          logging.Logger
	logSecrets                   bool
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewService(repo Repository, refreshTokenRepo refreshtokens.Repository, otp *auth.OTPIssuer, log logging.Logger, cfg *config.Config) *Service {
	return &Service{
		repo:                         repo,
		refreshTokenRepo:             refreshTokenRepo,
		otp:                          otp,
		log:                          log,
		logSecrets:                   cfg.LogOTP,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// AccessTokenValidity is the lifetime of the access tokens Service issues.
func (s *Service) AccessTokenValidity() time.Duration {
	return s.accessTokenValidityDuration
}

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}

func hashPassword(password string) ([]byte, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.ErrorInternal
	}
	return h, nil
}

func (s *Service) sendCode(ctx context.Context, email string) error {
	code, err := s.otp.Issue(email)
	if err != nil {
		s.log.Error(ctx, "otp issue failed", "error", err)
		return shared.ErrorInternal
	}
	if s.logSecrets {
		s.log.Info(ctx, "verification code issued", "email", email, "code", code)
	} else {
		s.log.Debug(ctx, "verification code issued", "email", email)
	}
	return nil
}

// Register creates an unverified account and issues its verification
// code. Registering again with the email of an account that was never
// verified replaces that account's details. The very first account becomes
// the superuser.
func (s *Service) Register(ctx context.Context, r Registration) (*User, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Surname = strings.TrimSpace(r.Surname)
	r.Email = strings.TrimSpace(r.Email)

	if r.Name == "" || r.Email == "" || r.Password == "" {
		return nil, shared.NewValidationError("Name, email and password are required")
	}
	if !validEmail(r.Email) {
		return nil, shared.NewValidationError("Invalid email address")
	}
	if len(r.Password) < minPasswordLength {
		return nil, shared.NewValidationError("Password must be at least 6 characters")
	}

	hash, err := hashPassword(r.Password)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, r.Email)
	switch {
	case err == nil && existing.Verified:
		return nil, shared.ErrorAlreadyExists
	case err == nil:
		existing.Name, existing.Surname, existing.PasswordHash = r.Name, r.Surname, hash
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, s.sendCode(ctx, existing.Email)
	case !errors.Is(err, shared.ErrorNotFound):
		return nil, shared.ErrorInternal
	}

	// Role is left empty so the repository can make the first account a
	// superuser atomically.
	user, err := s.repo.Create(ctx, &User{
		Name:         r.Name,
		Surname:      r.Surname,
		Email:        r.Email,
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return user, s.sendCode(ctx, user.Email)
}

// ResendOTP issues a new code for an account awaiting verification.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.Verified {
		return shared.NewValidationError("Email already verified")
	}
	return s.sendCode(ctx, user.Email)
}

// VerifyEmail checks code, marks the account verified and signs it in.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) (*TokenPair, *User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if user.Verified {
		return nil, nil, shared.NewValidationError("Email already verified")
	}
	if !s.otp.Verify(user.Email, code) {
		return nil, nil, shared.ErrorInvalidCode
	}

	user.Verified = true
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, nil, shared.ErrorInternal
	}

	s.log.Info(ctx, "email verified", "user_id", user.ID)

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

func (s *Service) issueTokens(ctx context.Context, user *User) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(strconv.FormatInt(user.ID, 10), s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, shared.ErrorInternal
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, shared.ErrorInternal
	}

	if err := s.refreshTokenRepo.Create(ctx, strconv.FormatInt(user.ID, 10), refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, shared.ErrorInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Login checks the password of the account registered under login (an
// email address).
func (s *Service) Login(ctx context.Context, login, password string) (*TokenPair, *User, error) {
	user, err := s.repo.GetByEmail(ctx, login)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return nil, nil, shared.ErrorInvalidLoginPassword
		}
		return nil, nil, shared.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, nil, shared.ErrorInvalidLoginPassword
	}
	if !user.Verified {
		return nil, nil, shared.ErrorNotVerified
	}
	if !user.IsActive {
		return nil, nil, shared.ErrorInactive
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Authenticate resolves an access token to an active, verified account.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	sub, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, shared.ErrorInvalidToken
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return nil, shared.ErrorInvalidToken
		}
		return nil, shared.ErrorInternal
	}
	if !user.IsActive {
		return nil, shared.ErrorInactive
	}
	return user, nil
}

// Dashboard lists every account with the active/inactive counts.
func (s *Service) Dashboard(ctx context.Context) ([]*User, Statistics, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, Statistics{}, shared.ErrorInternal
	}
	st := Statistics{UserCount: len(all)}
	for _, u := range all {
		if u.IsActive {
			st.ActiveUserCount++
		} else {
			st.InactiveUserCount++
		}
	}
	return all, st, nil
}

func normalizeAccount(a Account) Account {
	a.Name = strings.TrimSpace(a.Name)
	a.Surname = strings.TrimSpace(a.Surname)
	a.Email = strings.TrimSpace(a.Email)
	a.Role = strings.ToLower(strings.TrimSpace(a.Role))
	return a
}

// CreateUser adds a verified account. Without a password a random one is
// generated; it is only ever written to the log.
func (s *Service) CreateUser(ctx context.Context, a Account) (*User, error) {
	a = normalizeAccount(a)
	if a.Name == "" || a.Email == "" || a.Role == "" {
		return nil, shared.NewValidationError("Name, email and role are required")
	}
	if !validEmail(a.Email) {
		return nil, shared.NewValidationError("Invalid email address")
	}
	if !validRole(a.Role) {
		return nil, shared.NewValidationError("Role must be one of superuser, admin, user")
	}

	password := a.Password
	if password == "" {
		p, err := common.MakeRandHexString(8)
		if err != nil {
			return nil, shared.ErrorInternal
		}
		password = p
		if s.logSecrets {
			s.log.Info(ctx, "generated password", "email", a.Email, "password", password)
		}
	} else if len(password) < minPasswordLength {
		return nil, shared.NewValidationError("Password must be at least 6 characters")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, &User{
		Name:         a.Name,
		Surname:      a.Surname,
		Email:        a.Email,
		PasswordHash: hash,
		Role:         a.Role,
		Verified:     true,
		IsActive:     a.IsActive,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// UpdateUser replaces the editable fields of account id. The role is not
// editable.
func (s *Service) UpdateUser(ctx context.Context, actorID, id int64, a Account) (*User, error) {
	a = normalizeAccount(a)
	if a.Name == "" || a.Email == "" {
		return nil, shared.NewValidationError("Name and email are required")
	}
	if !validEmail(a.Email) {
		return nil, shared.NewValidationError("Invalid email address")
	}
	if actorID == id && !a.IsActive {
		return nil, shared.NewValidationError("You cannot deactivate your own account")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Name, user.Surname, user.Email, user.IsActive = a.Name, a.Surname, a.Email, a.IsActive

	if a.Password != "" {
		if len(a.Password) < minPasswordLength {
			return nil, shared.NewValidationError("Password must be at least 6 characters")
		}
		if user.PasswordHash, err = hashPassword(a.Password); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	if !user.IsActive {
		s.revoke(ctx, id)
	}
	return user, nil
}

// ToggleActive flips the active flag of account id.
func (s *Service) ToggleActive(ctx context.Context, actorID, id int64) (*User, error) {
	if actorID == id {
		return nil, shared.NewValidationError("You cannot deactivate your own account")
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = !user.IsActive
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	if !user.IsActive {
		s.revoke(ctx, id)
	}
	s.log.Info(ctx, "user toggled", "user_id", id, "active", user.IsActive)
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return shared.NewValidationError("You cannot delete your own account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.revoke(ctx, id)
	s.log.Info(ctx, "user deleted", "user_id", id)
	return nil
}

func (s *Service) revoke(ctx context.Context, id int64) {
	if err := s.refreshTokenRepo.DeleteForUser(ctx, strconv.FormatInt(id, 10)); err != nil {
		s.log.Warn(ctx, "refresh token cleanup failed", "user_id", id, "error", err)
	}
}
