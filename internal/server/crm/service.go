package crm

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/crmconsole/internal/logging"
	"github.com/dmitrijs2005/crmconsole/internal/shared"
)

const (
	DefaultLatestLimit = 50
	MaxLatestLimit     = 500
)

type Service struct {
	repo Repository
	log  logging.Logger
	now  func() time.Time
}

func NewService(repo Repository, log logging.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

func oneOf(v string, choices []string) (string, bool) {
	for _, c := range choices {
		if strings.EqualFold(v, c) {
			return c, true
		}
	}
	return "", false
}

var whitespace = regexp.MustCompile(`\s+`)

func usernameFor(fullName string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(fullName)), ".")
}

// validate normalizes in. Status and platform are matched case-insensitively
// and stored in their canonical spelling.
func validate(in Input) (Input, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = strings.TrimSpace(in.Username)
	in.Platform = strings.TrimSpace(in.Platform)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Status = strings.TrimSpace(in.Status)
	in.AssistantName = strings.TrimSpace(in.AssistantName)
	in.Notes = strings.TrimSpace(in.Notes)
	in.ConversationLanguage = strings.TrimSpace(in.ConversationLanguage)

	if in.Status == "" {
		in.Status = DefaultStatus
	}
	if in.FullName == "" || in.PhoneNumber == "" || in.Platform == "" {
		return in, shared.NewValidationError("Full name, platform, phone number, and status are required")
	}

	var ok bool
	if in.Platform, ok = oneOf(in.Platform, Platforms); !ok {
		return in, shared.NewValidationError("Platform must be one of " + strings.Join(Platforms, ", "))
	}
	if in.Status, ok = oneOf(in.Status, Statuses); !ok {
		return in, shared.NewValidationError("Status must be one of " + strings.Join(Statuses, ", "))
	}
	if in.Username == "" {
		in.Username = usernameFor(in.FullName)
	}
	return in, nil
}

func apply(c *Customer, in Input) {
	c.FullName = in.FullName
	c.Username = in.Username
	c.Platform = in.Platform
	c.PhoneNumber = in.PhoneNumber
	c.Status = in.Status
	c.AssistantName = in.AssistantName
	c.Notes = in.Notes
	c.ConversationLanguage = in.ConversationLanguage
}

func matches(c *Customer, f Filter, day string) bool {
	if f.Status != "" && !strings.EqualFold(c.Status, f.Status) {
		return false
	}
	if f.Platform != "" && !strings.EqualFold(c.Platform, f.Platform) {
		return false
	}
	if day != "" && c.CreatedAt.UTC().Format(time.DateOnly) != day {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		return strings.Contains(strings.ToLower(c.FullName), q) ||
			strings.Contains(strings.ToLower(c.Username), q) ||
			strings.Contains(c.PhoneNumber, q)
	}
	return true
}

// List returns the customers matching f, newest first. "all" disables the
// status and platform filters.
func (s *Service) List(ctx context.Context, f Filter) ([]*Customer, error) {
	f.Search = strings.TrimSpace(f.Search)
	if strings.EqualFold(f.Status, "all") {
		f.Status = ""
	}
	if strings.EqualFold(f.Platform, "all") {
		f.Platform = ""
	}

	day := strings.TrimSpace(f.Date)
	if day != "" {
		if _, err := time.Parse(time.DateOnly, day); err != nil {
			return nil, shared.NewValidationError("Date must be YYYY-MM-DD")
		}
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, shared.ErrorInternal
	}

	out := make([]*Customer, 0, len(all))
	for _, c := range all {
		if matches(c, f, day) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Latest returns at most limit of the newest customers.
func (s *Service) Latest(ctx context.Context, limit int) ([]*Customer, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	limit = min(limit, MaxLatestLimit)

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, shared.ErrorInternal
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*Customer, error) {
	in, err := validate(in)
	if err != nil {
		return nil, err
	}

	c := &Customer{CreatedAt: s.now().UTC()}
	apply(c, in)

	c, err = s.repo.Create(ctx, c)
	if err != nil {
		return nil, shared.ErrorInternal
	}
	s.log.Info(ctx, "customer created", "customer_id", c.ID)
	return c, nil
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (*Customer, error) {
	in, err := validate(in)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(c, in)

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "customer deleted", "customer_id", id)
	return nil
}

// Stats counts customers by status, platform and creation period. Weeks
// start on Monday; periods are computed in UTC.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, shared.ErrorInternal
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	week := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	quarter := today.AddDate(0, -3, 0)

	st := &Stats{
		TotalCustomers: len(all),
		ByStatus:       make(map[string]int),
		ByPlatform:     make(map[string]int),
	}
	for _, c := range all {
		st.ByStatus[c.Status]++
		st.ByPlatform[c.Platform]++

		at := c.CreatedAt.UTC()
		if !at.Before(today) {
			st.PeriodStats.Today++
		}
		if !at.Before(week) {
			st.PeriodStats.ThisWeek++
		}
		if !at.Before(month) {
			st.PeriodStats.ThisMonth++
		}
		if !at.Before(quarter) {
			st.PeriodStats.Last3Months++
		}
	}
	return st, nil
}
