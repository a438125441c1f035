package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/crmconsole/internal/client/models"
	"github.com/dmitrijs2005/crmconsole/internal/common"
)

// Users prints the superuser dashboard: statistics followed by the user table.
func (a *App) Users(ctx context.Context) error {
	d, err := a.adminService.Dashboard(ctx)
	if err != nil {
		return a.reportRequest(ctx, err)
	}

	a.printf("Users: %d total, %d active, %d inactive\n",
		d.Statistics.UserCount, d.Statistics.ActiveUserCount, d.Statistics.InactiveUserCount)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tACTIVE")
	for _, u := range d.Users {
		fmt.Fprintf(tw, "%d\t%s %s\t%s\t%s\t%s\n", u.ID, u.Name, u.Surname, u.Email, u.Role, yesNo(u.IsActive))
	}
	return tw.Flush()
}

// AddUser creates a user from the superuser console. The password is
// optional; the backend generates one when it is left empty.
func (a *App) AddUser(ctx context.Context) error {
	var u models.NewAccount
	var err error

	if u.Name, err = getSimpleText(a.reader, "First name", a.out); err != nil {
		return err
	}
	if u.Surname, err = getSimpleText(a.reader, "Last name", a.out); err != nil {
		return err
	}
	if u.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if u.Role, err = getSimpleText(a.reader, "Role", a.out); err != nil {
		return err
	}
	active, err := getConfirmation(a.reader, "Active?", a.out)
	if err != nil {
		return err
	}
	u.IsActive = active

	password, err := getPassword("Password (empty to skip)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	u.Password = string(password)

	created, err := a.adminService.CreateUser(ctx, u)
	if err != nil {
		return a.reportRequest(ctx, err)
	}
	a.printf("Created user %d.\n", created.ID)
	return nil
}

// EditUser updates the user with the given id. Empty answers keep the
// current values.
func (a *App) EditUser(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		a.println(err)
		return err
	}

	d, err := a.adminService.Dashboard(ctx)
	if err != nil {
		return a.reportRequest(ctx, err)
	}
	var cur *models.AccountUser
	for i := range d.Users {
		if d.Users[i].ID == id {
			cur = &d.Users[i]
			break
		}
	}
	if cur == nil {
		a.printf("User %d not found.\n", id)
		return errNotFound
	}

	u := models.AccountUpdate{IsActive: cur.IsActive}
	if u.Name, err = getTextWithDefault(a.reader, "First name", cur.Name, a.out); err != nil {
		return err
	}
	if u.Surname, err = getTextWithDefault(a.reader, "Last name", cur.Surname, a.out); err != nil {
		return err
	}
	if u.Email, err = getTextWithDefault(a.reader, "Email", cur.Email, a.out); err != nil {
		return err
	}

	password, err := getPassword("New password (empty to keep)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	u.Password = string(password)

	if _, err := a.adminService.UpdateUser(ctx, id, u); err != nil {
		return a.reportRequest(ctx, err)
	}
	a.printf("Updated user %d.\n", id)
	return nil
}

// ToggleUser flips the active flag of a user.
func (a *App) ToggleUser(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		a.println(err)
		return err
	}
	if err := a.adminService.ToggleUserActive(ctx, id); err != nil {
		return a.reportRequest(ctx, err)
	}
	a.printf("Toggled user %d.\n", id)
	return nil
}

// DeleteUser removes a user after confirmation.
func (a *App) DeleteUser(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		a.println(err)
		return err
	}
	ok, err := getConfirmation(a.reader, fmt.Sprintf("Delete user %d?", id), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.adminService.DeleteUser(ctx, id); err != nil {
		return a.reportRequest(ctx, err)
	}
	a.printf("Deleted user %d.\n", id)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
