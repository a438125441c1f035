package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/crmconsole/internal/client/models"
)

// parseCustomerFilter reads "key=value" arguments (status, platform, date);
// anything else is joined into the free-text search.
func parseCustomerFilter(args []string) models.CustomerFilter {
	var f models.CustomerFilter
	var search []string
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			search = append(search, arg)
			continue
		}
		switch strings.ToLower(k) {
		case "status":
			f.Status = v
		case "platform":
			f.Platform = v
		case "date":
			f.Date = v
		case "search", "q":
			search = append(search, v)
		default:
			search = append(search, arg)
		}
	}
	f.Search = strings.Join(search, " ")
	return f
}

// Customers lists customers. Without arguments the latest customers are shown.
//
//	customers [text...] [status=S] [platform=P] [date=YYYY-MM-DD]
func (a *App) Customers(ctx context.Context, args []string) error {
	page, err := a.crmService.Customers(ctx, parseCustomerFilter(args))
	if err != nil {
		return a.reportRequest(ctx, err)
	}
	if len(page.Customers) == 0 {
		a.println("No customers found.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPLATFORM\tPHONE\tSTATUS\tCREATED")
	for _, c := range page.Customers {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.FullName, c.Platform, c.PhoneNumber, c.Status, c.CreatedAt)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(page.StatusChoices) > 0 {
		a.printf("Statuses: %s\n", strings.Join(page.StatusChoices, ", "))
	}
	return nil
}

func (a *App) readCustomer(cur models.Customer) (models.CustomerInput, error) {
	var in models.CustomerInput
	var err error

	if in.FullName, err = getTextWithDefault(a.reader, "Full name", cur.FullName, a.out); err != nil {
		return in, err
	}
	if in.PhoneNumber, err = getTextWithDefault(a.reader, "Phone number", cur.PhoneNumber, a.out); err != nil {
		return in, err
	}
	if in.Platform, err = getTextWithDefault(a.reader, "Platform", cur.Platform, a.out); err != nil {
		return in, err
	}
	if in.Status, err = getTextWithDefault(a.reader, "Status", cur.Status, a.out); err != nil {
		return in, err
	}
	if in.AssistantName, err = getTextWithDefault(a.reader, "Assistant name", cur.AssistantName, a.out); err != nil {
		return in, err
	}
	if in.ConversationLanguage, err = getTextWithDefault(a.reader, "Conversation language", cur.ConversationLanguage, a.out); err != nil {
		return in, err
	}
	notes, err := getMultiline(a.reader, "Notes", a.out)
	if err != nil {
		return in, err
	}
	in.Notes = notes
	if in.Notes == "" {
		in.Notes = cur.Notes
	}
	return in, nil
}

// AddCustomer creates a customer record.
func (a *App) AddCustomer(ctx context.Context) error {
	in, err := a.readCustomer(models.Customer{})
	if err != nil {
		return err
	}
	c, err := a.crmService.CreateCustomer(ctx, in)
	if err != nil {
		return a.reportRequest(ctx, err)
	}
	a.printf("Created customer %d (%s).\n", c.ID, c.Username)
	return nil
}

// EditCustomer updates the customer with the given id. The current values
// are looked up in the latest listing and offered as defaults.
func (a *App) EditCustomer(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		a.println(err)
		return err
	}

	var cur models.Customer
	if page, err := a.crmService.Customers(ctx, models.CustomerFilter{}); err == nil {
		for _, c := range page.Customers {
			if c.ID == id {
				cur = c
				break
			}
		}
	}

	in, err := a.readCustomer(cur)
	if err != nil {
		return err
	}
	if _, err := a.crmService.UpdateCustomer(ctx, id, in); err != nil {
		return a.reportRequest(ctx, err)
	}
	a.printf("Updated customer %d.\n", id)
	return nil
}

// DeleteCustomer removes a customer after confirmation.
func (a *App) DeleteCustomer(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		a.println(err)
		return err
	}
	ok, err := getConfirmation(a.reader, fmt.Sprintf("Delete customer %d?", id), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.crmService.DeleteCustomer(ctx, id); err != nil {
		return a.reportRequest(ctx, err)
	}
	a.printf("Deleted customer %d.\n", id)
	return nil
}

// Stats prints the CRM statistics.
func (a *App) Stats(ctx context.Context) error {
	s, err := a.crmService.Stats(ctx)
	if err != nil {
		return a.reportRequest(ctx, err)
	}

	a.printf("Customers: %d\n", s.TotalCustomers)
	a.printf("Today: %d  This week: %d  This month: %d  Last 3 months: %d\n",
		s.PeriodStats.Today, s.PeriodStats.ThisWeek, s.PeriodStats.ThisMonth, s.PeriodStats.Last3Months)
	a.printCounts("By status", s.ByStatus)
	a.printCounts("By platform", s.ByPlatform)
	return nil
}

func (a *App) printCounts(title string, m map[string]int) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	a.println(title + ":")
	for _, k := range keys {
		a.printf("  %-16s %d\n", k, m[k])
	}
}
