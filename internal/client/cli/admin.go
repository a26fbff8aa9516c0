package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fbellini/daybook-server/internal/client/api"
)

// Accounts prints the account directory. Master only; others get a 403
// from the server.
func (a *App) Accounts(ctx context.Context) error {
	accounts, err := a.client.ListAccounts(ctx)
	if err != nil {
		a.reportError(err)
		return err
	}

	for _, acc := range accounts {
		printlnFn(fmt.Sprintf("%s  %-20s %-30s %s", acc.ID, acc.Handle, acc.Email, acc.Status))
	}
	return nil
}

// Register creates a new account.
func (a *App) Register(ctx context.Context) error {
	handle, err := GetSimpleText(a.reader, "New username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}

	created, err := a.client.CreateAccount(ctx, handle, string(password))
	if err != nil {
		a.reportError(err)
		return err
	}
	printlnFn("Created account", created.Handle, "with email", created.Email)
	return nil
}

// SetStatus blocks or unblocks an account.
func (a *App) SetStatus(ctx context.Context, status string) error {
	id, err := GetSimpleText(a.reader, "Account ID", os.Stdout)
	if err != nil {
		return err
	}

	updated, err := a.client.SetAccountStatus(ctx, id, status)
	if err != nil {
		a.reportError(err)
		return err
	}
	printlnFn("Account", updated.Handle, "is now", updated.Status)
	return nil
}

// DeleteAccount removes an account together with its reports.
func (a *App) DeleteAccount(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Account ID", os.Stdout)
	if err != nil {
		return err
	}
	confirm, err := GetSimpleText(a.reader, "This removes the account and all its reports. Type 'yes' to continue", os.Stdout)
	if err != nil {
		return err
	}
	if confirm != "yes" {
		printlnFn("Cancelled.")
		return nil
	}

	if err := a.client.DeleteAccount(ctx, id); err != nil {
		a.reportError(err)
		return err
	}
	printlnFn("Deleted.")
	return nil
}

// Search runs the administrator filter. Empty answers leave a criterion
// out; present criteria must all match.
func (a *App) Search(ctx context.Context) error {
	owners, err := GetSimpleText(a.reader, "Owner account IDs, comma-separated (empty for all)", os.Stdout)
	if err != nil {
		return err
	}
	date, err := GetSimpleText(a.reader, "Date YYYY-MM-DD (empty for any)", os.Stdout)
	if err != nil {
		return err
	}
	keyword, err := GetSimpleText(a.reader, "Keyword (empty for any)", os.Stdout)
	if err != nil {
		return err
	}

	filter := api.SearchFilter{Date: date, Keyword: keyword}
	for _, raw := range strings.Split(owners, ",") {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			filter.OwnerIDs = append(filter.OwnerIDs, trimmed)
		}
	}

	results, err := a.client.SearchReports(ctx, filter)
	if err != nil {
		a.reportError(err)
		return err
	}

	if len(results) == 0 {
		printlnFn("No reports match.")
		return nil
	}
	for _, res := range results {
		line := fmt.Sprintf("%s  %-20s %s", res.ID, res.Author.Handle, res.Title)
		if res.Date != "" {
			line += fmt.Sprintf("  [%s]", res.Date)
		}
		printlnFn(line)
	}
	return nil
}
