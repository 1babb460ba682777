package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/breathepure/internal/models"
)

// Users prints every registered user (admin only).
func (a *App) Users(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	return a.printUsers(ctx, false)
}

// Active prints the users that are online (admin only).
func (a *App) Active(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	return a.printActive(ctx)
}

// Feed prints the global activity feed (admin only).
func (a *App) Feed(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	return a.printFeed(ctx, 0, "")
}

// Logs prints the logged in user's own activity log.
func (a *App) Logs(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if a.isAdmin() {
		return a.printFeed(ctx, 0, "")
	}
	rec, err := a.users.Get(ctx, a.identity.Email)
	if err != nil {
		return err
	}
	if len(rec.Logs) == 0 {
		fmt.Fprintln(a.out, "No activity yet")
		return nil
	}
	for _, e := range rec.Logs {
		printEntry(a.out, "", e)
	}
	return nil
}

func (a *App) printUsers(ctx context.Context, withLogs bool) error {
	list, err := a.admin.ListUsers(ctx)
	if err != nil {
		return err
	}
	writeUsers(a.out, list, withLogs)
	return nil
}

func (a *App) printActive(ctx context.Context) error {
	emails, err := a.admin.ActiveUsers(ctx)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		fmt.Fprintln(a.out, "No users online")
		return nil
	}
	for _, e := range emails {
		fmt.Fprintln(a.out, e)
	}
	return nil
}

// printFeed prints at most limit feed entries; 0 prints all. A non-empty
// email keeps only that user's entries.
func (a *App) printFeed(ctx context.Context, limit int, email string) error {
	var (
		entries []models.AdminLogEntry
		err     error
	)
	if email != "" {
		entries, err = a.feed.ForUser(ctx, email)
	} else {
		entries, err = a.feed.List(ctx)
	}
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No activity yet")
		return nil
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for _, e := range entries {
		printEntry(a.out, e.Email, e.Entry())
	}
	return nil
}

func writeUsers(w io.Writer, list []models.UserSummary, withLogs bool) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No registered users")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EMAIL\tNAME\tDEVICE\tSTATUS\tLAST ACTIVE\tLOGS")
	for _, u := range list {
		status := "offline"
		if u.IsLoggedIn {
			status = "online"
		}
		last := "-"
		if u.LastActive != nil {
			last = models.FormatTime(*u.LastActive)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", u.Email, u.UserName, u.DeviceName, status, last, len(u.Logs))
	}
	tw.Flush()

	if !withLogs {
		return
	}
	for _, u := range list {
		if len(u.Logs) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", u.Email)
		for _, e := range u.Logs {
			printEntry(w, "", e)
		}
	}
}

func printEntry(w io.Writer, email string, e models.LogEntry) {
	if email != "" {
		fmt.Fprintf(w, "%s  %-6s  %s  %s\n", e.Time, e.Level, email, e.Event)
		return
	}
	fmt.Fprintf(w, "%s  %-6s  %s\n", e.Time, e.Level, e.Event)
}
