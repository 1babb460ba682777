package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/breathepure/internal/models"
	"github.com/dmitrijs2005/breathepure/internal/readings"
	"github.com/spf13/cobra"
)

func newREPLCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive console (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app().RunREPL(cmd.Context())
			return nil
		},
	}
}

func newUsersCommand(app func() *App) *cobra.Command {
	var withLogs, watch bool

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List registered users with online status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if watch {
				return a.watch(cmd.Context(), func(list []models.UserSummary) {
					writeUsers(a.out, list, withLogs)
				})
			}
			return a.printUsers(cmd.Context(), withLogs)
		},
	}
	cmd.Flags().BoolVarP(&withLogs, "logs", "l", false, "also print each user's merged activity log")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "refresh every --refresh-interval until interrupted")
	return cmd
}

func newActiveCommand(app func() *App) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "active",
		Short: "List users that are logged in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if watch {
				return a.watch(cmd.Context(), func(list []models.UserSummary) {
					online := 0
					for _, u := range list {
						if u.IsLoggedIn {
							fmt.Fprintln(a.out, u.Email)
							online++
						}
					}
					fmt.Fprintf(a.out, "%d of %d users online\n", online, len(list))
				})
			}
			return a.printActive(cmd.Context())
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "refresh every --refresh-interval until interrupted")
	return cmd
}

func newFeedCommand(app func() *App) *cobra.Command {
	var (
		limit int
		user  string
	)

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Print the global activity feed, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app().printFeed(cmd.Context(), limit, user)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "print at most n entries (0 prints all)")
	cmd.Flags().StringVarP(&user, "user", "u", "", "only print the entries of this email")
	return cmd
}

func newReadingsCommand(app func() *App) *cobra.Command {
	var (
		count  int
		trends bool
	)

	cmd := &cobra.Command{
		Use:   "readings",
		Short: "Stream simulated sensor readings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if trends {
				if err := a.Trends(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(a.out)
			}
			return a.streamReadings(cmd.Context(), count)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of readings to print (0 streams until interrupted)")
	cmd.Flags().BoolVarP(&trends, "trends", "t", false, "print the hour, day and week trend summary first")
	return cmd
}

// watch redraws the admin view every refresh interval until ctx is done.
func (a *App) watch(ctx context.Context, draw func([]models.UserSummary)) error {
	a.admin.Watch(ctx, a.config.RefreshInterval, func(list []models.UserSummary, err error) {
		fmt.Fprintf(a.out, "-- %s --\n", time.Now().Format(time.TimeOnly))
		if err != nil {
			fmt.Fprintln(a.out, "Error:", describe(err))
			a.log.Error(ctx, "admin refresh failed", "error", err)
			return
		}
		draw(list)
	})
	return nil
}

// streamReadings prints count readings (0 means until ctx is done), one
// every readings interval.
func (a *App) streamReadings(ctx context.Context, count int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make(chan readings.Reading)
	go a.sim.Run(ctx, a.config.ReadingsInterval, out)

	n := 0
	for r := range out {
		if n > 0 {
			fmt.Fprintln(a.out)
		}
		a.showReading(ctx, r)
		n++
		if count > 0 && n >= count {
			break
		}
	}
	return nil
}
