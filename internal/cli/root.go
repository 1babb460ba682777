package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/breathepure/internal/config"
	"github.com/dmitrijs2005/breathepure/internal/logging"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the breathe command tree. Every command shares the
// persistent configuration flags; the App is wired once the flags are parsed.
func NewRootCommand() *cobra.Command {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	var app *App
	getApp := func() *App { return app }

	root := &cobra.Command{
		Use:   "breathe",
		Short: "Breathe Pure air purifier console",
		Long: `Breathe Pure keeps user accounts, sessions and activity logs in a local
key/value store and shows simulated air-quality readings.

Run without a subcommand to start the interactive console. The users,
active and feed subcommands print the admin view directly from the store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Resolve(cfg, cmd.Flags()); err != nil {
				return err
			}
			logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			log := logger.With("op_id", uuid.NewString(), "command", cmd.Name())

			app, err = NewApp(cmd.Context(), cfg, log, cmd.InOrStdin(), cmd.OutOrStdout())
			return err
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.RunREPL(cmd.Context())
			return nil
		},
	}
	config.BindFlags(root.PersistentFlags(), cfg)

	root.AddCommand(
		newREPLCommand(getApp),
		newUsersCommand(getApp),
		newActiveCommand(getApp),
		newFeedCommand(getApp),
		newReadingsCommand(getApp),
		newExportCommand(getApp),
		newResetCommand(getApp),
	)
	return root
}

// Execute runs the command tree until it finishes or the process is
// interrupted, and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
