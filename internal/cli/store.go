package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/breathepure/internal/common"
	"github.com/spf13/cobra"
)

func newExportCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print every stored key and value as one JSON object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app().export(cmd.Context())
		},
	}
}

func newResetCommand(app func() *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every user, session and activity entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("%w: reset deletes all data, pass --yes to confirm", common.ErrValidation)
			}
			return app().reset(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all data")
	return cmd
}

// export writes the whole store. JSON values are embedded as they are,
// anything else as a string.
func (a *App) export(ctx context.Context) error {
	all, err := a.store.List(ctx)
	if err != nil {
		return err
	}

	doc := make(map[string]json.RawMessage, len(all))
	for k, v := range all {
		if json.Valid(v) {
			doc[k] = v
			continue
		}
		a.log.Warn(ctx, "exporting non-JSON value as string", "key", k)
		quoted, err := json.Marshal(string(v))
		if err != nil {
			return err
		}
		doc[k] = quoted
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

func (a *App) reset(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		return err
	}
	a.log.Info(ctx, "store cleared")
	fmt.Fprintln(a.out, "All data deleted")
	return nil
}
