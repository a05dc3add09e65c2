package cmd

import (
	"github.com/spf13/cobra"
)

func newRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Restore the project tree from the rollback archive",
		Long: `Rollback restores the tree captured before the last install. The
archive is consumed on success, so only one rollback is possible per install.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := newOutputWriter()
			if err != nil {
				return err
			}
			eng, ctx, closeEngine, err := newEngine()
			if err != nil {
				return err
			}
			defer closeEngine()

			res, err := eng.Rollback(ctx)
			if err != nil {
				return err
			}

			if out.Structured() {
				return out.Write(res)
			}
			out.Textf("Rolled back to %s.", res.RestoredVersion)
			return nil
		},
	}
}
