package cmd

import (
	"github.com/spf13/cobra"
)

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install the cached download",
		Long: `Install applies the cached download to the project tree. The current
tree is backed up and archived first; if the replacement fails after the old
tree has been removed, the archive is restored automatically.`,
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

			res, err := eng.Install(ctx)
			if err != nil {
				return err
			}

			if out.Structured() {
				return out.Write(res)
			}
			out.Textf("Installed %s (was %s).", res.NewVersion, res.PreviousVersion)
			out.Textf("Backup %s created; run 'appup rollback' to revert.", res.BackupID)
			return nil
		},
	}
}
