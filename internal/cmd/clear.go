package cmd

import (
	"github.com/spf13/cobra"
)

func newClearCmd() *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached downloads or backups",
	}
	clearCmd.AddCommand(newClearDownloadsCmd(), newClearBackupsCmd())
	return clearCmd
}

type clearResult struct {
	Removed int `json:"removed" yaml:"removed"`
}

func newClearDownloadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "downloads",
		Short: "Delete the download cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := newOutputWriter()
			if err != nil {
				return err
			}
			eng, _, closeEngine, err := newEngine()
			if err != nil {
				return err
			}
			defer closeEngine()

			n, err := eng.ClearDownloads()
			if err != nil {
				return err
			}

			if out.Structured() {
				return out.Write(clearResult{Removed: n})
			}
			out.Textf("Removed %d cached download(s).", n)
			return nil
		},
	}
}

func newClearBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "Delete all backups and the rollback archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := newOutputWriter()
			if err != nil {
				return err
			}
			eng, _, closeEngine, err := newEngine()
			if err != nil {
				return err
			}
			defer closeEngine()

			n, err := eng.ClearBackups()
			if err != nil {
				return err
			}

			if out.Structured() {
				return out.Write(clearResult{Removed: n})
			}
			out.Textf("Removed %d backup file(s).", n)
			return nil
		},
	}
}
