package cmd

import (
	"github.com/spf13/cobra"
)

func newDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Download the resolved target release",
		Long: `Download fetches the asset for the version resolved by check into the
local cache, replacing any previously cached download. Run check first in the
same invocation chain; download refuses to guess a target on its own.`,
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

			// A fresh process has no plan; resolve one before fetching.
			if _, err := eng.Check(ctx); err != nil {
				return err
			}
			res, err := eng.Download(ctx)
			if err != nil {
				return err
			}

			if out.Structured() {
				return out.Write(res)
			}
			out.Textf("Downloaded %s (%d bytes) to %s", res.Version, res.SizeBytes, res.Path)
			if res.Intermediate {
				out.Textf("Note: %s is an intermediate release, not the latest.", res.Version)
			}
			return nil
		},
	}
}
