package cmd

import (
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Resolve the next safe upgrade target",
		Long: `Check queries the release source and resolves which version to install
next, honoring minimum-version constraints declared in release notes. When the
latest release requires a newer baseline than the installed version, check
targets the intermediate stepping-stone release instead.`,
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

			plan, err := eng.Check(ctx)
			if err != nil {
				return err
			}

			if out.Structured() {
				return out.Write(plan)
			}
			if !plan.UpdateAvailable {
				out.Textf("Already up to date (%s).", plan.Current)
			} else if plan.LatestCompatible {
				out.Textf("Update available: %s -> %s", plan.Current, plan.Target)
			} else {
				out.Textf("Update available: %s -> %s (stepping stone; latest %s requires %s)",
					plan.Current, plan.Target, plan.Latest, plan.MinimumVersion)
			}
			if plan.Downloaded {
				out.Textf("Target %s is already downloaded; run 'appup install'.", plan.Target)
			}
			return nil
		},
	}
}
