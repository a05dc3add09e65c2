package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jjgreer/appup/internal/engine"
	"github.com/jjgreer/appup/internal/manifest"
)

type statusReport struct {
	Version   string                  `json:"version" yaml:"version"`
	Operation engine.Operation        `json:"operation" yaml:"operation"`
	Downloads []engine.DownloadRecord `json:"downloads" yaml:"downloads"`
	Rollback  engine.RollbackInfo     `json:"rollback" yaml:"rollback"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the installed version, cached downloads, and rollback state",
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

			man, err := manifest.LoadDir(eng.Root())
			if err != nil {
				return err
			}
			rep := statusReport{
				Version:   man.Version.String(),
				Operation: eng.State(),
				Downloads: eng.Downloads(),
				Rollback:  eng.GetRollbackInfo(),
			}

			if out.Structured() {
				return out.Write(rep)
			}
			out.Textf("Installed version: %s", rep.Version)
			out.Textf("Engine state:      %s", rep.Operation)
			if len(rep.Downloads) == 0 {
				out.Textf("Cached download:   none")
			}
			for _, d := range rep.Downloads {
				out.Textf("Cached download:   %s (%d bytes)", d.Version, d.SizeBytes)
			}
			if rep.Rollback.Available {
				out.Textf("Rollback:          available, restores %s", rep.Rollback.Version)
			} else {
				out.Textf("Rollback:          not available")
			}
			return nil
		},
	}
}
