package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/engine"
)

func newStatusCmd(g *Global) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check which detectors are installed and reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			statuses := engine.New(cfg, g.EngineOptions...).Status(cmd.Context())
			if asJSON {
				b, err := json.MarshalIndent(statuses, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TOOL\tKIND\tAVAILABLE\tDETAIL")
			for _, st := range statuses {
				detail := st.Detail
				if !st.Available {
					detail = st.Error
				}
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", st.Tool, st.Kind, st.Available, detail)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print status as JSON")
	return cmd
}
