package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/scoring"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/tools"
)

func newMappingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mappings",
		Short: "Print the tool-to-finding translation tables and remediations",
		RunE: func(cmd *cobra.Command, args []string) error {
			tables := tools.Tables()
			tables = append(tables, remediationTable())
			w := cmd.OutOrStdout()
			for i, t := range tables {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "# %s\n", t.Name)
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				for _, row := range t.Rows {
					fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func remediationTable() tools.Table {
	keys := make([]string, 0, len(scoring.Remediations))
	for k := range scoring.Remediations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	t := tools.Table{Name: "finding type -> remediation"}
	for _, k := range keys {
		t.Rows = append(t.Rows, [2]string{k, scoring.Remediations[k]})
	}
	t.Rows = append(t.Rows, [2]string{"(other)", scoring.GenericRemediation})
	return t
}
