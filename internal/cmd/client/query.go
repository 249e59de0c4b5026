package client

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// newQueryCommand constructs the `query` command.
func newQueryCommand() *cobra.Command {
	queryCmd := &cobra.Command{
		Use:   "query [key=value ...]",
		Short: "Query stored records",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseFilters(args)
			if err != nil {
				return err
			}
			fresh, _ := cmd.Flags().GetBool("fresh")

			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())

			fetch := c.Get
			if fresh {
				fetch = c.Refetch
			}
			records, err := fetch(cmd.Context(), filters)
			if err != nil {
				return err
			}

			var out struct {
				Count   int               `json:"count"`
				Records []json.RawMessage `json:"records"`
			}
			out.Count = len(records)
			out.Records = records
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	queryCmd.Flags().Bool("fresh", false, "Bypass the result cache")
	return queryCmd
}
