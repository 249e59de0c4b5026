package client

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/One-Minute-Stack/oneminutelogs-next/pkg/oml"
)

// newTailCommand constructs the `tail` command.
func newTailCommand() *cobra.Command {
	tailCmd := &cobra.Command{
		Use:   "tail [key=value ...]",
		Short: "Follow the live record stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseFilters(args)
			if err != nil {
				return err
			}
			expr, _ := cmd.Flags().GetString("filter")
			window, _ := cmd.Flags().GetInt("window")
			limit, _ := cmd.Flags().GetInt("limit")

			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())

			sub, err := c.Stream(cmd.Context(), oml.StreamOptions{
				Filters:    filters,
				Filter:     expr,
				WindowSize: window,
			})
			if err != nil {
				return err
			}
			defer sub.Disconnect()

			enc := json.NewEncoder(cmd.OutOrStdout())
			printed := 0
			lastID := ""
			ticker := time.NewTicker(200 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case <-sub.Done():
					return sub.Err()
				case <-ticker.C:
				}
				for _, rec := range sub.Records() {
					// Record identities are ordered by arrival.
					if rec.ID <= lastID {
						continue
					}
					lastID = rec.ID
					_ = enc.Encode(tailLine{
						TS:      rec.TS,
						Level:   rec.Level,
						Source:  rec.Source,
						Message: rec.Message,
						Payload: rec.Raw,
					})
					printed++
					if limit > 0 && printed >= limit {
						return nil
					}
				}
			}
		},
	}
	tailCmd.Flags().String("filter", "", "CEL filter evaluated client-side, e.g. 'level == \"error\"'")
	tailCmd.Flags().Int("window", 0, "Retained record window size (0 = default)")
	tailCmd.Flags().Int("limit", 0, "Stop after N records (0 = infinite)")
	return tailCmd
}

type tailLine struct {
	TS      string          `json:"ts"`
	Level   string          `json:"level"`
	Source  string          `json:"source"`
	Message string          `json:"message"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
