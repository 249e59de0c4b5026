package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/One-Minute-Stack/oneminutelogs-next/pkg/oml"
)

// newSendCommand constructs the `send` command.
func newSendCommand() *cobra.Command {
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Send one event to the collector",
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, _ := cmd.Flags().GetString("type")
			message, _ := cmd.Flags().GetString("message")
			importance, _ := cmd.Flags().GetString("importance")
			subsystem, _ := cmd.Flags().GetString("subsystem")
			operation, _ := cmd.Flags().GetString("operation")
			trackJSON, _ := cmd.Flags().GetString("track-json")
			metricsJSON, _ := cmd.Flags().GetString("metrics-json")

			if message == "" {
				return fmt.Errorf("--message is required")
			}
			ev := oml.Event{
				Type:       oml.Kind(kind),
				Message:    message,
				Importance: importance,
				Subsystem:  subsystem,
				Operation:  operation,
			}
			if trackJSON != "" {
				if err := json.Unmarshal([]byte(trackJSON), &ev.Track); err != nil {
					return fmt.Errorf("invalid --track-json: %w", err)
				}
			}
			if metricsJSON != "" {
				if err := json.Unmarshal([]byte(metricsJSON), &ev.Metrics); err != nil {
					return fmt.Errorf("invalid --metrics-json: %w", err)
				}
			}

			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			c.Send(ev)
			// Close drains the buffer; delivery happens in the final flush.
			c.Close(cmd.Context())
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "status:", "OK")
			return nil
		},
	}
	sendCmd.Flags().String("type", "info", "Event type: info|warning|error|debug|success|audit|metric")
	sendCmd.Flags().StringP("message", "m", "", "Event message")
	sendCmd.Flags().String("importance", "", "Event importance")
	sendCmd.Flags().String("subsystem", "", "Originating subsystem")
	sendCmd.Flags().String("operation", "", "Operation name")
	sendCmd.Flags().String("track-json", "", "Tracking payload as JSON object")
	sendCmd.Flags().String("metrics-json", "", "Metrics payload as JSON object")
	return sendCmd
}
