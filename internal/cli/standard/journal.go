package standard

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/volantvm/bridgectl/internal/cli/client"
)

func newJournalCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent operations recorded by bridgectld",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := apiClient(cmd)
			if err != nil {
				return err
			}
			entries, err := c.Journal(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tOP\tBRIDGE\tINTERFACE\tRESULT")
			for _, e := range entries {
				result := "ok"
				if !e.Success {
					result = e.Error
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.CreatedAt.Format(time.RFC3339), e.Op, e.Bridge, e.Interface, result)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	return cmd
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream bridge events from bridgectld",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := apiClient(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return c.WatchEvents(cmd.Context(), func(ev client.BridgeEvent) {
				line := fmt.Sprintf("%s %s %s", ev.Timestamp.Format(time.RFC3339), ev.Type, ev.Bridge)
				if ev.Interface != "" {
					line += " " + ev.Interface
				}
				if ev.Message != "" {
					line += ": " + ev.Message
				}
				fmt.Fprintln(out, line)
			})
		},
	}
}
