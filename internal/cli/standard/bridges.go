package standard

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAddBridgeCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "addbr <bridge>",
		Short: "Create a bridge device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOps(cmd, open, func(ops bridgeOps) error {
				if err := ops.CreateBridge(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "bridge %s created\n", args[0])
				return nil
			})
		},
	}
}

func newDeleteBridgeCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "delbr <bridge>",
		Short: "Destroy a bridge device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOps(cmd, open, func(ops bridgeOps) error {
				if err := ops.DeleteBridge(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "bridge %s deleted\n", args[0])
				return nil
			})
		},
	}
}

func newAddInterfaceCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "addif <bridge> <interface>",
		Short: "Attach an interface to a bridge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOps(cmd, open, func(ops bridgeOps) error {
				if err := ops.AddInterface(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "interface %s attached to %s\n", args[1], args[0])
				return nil
			})
		},
	}
}

func newDeleteInterfaceCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "delif <bridge> <interface>",
		Short: "Detach an interface from a bridge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOps(cmd, open, func(ops bridgeOps) error {
				if err := ops.DeleteInterface(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "interface %s detached from %s\n", args[1], args[0])
				return nil
			})
		},
	}
}

func newShowCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List bridges and their interfaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOps(cmd, open, func(ops bridgeOps) error {
				items, err := ops.List(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "BRIDGE\tINTERFACES")
				for _, br := range items {
					if len(br.Ports) == 0 {
						fmt.Fprintf(w, "%s\t\n", br.Name)
						continue
					}
					for i, port := range br.Ports {
						name := br.Name
						if i > 0 {
							name = ""
						}
						fmt.Fprintf(w, "%s\t%s\n", name, port)
					}
				}
				return w.Flush()
			})
		},
	}
}
