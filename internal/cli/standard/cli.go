package standard

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/volantvm/bridgectl/internal/cli/client"
	"github.com/volantvm/bridgectl/internal/netdev/bridge"
	"github.com/volantvm/bridgectl/internal/network"
	"github.com/volantvm/bridgectl/internal/shared/logging"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

// bridgeOps is the surface shared by local managers and the daemon client.
type bridgeOps interface {
	CreateBridge(ctx context.Context, name string) error
	DeleteBridge(ctx context.Context, name string) error
	AddInterface(ctx context.Context, bridgeName, intf string) error
	DeleteInterface(ctx context.Context, bridgeName, intf string) error
	List(ctx context.Context) ([]network.Bridge, error)
	Close() error
}

type opener func(cmd *cobra.Command) (bridgeOps, error)

// Execute runs the Cobra-based CLI entry point.
func Execute() error {
	return newRootCmd(openOps).Execute()
}

func newRootCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bridgectl",
		Short:         "Manage Linux bridge devices",
		Long:          "bridgectl creates and destroys Linux bridges and attaches interfaces to them, either directly through the kernel or via a bridgectld daemon.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringP("api", "a", envOrDefault("BRIDGECTL_API", ""), "bridgectld base URL (empty runs against the local kernel)")
	cmd.PersistentFlags().String("backend", envOrDefault("BRIDGECTL_BACKEND", string(network.BackendIoctl)), "Local backend: ioctl, netlink or noop")
	cmd.PersistentFlags().String("sysfs-root", envOrDefault("BRIDGECTL_SYSFS_ROOT", bridge.DefaultSysfsRoot), "sysfs network class directory")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAddBridgeCmd(open))
	cmd.AddCommand(newDeleteBridgeCmd(open))
	cmd.AddCommand(newAddInterfaceCmd(open))
	cmd.AddCommand(newDeleteInterfaceCmd(open))
	cmd.AddCommand(newShowCmd(open))
	cmd.AddCommand(newJournalCmd())
	cmd.AddCommand(newWatchCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bridgectl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bridgectl %s\n", Version)
		},
	}
}

// openOps picks the daemon client when --api is set and a local manager otherwise.
func openOps(cmd *cobra.Command) (bridgeOps, error) {
	api, _ := cmd.Flags().GetString("api")
	if api != "" {
		c, err := client.New(api)
		if err != nil {
			return nil, err
		}
		return remoteOps{c}, nil
	}

	rawBackend, _ := cmd.Flags().GetString("backend")
	backend, err := network.ParseBackend(rawBackend)
	if err != nil {
		return nil, err
	}
	sysfsRoot, _ := cmd.Flags().GetString("sysfs-root")
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), "bridgectl", os.Getenv("BRIDGECTL_LOG_LEVEL"), "text")
	return network.New(backend, network.Options{SysfsRoot: sysfsRoot, Logger: logger})
}

func apiClient(cmd *cobra.Command) (*client.Client, error) {
	api, _ := cmd.Flags().GetString("api")
	return client.New(api)
}

type remoteOps struct {
	*client.Client
}

func (r remoteOps) List(ctx context.Context) ([]network.Bridge, error) {
	return r.ListBridges(ctx)
}

func (remoteOps) Close() error { return nil }
