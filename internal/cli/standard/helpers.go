package standard

import (
	"os"

	"github.com/spf13/cobra"
)

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// withOps opens the configured backend for the duration of fn.
func withOps(cmd *cobra.Command, open opener, fn func(ops bridgeOps) error) error {
	ops, err := open(cmd)
	if err != nil {
		return err
	}
	defer ops.Close()
	return fn(ops)
}
