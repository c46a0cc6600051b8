package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lattice-network/lattice/internal/daemon"
	"github.com/lattice-network/lattice/internal/infra/peerdb"
)

func init() {
	rootCmd.AddCommand(forgetCmd)
}

var forgetCmd = &cobra.Command{
	Use:   "forget URI",
	Short: "Clear the failure record for a peer, re-admitting it immediately",
	Args:  cobra.ExactArgs(1),
	RunE:  runForget,
}

func runForget(cmd *cobra.Command, args []string) error {
	uri := args[0]

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Peers.Forget(peerdb.RawURI(uri)); err != nil {
		return err
	}

	fmt.Printf("Forgot %s\n", uri)
	return nil
}
