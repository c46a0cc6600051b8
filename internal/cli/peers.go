package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lattice-network/lattice/internal/daemon"
)

func init() {
	rootCmd.AddCommand(peersCmd)
}

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "List peers with a recorded failure history",
	RunE:  runPeers,
}

func runPeers(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	records, err := d.Peers.Records()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No peers with a failure history.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PEER\tUNUSABLE UNTIL\tFAILURES\tREASON")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			rec.PeerURI,
			rec.UnusableUntil.Format("2006-01-02 15:04:05"),
			rec.ErrorCount,
			rec.Reason,
		)
	}
	return w.Flush()
}
