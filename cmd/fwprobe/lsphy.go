package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/buslab/fwprobe/fwbus"
	"github.com/buslab/fwprobe/fwcdev"
	"github.com/buslab/fwprobe/oui"
	"github.com/buslab/fwprobe/phy"
)

var lsphyCmd = &cobra.Command{
	Use:   "lsphy",
	Short: "List the PHYs on a bus with their vendor and model",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		all, _ := cmd.Flags().GetBool("all")
		phyArg, _ := cmd.Flags().GetInt("phy-id")
		if phyArg < -1 || phyArg > 62 {
			die("phy-id must be between 0 and 62")
		}

		tracker := oui.NewTracker()
		atexit.Register(func() { tracker.Report(os.Stderr) })

		if all {
			nodes, err := fwcdev.Scan()
			if err != nil {
				die("%v", err)
			}
			seen := map[uint32]bool{}
			for _, n := range nodes {
				if !n.IsLocal || seen[n.Card] {
					continue
				}
				seen[n.Card] = true
				listBus(n.Path, phyArg, tracker)
			}
			return
		}

		listBus(device(), phyArg, tracker)
	},
}

// listBus identifies PHYs on the bus behind one local device file. A PHY
// that does not answer in time is skipped; the scan continues.
func listBus(path string, phyArg int, tracker *oui.Tracker) {
	ch, info, err := fwcdev.Open(path)
	if err != nil {
		die("%s: %v", path, err)
	}
	if !info.IsLocal() {
		die("%s: not a local node", path)
	}

	s := fwbus.NewSession(ch, info)
	defer s.Close()
	s.SetPollTimeout(pollTimeout())

	first, last := 0, int(info.RootPhyID())
	if phyArg >= 0 {
		first, last = phyArg, phyArg
	}

	for p := first; p <= last; p++ {
		id, err := phy.Identify(s, uint32(p))
		if err != nil {
			var timeout *fwbus.TimeoutError
			if errors.As(err, &timeout) {
				fmt.Fprintf(os.Stderr, "%d.%d: timeout\n", info.Card, p)
				continue
			}
			die("%v", err)
		}

		fmt.Printf("%d.%d: %s\n",
			info.Card, p, tracker.Describe(id.OUI, id.Model))
	}
}

func init() {
	lsphyCmd.Flags().BoolP("all", "a", false, "list all PHYs on all buses")
	lsphyCmd.Flags().IntP("phy-id", "p", -1, "list only this PHY")

	rootCmd.AddCommand(lsphyCmd)
}
