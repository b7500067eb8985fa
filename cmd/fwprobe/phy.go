package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/buslab/fwprobe/fwbus"
	"github.com/buslab/fwprobe/fwcdev"
	"github.com/buslab/fwprobe/phy"
)

var busFlag string

var phyCmd = &cobra.Command{
	Use:   "phy",
	Short: "Send PHY control packets through a local node",
}

// phySession opens a session on the local node of the selected bus. When
// target names a device file, its card overrides the bus selection and its
// PHY id becomes the target id.
func phySession(target string) (*fwbus.Session, uint32) {
	nodes, err := fwcdev.Scan()
	if err != nil {
		die("%v", err)
	}

	bus := busFlag
	var phyID uint32
	if target != "" {
		id, card, err := fwcdev.ResolvePhy(nodes, target)
		if err != nil {
			die("%v", err)
		}
		phyID = id
		if card >= 0 {
			bus = strconv.Itoa(card)
		}
	}

	local, err := fwcdev.FindLocal(nodes, bus)
	if err != nil {
		die("%v", err)
	}

	return openSession(local.Path), phyID
}

var phyConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Broadcast a force-root / gap-count configuration packet",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		root, _ := cmd.Flags().GetString("root")
		gapCount, _ := cmd.Flags().GetInt("gapcount")

		rootPhyID := -1
		s, phyID := phySession(root)
		if root != "" {
			rootPhyID = int(phyID)
		}

		if err := phy.Configure(s, rootPhyID, gapCount); err != nil {
			die("%v", err)
		}
	},
}

var phyPingCmd = &cobra.Command{
	Use:   "ping <node>",
	Short: "Measure the round-trip time to a PHY",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		s, phyID := phySession(args[0])

		result, err := phy.Ping(s, phyID)
		if err != nil {
			die("%v", err)
		}

		fmt.Printf("time: %d ticks (%d ns), %s\n",
			result.Ticks, result.Nanoseconds(), result.Chain)
	},
}

var phyReadCmd = &cobra.Command{
	Use:   "read <node> [<page> <port>] <register>",
	Short: "Read a PHY register, optionally through the page mechanism",
	Args:  cobra.RangeArgs(2, 4),
	Run: func(_ *cobra.Command, args []string) {
		if len(args) == 3 {
			die("missing register number")
		}

		s, phyID := phySession(args[0])

		var value uint8
		var err error
		if len(args) == 2 {
			var reg uint64
			if reg, err = strconv.ParseUint(args[1], 0, 32); err != nil {
				die("invalid register number %q", args[1])
			}
			value, err = phy.ReadRegister(s, phyID, uint32(reg))
		} else {
			numbers := make([]uint32, 3)
			for i, arg := range args[1:] {
				n, convErr := strconv.ParseUint(arg, 0, 32)
				if convErr != nil {
					die("invalid number %q", arg)
				}
				numbers[i] = uint32(n)
			}
			value, err = phy.ReadPagedRegister(
				s, phyID, numbers[0], numbers[1], numbers[2])
		}
		if err != nil {
			die("%v", err)
		}

		fmt.Printf("value: 0x%02x\n", value)
	},
}

func portCommand(name, short string, op phy.PortOp) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <node> <port>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			runPortCommand(args[0], args[1], op)
		},
	}
}

func runPortCommand(node, port string, op phy.PortOp) {
	portNumber, err := strconv.ParseUint(port, 0, 32)
	if err != nil {
		die("invalid port number %q", port)
	}

	s, phyID := phySession(node)
	status, err := phy.PortCommand(s, phyID, uint32(portNumber), op)
	if err != nil {
		die("%v", err)
	}

	if !status.Accepted {
		fmt.Println(status)
	} else {
		fmt.Printf("port status: %s\n", status)
	}
}

var phyResumeCmd = &cobra.Command{
	Use:   "resume [<node> <port>]",
	Short: "Resume one port, or every suspended port on the bus",
	Args:  cobra.RangeArgs(0, 2),
	Run: func(_ *cobra.Command, args []string) {
		if len(args) == 2 {
			runPortCommand(args[0], args[1], phy.PortResume)
			return
		}
		if len(args) == 1 {
			die("missing port number")
		}

		s, _ := phySession("")
		if err := phy.ResumeAll(s); err != nil {
			die("%v", err)
		}
	},
}

var phyLinkOnCmd = &cobra.Command{
	Use:     "linkon <node>",
	Aliases: []string{"link-on", "link_on"},
	Short:   "Ask a PHY to power up its link layer",
	Args:    cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		s, phyID := phySession(args[0])
		if err := phy.LinkOn(s, phyID); err != nil {
			die("%v", err)
		}
	},
}

var phyVersaCmd = &cobra.Command{
	Use:   "versaphy <quadlet0> <quadlet1>",
	Short: "Send a raw VersaPHY quadlet pair",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		quadlets := make([]uint32, 2)
		for i, arg := range args {
			q, err := strconv.ParseUint(arg, 16, 32)
			if err != nil {
				die("invalid data quadlet %q", arg)
			}
			quadlets[i] = uint32(q)
		}

		s, _ := phySession("")
		if err := phy.SendVersaPhy(s, quadlets[0], quadlets[1]); err != nil {
			die("%v", err)
		}
	},
}

var phyResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Initiate a short bus reset on the selected bus",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		s, _ := phySession("")
		if err := s.InitiateBusReset(fwbus.ShortReset); err != nil {
			die("%v", err)
		}
	},
}

func init() {
	phyCmd.PersistentFlags().StringVarP(&busFlag, "bus", "b", "",
		"bus to send packets on: a card number or a device file")

	phyConfigCmd.Flags().String("root", "", "node that should become root")
	phyConfigCmd.Flags().Int("gapcount", -1, "gap count to broadcast (0..63)")

	phyCmd.AddCommand(
		phyConfigCmd,
		phyPingCmd,
		phyReadCmd,
		portCommand("nop", "Send a no-op port command", phy.PortNop),
		portCommand("disable", "Disable a port", phy.PortDisable),
		portCommand("suspend", "Suspend a port", phy.PortSuspend),
		portCommand("clear", "Clear a port's fault bit", phy.PortClear),
		portCommand("enable", "Enable a port", phy.PortEnable),
		phyResumeCmd,
		portCommand("standby", "Put a port into standby", phy.PortStandby),
		portCommand("restore", "Restore a port from standby", phy.PortRestore),
		phyLinkOnCmd,
		phyVersaCmd,
		phyResetCmd,
	)

	rootCmd.AddCommand(phyCmd)
}
