package main

import (
	"github.com/spf13/cobra"

	"github.com/buslab/fwprobe/fcp"
	"github.com/buslab/fwprobe/fwbus"
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Send asynchronous transactions to the target node",
}

var readCmd = &cobra.Command{
	Use:   "read <address> [<length>]",
	Short: "Read from the target's address space",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(_ *cobra.Command, args []string) {
		address, registerLength, err := parseAddress(args[0])
		if err != nil {
			die("%v", err)
		}

		length := registerLength
		if len(args) == 2 {
			if length, err = parseLength(args[1]); err != nil {
				die("%v", err)
			}
		}
		if length == 0 {
			length = 4
		}

		req, err := fwbus.NewReadRequest(address, length)
		if err != nil {
			die("%v", err)
		}

		res := execute(req)
		printData("result: ", res.Data, uint32(len(res.Data)) == length)
	},
}

func writeCommand(use, short string, kind fwbus.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			address, registerLength, err := parseAddress(args[0])
			if err != nil {
				die("%v", err)
			}
			data, err := parseData(args[1], registerLength)
			if err != nil {
				die("%v", err)
			}

			req, err := fwbus.NewWriteRequest(kind, address, data)
			if err != nil {
				die("%v", err)
			}

			execute(req)
		},
	}
}

func lockCommand(name, short string, kind fwbus.Kind) *cobra.Command {
	use := name + " <address> <data> <data2>"
	args := cobra.ExactArgs(3)
	if !kind.HasSecondOperand() {
		use = name + " <address> <data>"
		args = cobra.ExactArgs(2)
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		Run: func(_ *cobra.Command, cmdArgs []string) {
			address, registerLength, err := parseAddress(cmdArgs[0])
			if err != nil {
				die("%v", err)
			}
			op1, err := parseData(cmdArgs[1], registerLength)
			if err != nil {
				die("%v", err)
			}
			var op2 []byte
			if kind.HasSecondOperand() {
				if op2, err = parseData(cmdArgs[2], registerLength); err != nil {
					die("%v", err)
				}
			}

			req, err := fwbus.NewLockRequest(kind, address, op1, op2)
			if err != nil {
				die("%v", err)
			}

			res := execute(req)
			printData("old: ", res.Data, true)
		},
	}
}

var fcpCmd = &cobra.Command{
	Use:   "fcp <data>",
	Short: "Send an FCP command and print the response frame",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		data, err := parseData(args[0], 0)
		if err != nil {
			die("%v", err)
		}

		s := openSession(device())
		response, err := fcp.Exchange(s, data)
		if err != nil {
			die("%v", err)
		}
		printData("response: ", response, false)
	},
}

func resetCommand(name, short string, kind fwbus.ResetKind) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			s := openSession(device())
			if err := s.InitiateBusReset(kind); err != nil {
				die("%v", err)
			}
		},
	}
}

// execute runs one addressed transaction and fails the command on any
// non-complete outcome.
func execute(req *fwbus.Request) fwbus.Result {
	s := openSession(device())

	res, err := s.Execute(req)
	if err != nil {
		die("%v", err)
	}
	if res.Status != fwbus.StatusComplete {
		die("%v", res.Status)
	}

	return res
}

func init() {
	requestCmd.AddCommand(readCmd)
	requestCmd.AddCommand(writeCommand(
		"write <address> <data>", "Write to the target's address space",
		fwbus.KindWrite))
	requestCmd.AddCommand(writeCommand(
		"broadcast <address> <data>", "Write to all nodes on the bus",
		fwbus.KindBroadcast))

	requestCmd.AddCommand(
		lockCommand("mask_swap", "Atomic mask-and-swap", fwbus.KindLockMaskSwap),
		lockCommand("compare_swap", "Atomic compare-and-swap", fwbus.KindLockCompareSwap),
		lockCommand("add", "Atomic big-endian add", fwbus.KindLockFetchAdd),
		lockCommand("add_little", "Atomic little-endian add", fwbus.KindLockLittleAdd),
		lockCommand("bounded_add", "Atomic bounded add", fwbus.KindLockBoundedAdd),
		lockCommand("wrap_add", "Atomic wrapping add", fwbus.KindLockWrapAdd),
	)

	requestCmd.AddCommand(fcpCmd)
	requestCmd.AddCommand(
		resetCommand("reset", "Initiate a short bus reset", fwbus.ShortReset),
		resetCommand("long_reset", "Initiate a long bus reset", fwbus.LongReset),
	)

	rootCmd.AddCommand(requestCmd)
}
