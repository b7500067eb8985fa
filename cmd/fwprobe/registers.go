package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buslab/fwprobe/csr"
)

var registersCmd = &cobra.Command{
	Use:   "registers",
	Short: "List the known register names",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println("address    length name")
		for _, row := range csr.Rows(verbose) {
			fmt.Printf("%012x %4x %s\n", row.Address, row.Length, row.Name)
		}
	},
}

func init() {
	rootCmd.AddCommand(registersCmd)
}
