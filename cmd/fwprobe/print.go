package main

import (
	"fmt"

	"github.com/buslab/fwprobe/fwbus"
)

// printData renders a payload. Register-sized payloads print as one
// big-endian value when allowValue is set; everything else gets a hex and
// ASCII dump, sixteen bytes per line.
func printData(prefix string, data []byte, allowValue bool) {
	if allowValue {
		if v, ok := (fwbus.Result{Data: data}).Value(); ok {
			fmt.Printf("%s%s\n", prefix, v)
			return
		}
	}

	for line := 0; line < len(data); line += 16 {
		end := line + 16
		if end > len(data) {
			end = len(data)
		}

		fmt.Printf("%s%03x:", prefix, line)
		for col := line; col < end; col++ {
			fmt.Printf(" %02x", data[col])
		}
		fmt.Printf("%*s", 1+(line+16-end)*3, "")
		for col := line; col < end; col++ {
			if data[col] >= 32 && data[col] < 127 {
				fmt.Printf("%c", data[col])
			} else {
				fmt.Print(".")
			}
		}
		fmt.Println()
	}
}
