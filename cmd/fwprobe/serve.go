package main

import (
	"github.com/spf13/cobra"

	"github.com/buslab/fwprobe/fwcdev"
	"github.com/buslab/fwprobe/monitor"
	"github.com/buslab/fwprobe/trace"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve bus scan results and recorded transactions over HTTP",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		port, _ := cmd.Flags().GetInt("port")
		open, _ := cmd.Flags().GetBool("open")

		m := monitor.NewMonitor().WithPortNumber(port)
		m.RegisterScanner(scanNodes)

		if path, ok := tracePath(); ok {
			rec, err := trace.New(path)
			if err != nil {
				die("%v", err)
			}
			m.RegisterRecorder(rec)
		}

		m.StartServer(open)
		select {} // serve until interrupted
	},
}

func scanNodes() ([]monitor.NodeInfo, error) {
	nodes, err := fwcdev.Scan()
	if err != nil {
		return nil, err
	}

	out := make([]monitor.NodeInfo, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, monitor.NodeInfo{
			Path:    n.Path,
			Card:    n.Card,
			NodeID:  n.NodeID,
			IsLocal: n.IsLocal,
		})
	}
	return out, nil
}

func init() {
	serveCmd.Flags().Int("port", 0, "listening port (default random)")
	serveCmd.Flags().Bool("open", false, "open the URL in a browser")

	rootCmd.AddCommand(serveCmd)
}
