// Package monitor exposes bus scan results, the register table, and recent
// recorded transactions over HTTP for inspection.
package monitor

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"

	"github.com/buslab/fwprobe/csr"
	"github.com/buslab/fwprobe/trace"
)

// NodeInfo is one scanned bus node as reported by the API.
type NodeInfo struct {
	Path    string `json:"path"`
	Card    uint32 `json:"card"`
	NodeID  uint32 `json:"nodeId"`
	IsLocal bool   `json:"isLocal"`
}

// A Monitor serves the inspection API.
type Monitor struct {
	portNumber int
	scan       func() ([]NodeInfo, error)
	recorder   *trace.Recorder
}

// NewMonitor creates an empty monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the listening port. Ports below 1000 are rejected and
// replaced with a random one.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is not allowed for the monitoring server. "+
				"Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterScanner sets the function that enumerates bus nodes.
func (m *Monitor) RegisterScanner(scan func() ([]NodeInfo, error)) {
	m.scan = scan
}

// RegisterRecorder attaches the transaction recorder whose rows the API
// reports.
func (m *Monitor) RegisterRecorder(r *trace.Recorder) {
	m.recorder = r
}

// StartServer starts serving in the background and optionally opens the
// URL in a browser.
func (m *Monitor) StartServer(openBrowser bool) {
	r := mux.NewRouter()
	r.HandleFunc("/api/nodes", m.listNodes)
	r.HandleFunc("/api/registers", m.listRegisters)
	r.HandleFunc("/api/transactions", m.listTransactions)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring bus with %s\n", url)

	go func() {
		dieOnErr(http.Serve(listener, r))
	}()

	if openBrowser {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "cannot open browser: %v\n", err)
		}
	}
}

func (m *Monitor) listNodes(w http.ResponseWriter, _ *http.Request) {
	if m.scan == nil {
		http.Error(w, "no scanner registered", http.StatusNotFound)
		return
	}

	nodes, err := m.scan()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, nodes)
}

func (m *Monitor) listRegisters(w http.ResponseWriter, r *http.Request) {
	verbose := r.URL.Query().Get("verbose") != ""

	type register struct {
		Address string `json:"address"`
		Length  uint32 `json:"length"`
		Name    string `json:"name"`
	}

	var out []register
	for _, row := range csr.Rows(verbose) {
		out = append(out, register{
			Address: fmt.Sprintf("%012x", row.Address),
			Length:  row.Length,
			Name:    row.Name,
		})
	}

	writeJSON(w, out)
}

func (m *Monitor) listTransactions(w http.ResponseWriter, r *http.Request) {
	if m.recorder == nil {
		http.Error(w, "no recorder registered", http.StatusNotFound)
		return
	}

	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	rows, err := m.recorder.Recent(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, rows)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(v)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
