package triangulation

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"tailscale.com/tsweb"
)

// AttachAdminRoutes attaches debugging endpoints to mux under /debug/. They
// are only reachable over localhost or Tailscale.
func (r *Runner) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	debug.HandleFunc("cwlap", "records from the last Wi-Fi scan", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, rec := range r.Records() {
			io.WriteString(w, rec)
		}
	})

	debug.HandleFunc("triangulation-state", "Wi-Fi triangulation scan state", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(r.State()); err != nil {
			http.Error(w, "Failed to encode state", http.StatusInternalServerError)
		}
	})

	// Trigger an update outside the regular schedule.
	debug.HandleSilentFunc("triangulation-update", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := r.Update(); err != nil {
			http.Error(w, fmt.Sprintf("update failed (code %d): %v", CodeOf(err), err), http.StatusBadGateway)
			return
		}
		fmt.Fprintf(w, "updated: %d access points\n", r.State().AccessPointCount)
	})
}
