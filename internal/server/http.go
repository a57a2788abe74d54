package server

import (
	_ "embed"
	"log"
	"net/http"
)

//go:generate go run ./cmd/webbuild

/* ------------------------------ Embeds ------------------------------ */

//go:embed web/index.html
var htmlIndex []byte

//go:embed web/client.js
var jsClient []byte

/* ------------------------------- HTTP ------------------------------- */

func startServer(h *Hub, addr string) {
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(htmlIndex)
	})
	http.HandleFunc("/client.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = w.Write(jsClient)
	})
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(h, w, r)
	})
	http.HandleFunc("/runs.csv", func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			sessionID = "default"
		}
		runs := NewRunLog(1)
		if s := h.lookup(sessionID); s != nil {
			runs = s.Runs
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="runs.csv"`)
		if err := runs.WriteCSV(w); err != nil {
			log.Printf("runs.csv: %v", err)
		}
	})
	log.Fatal(http.ListenAndServe(addr, nil))
}
