// Command veracity-server exposes the fake-news detector as a JSON REST API.
//
// Endpoints:
//
//	POST /api/classify          body: {"source":"...","text":"..."} or {"html":"..."}
//	GET  /api/verdicts?limit=N&source=S
//	GET  /api/verdicts/{id}
//	GET  /api/stats
//	GET  /api/model
//	GET  /api/healthz
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/veracitylab/veracity/pkg/veracity"
	"github.com/veracitylab/veracity/pkg/veracity/config"
	"github.com/veracitylab/veracity/pkg/veracity/internalerr"
	"github.com/veracitylab/veracity/pkg/veracity/store"
)

// maxBodyBytes caps classify request bodies at 1 MiB
const maxBodyBytes = 1 << 20

// ---- JSON request/response types ----------------------------------------

type classifyRequest struct {
	Source string `json:"source"`
	Text   string `json:"text"`
	HTML   string `json:"html"`
}

type verdictListResponse struct {
	Verdicts []store.Verdict `json:"verdicts"`
	Count    int             `json:"count"`
}

type modelResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	TrainedAt string `json:"trained_at,omitempty"`
	Features  int    `json:"features"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ---- helpers ------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// ---- handlers -----------------------------------------------------------

func handleClassify(d *veracity.Detector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				writeError(w, http.StatusRequestEntityTooLarge, "request body over 1 MiB")
				return
			}
			writeError(w, http.StatusBadRequest, "body must be JSON")
			return
		}
		if req.Text == "" && req.HTML == "" {
			writeError(w, http.StatusBadRequest, "body needs a non-empty 'text' or 'html' field")
			return
		}

		verdict, err := d.Classify(r.Context(), veracity.Input{
			Source: req.Source,
			Text:   req.Text,
			HTML:   req.HTML,
		})
		if err != nil {
			log.Printf("classify: %v", err)
			writeError(w, http.StatusInternalServerError, "classification failed")
			return
		}
		writeJSON(w, http.StatusOK, verdict)
	}
}

func handleVerdicts(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}

		opts := store.ListOptions{Source: r.URL.Query().Get("source")}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "'limit' must be an integer")
				return
			}
			opts.Limit = limit
		}

		verdicts, err := st.ListVerdicts(r.Context(), opts)
		if err != nil {
			log.Printf("list verdicts: %v", err)
			writeError(w, http.StatusInternalServerError, "listing failed")
			return
		}
		if verdicts == nil {
			verdicts = []store.Verdict{}
		}
		writeJSON(w, http.StatusOK, verdictListResponse{Verdicts: verdicts, Count: len(verdicts)})
	}
}

func handleVerdictByID(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}

		id := strings.TrimPrefix(r.URL.Path, "/api/verdicts/")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusBadRequest, "missing verdict id")
			return
		}

		verdict, err := st.GetVerdict(r.Context(), id)
		if errors.Is(err, internalerr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "verdict not found")
			return
		}
		if err != nil {
			log.Printf("get verdict: %v", err)
			writeError(w, http.StatusInternalServerError, "lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, verdict)
	}
}

func handleStats(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}

		stats, err := st.Stats(r.Context())
		if err != nil {
			log.Printf("stats: %v", err)
			writeError(w, http.StatusInternalServerError, "stats failed")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func handleModel(d *veracity.Detector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}

		b := d.Bundle()
		writeJSON(w, http.StatusOK, modelResponse{
			Name:      b.Name,
			Version:   b.Version,
			TrainedAt: b.TrainedAt,
			Features:  b.Features(),
		})
	}
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func newMux(d *veracity.Detector, st store.Store) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/classify", handleClassify(d))
	mux.HandleFunc("/api/verdicts/", handleVerdictByID(st))
	mux.HandleFunc("/api/verdicts", handleVerdicts(st))
	mux.HandleFunc("/api/stats", handleStats(st))
	mux.HandleFunc("/api/model", handleModel(d))
	mux.HandleFunc("/api/healthz", handleHealthz)
	return mux
}

// ---- main ---------------------------------------------------------------

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		modelPath  = flag.String("model", "", "Model bundle JSON file (overrides config)")
		dbPath     = flag.String("db", "", "SQLite database path (overrides config)")
		addr       = flag.String("addr", "", "Listen address (overrides config)")
	)
	flag.Parse()

	ctx := context.Background()

	// Load configuration components
	loader := &config.Loader{
		ConfigPath: *configPath,
		ModelPath:  *modelPath,
		DBPath:     *dbPath,
	}
	components, err := loader.Load(ctx)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if components.Detector == nil {
		log.Fatal("A model is required: pass --model or set model.path in the config file")
	}
	if components.Store == nil {
		log.Fatal("A verdict store is required: pass --db or set store.driver to sqlite or memory")
	}
	defer components.Detector.Close()

	listenAddr := components.Config.Server.Addr
	if *addr != "" {
		listenAddr = *addr
	}

	var handler http.Handler = newMux(components.Detector, components.Store)
	if origins := components.Config.Server.AllowedOrigins; len(origins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		}).Handler(handler)
	}

	srv := &http.Server{
		Addr:    listenAddr,
		Handler: handler,
	}

	// Shut down cleanly on SIGINT/SIGTERM so in-flight verdicts finish.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Serving model %q on %s", components.Bundle.Name, listenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
