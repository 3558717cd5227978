package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fairwaylabs/shotlens/internal/extract"
	"github.com/fairwaylabs/shotlens/internal/model"
	"github.com/fairwaylabs/shotlens/internal/resolve"
	"github.com/fairwaylabs/shotlens/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the extraction API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ex, err := newExtractor()
		if err != nil {
			return err
		}
		registry, err := loadRegistry()
		if err != nil {
			return err
		}
		resolver := resolve.NewResolver(registry, cfg.Scoring)

		s, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.Path, cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Migrate(ctx); err != nil {
			return err
		}

		api := &apiServer{extractor: ex, resolver: resolver, store: s}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

type apiServer struct {
	extractor *extract.Extractor
	resolver  *resolve.Resolver
	store     store.Store
}

func (a *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/extract", a.handleExtract)
		r.Post("/resolve", a.handleResolve)
		r.Get("/extractions", a.handleListExtractions)
		r.Get("/extractions/{id}", a.handleGetExtraction)
	})

	return r
}

// handleExtract accepts a base64 screenshot, runs the full pipeline,
// persists the result, and returns the resolved values.
func (a *apiServer) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		ImageB64 string `json:"image_b64"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ImageB64 == "" {
		writeError(w, http.StatusBadRequest, "image_b64 is required")
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.ImageB64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image_b64 is not valid base64")
		return
	}

	tmp, err := os.CreateTemp("", "shotlens-upload-*.png")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "temp file")
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		writeError(w, http.StatusInternalServerError, "temp file write")
		return
	}
	tmp.Close()

	result, err := a.extractor.Extract(r.Context(), tmp.Name())
	if err != nil {
		zap.L().Error("api: extraction failed", zap.String("name", req.Name), zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, "extraction failed")
		return
	}
	if req.Name != "" {
		result.Image = req.Name
	}

	rec, err := a.store.SaveExtraction(r.Context(), result)
	if err != nil {
		zap.L().Error("api: save failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "save failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":     rec.ID,
		"image":  result.Image,
		"values": result.ByKey(),
	})
}

// handleResolve resolves caller-supplied observations without running
// OCR, for clients that bring their own recognizer.
func (a *apiServer) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Observations map[string][]model.Observation `json:"observations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Observations) == 0 {
		writeError(w, http.StatusBadRequest, "observations are required")
		return
	}

	fields := a.resolver.ResolveAll(req.Observations)
	writeJSON(w, http.StatusOK, map[string]any{"fields": fields})
}

func (a *apiServer) handleListExtractions(w http.ResponseWriter, r *http.Request) {
	filter := store.ExtractionFilter{Image: r.URL.Query().Get("image")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = n
	}

	records, err := a.store.ListExtractions(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"extractions": records})
}

func (a *apiServer) handleGetExtraction(w http.ResponseWriter, r *http.Request) {
	rec, err := a.store.GetExtraction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "extraction not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
