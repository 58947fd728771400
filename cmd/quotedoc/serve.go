package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	quotedoc "github.com/alnah/go-quotedoc"
	"github.com/alnah/go-quotedoc/internal/config"
)

const (
	defaultAddr     = ":8080"
	defaultStoreDir = "quotedoc-data"
	shutdownGrace   = 10 * time.Second
)

// server bundles the HTTP handlers with their collaborators.
type server struct {
	store    *quotedoc.FileStore
	exporter *quotedoc.Exporter
	cfg      config.Config
	log      *logrus.Logger
}

// runServe starts the HTTP server and blocks until SIGINT/SIGTERM.
func runServe(args []string, log *logrus.Logger) error {
	flags, err := parseServeFlags(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.config)
	if err != nil {
		return err
	}

	storeDir := cfg.Store.Dir
	if storeDir == "" {
		storeDir = defaultStoreDir
	}
	store, err := quotedoc.NewFileStore(storeDir)
	if err != nil {
		return err
	}

	exp, err := newExporter(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = exp.Close() }()

	s := &server{store: store, exporter: exp, cfg: cfg, log: log}

	addr := flags.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	if addr == "" {
		addr = defaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func (s *server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/documents", s.handleSave).Methods(http.MethodPost)
	r.HandleFunc("/documents/{id}", s.handleLoad).Methods(http.MethodGet)
	r.HandleFunc("/documents/{id}/export", s.handleExport).Methods(http.MethodPost)
	r.HandleFunc("/documents/{id}/preview", s.handlePreview).Methods(http.MethodGet)
	r.HandleFunc("/documents/{id}/convert", s.handleConvert).Methods(http.MethodPost)
	r.HandleFunc("/documents/{id}/draft", s.handleSaveDraft).Methods(http.MethodPut)
	r.HandleFunc("/documents/{id}/draft", s.handleLoadDraft).Methods(http.MethodGet)
	r.HandleFunc("/documents/{id}/draft", s.handleClearDraft).Methods(http.MethodDelete)
	r.Use(s.logMiddleware)
	return r
}

func (s *server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *server) handleSave(w http.ResponseWriter, r *http.Request) {
	var doc quotedoc.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "invalid document payload", http.StatusBadRequest)
		return
	}
	if err := s.store.Save(r.Context(), &doc); err != nil {
		// Validation failures are inline messages, not alerts.
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": doc.ID})
}

func (s *server) handleLoad(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.notFoundOrError(w, err, quotedoc.ErrDocumentNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.notFoundOrError(w, err, quotedoc.ErrDocumentNotFound)
		return
	}

	format := quotedoc.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = quotedoc.FormatPDF
	}

	artifact, err := s.exporter.Export(r.Context(), doc, format)
	switch {
	case errors.Is(err, quotedoc.ErrExportInFlight):
		http.Error(w, "an export is already in progress", http.StatusConflict)
		return
	case errors.Is(err, quotedoc.ErrInvalidFormat):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		// One user-visible failure for the whole pipeline; details go to the log.
		s.log.WithError(err).Error("export failed")
		http.Error(w, "Generation Failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", artifact.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}

func (s *server) handlePreview(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.notFoundOrError(w, err, quotedoc.ErrDocumentNotFound)
		return
	}
	surface, err := s.exporter.Preview(r.Context(), doc)
	if err != nil {
		s.log.WithError(err).Error("preview failed")
		http.Error(w, "Generation Failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(surface.HTML))
}

// handleConvert turns a saved quote into a domestic sales contract using the
// configured exchange rate, and saves the contract.
func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.notFoundOrError(w, err, quotedoc.ErrDocumentNotFound)
		return
	}
	if !doc.Type.IsQuote() {
		http.Error(w, "only quotes can be converted", http.StatusUnprocessableEntity)
		return
	}

	rate := 1.0
	if doc.Currency != quotedoc.DomesticCurrency {
		var ok bool
		rate, ok = s.cfg.Rate(doc.Currency)
		if !ok {
			http.Error(w, "no exchange rate configured for "+doc.Currency, http.StatusUnprocessableEntity)
			return
		}
	}

	number := r.URL.Query().Get("number")
	if number == "" {
		number = doc.Number + "-HT"
	}

	contract := doc.ConvertToContract(number, decimal.NewFromFloat(rate))
	if err := s.store.Save(r.Context(), contract); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.writeJSON(w, http.StatusCreated, contract)
}

func (s *server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	var doc quotedoc.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "invalid draft payload", http.StatusBadRequest)
		return
	}
	doc.ID = mux.Vars(r)["id"]
	if err := s.store.SaveDraft(r.Context(), &doc); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleLoadDraft(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.LoadDraft(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.notFoundOrError(w, err, quotedoc.ErrDraftNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *server) handleClearDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearDraft(r.Context(), mux.Vars(r)["id"]); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) notFoundOrError(w http.ResponseWriter, err, notFound error) {
	if errors.Is(err, notFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.log.WithError(err).Error("store error")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("encoding response")
	}
}
