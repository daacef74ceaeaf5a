// Package httpapi exposes the database core over HTTP: document CRUD
// and CAS, the long-poll endpoint, the query endpoint, a health check,
// and Prometheus metrics. The core's boolean results (create on a live
// key, CAS mismatch) map to {"ok": false} responses, not errors. A
// plain GET of a missing document answers 404; otherwise only input
// errors and storage failures become HTTP error statuses.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quilldb/quill/internal/db"
	"github.com/quilldb/quill/internal/document"
	"github.com/quilldb/quill/internal/query"
)

// Server wires one database instance into an HTTP router.
type Server struct {
	db  *db.DB
	log *slog.Logger
}

// New creates a Server over the given database.
func New(database *db.DB, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{db: database, log: log}
}

// Router builds the chi router for the server.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Put("/docs/{key}", s.handleCreate)
		r.Get("/docs/{key}", s.handleGet)
		r.Post("/docs/{key}", s.handleSet)
		r.Delete("/docs/{key}", s.handleRemove)
		r.Post("/poll", s.handlePoll)
		r.Post("/query", s.handleQuery)
	})

	return r
}

// okResponse reports the boolean outcome of a mutating call, plus the
// document's version after a successful mutation.
type okResponse struct {
	OK      bool              `json:"ok"`
	Version *document.Version `json:"version,omitempty"`
}

// setRequest is the body of POST /v1/docs/{key}: the expected version,
// the next value (absent for a CAS remove), and optional metadata to
// carry on the patch.
type setRequest struct {
	Version  document.Version `json:"version"`
	Value    json.RawMessage  `json:"value"`
	Metadata map[string]any   `json:"metadata"`
}

// pollRequest is the body of POST /v1/poll.
type pollRequest struct {
	Keys            []db.KeyVersion `json:"keys"`
	ReadBlockTimeMs int64           `json:"readBlockTimeMs"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var value any
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		s.writeError(w, db.NewInputError("malformed value: %v", err))
		return
	}

	ok, err := s.db.Create(r.Context(), key, value)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMutation(w, r, key, ok)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	ctx := r.Context()

	switch {
	case r.URL.Query().Get("meta") == "1":
		env, err := s.db.GetWithMeta(ctx, key)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if env == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		s.writeJSON(w, env)

	case r.URL.Query().Get("version") == "1":
		vv, err := s.db.GetWithVersion(ctx, key)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, vv)

	default:
		value, err := s.db.Get(ctx, key)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if value == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		s.writeJSON(w, value)
	}
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req setRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, db.NewInputError("malformed request: %v", err))
		return
	}

	// An absent value field is a CAS remove; an explicit null is an
	// input error, since null is not a storable top-level value.
	var value any
	if len(req.Value) > 0 {
		if err := json.Unmarshal(req.Value, &value); err != nil {
			s.writeError(w, db.NewInputError("malformed value: %v", err))
			return
		}
		if value == nil {
			s.writeError(w, db.NewInputError("top-level value must not be null"))
			return
		}
	}

	ok, err := s.db.SetIfVersion(r.Context(), key, req.Version, value, req.Metadata)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMutation(w, r, key, ok)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	q := r.URL.Query()

	var (
		ok  bool
		err error
	)
	if q.Has("major") || q.Has("minor") {
		var expected document.Version
		expected.Major, err = parseInt(q.Get("major"))
		if err == nil {
			expected.Minor, err = parseInt(q.Get("minor"))
		}
		if err != nil {
			s.writeError(w, db.NewInputError("malformed version: %v", err))
			return
		}
		ok, err = s.db.SetIfVersion(r.Context(), key, expected, nil, nil)
	} else {
		ok, err = s.db.Remove(r.Context(), key)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, okResponse{OK: ok})
}

func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	var req pollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, db.NewInputError("malformed request: %v", err))
		return
	}

	opts := db.PollOptions{}
	if req.ReadBlockTimeMs > 0 {
		opts.ReadBlockTime = time.Duration(req.ReadBlockTimeMs) * time.Millisecond
	}

	results, err := s.db.Poll(r.Context(), req.Keys, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, results)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	body, err := readAll(r)
	if err != nil {
		s.writeError(w, db.NewInputError("read request: %v", err))
		return
	}
	q, err := query.ParseQuery(body)
	if err != nil {
		s.writeError(w, err)
		return
	}

	docs, err := s.db.Find(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, docs)
}

// writeMutation reports a mutation outcome, attaching the new version
// on success so callers can chain CAS operations without a re-read.
func (s *Server) writeMutation(w http.ResponseWriter, r *http.Request, key string, ok bool) {
	resp := okResponse{OK: ok}
	if ok {
		if vv, err := s.db.GetWithVersion(r.Context(), key); err == nil && !vv.Version.IsZero() {
			v := vv.Version
			resp.Version = &v
		}
	}
	s.writeJSON(w, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("write response", "error", err)
	}
}

// writeError maps core error kinds onto HTTP statuses: input errors are
// the client's fault, everything else is a server failure.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if db.IsInput(err) {
		status = http.StatusBadRequest
	} else {
		s.log.Error("request failed", "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
