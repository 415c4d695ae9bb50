// Package codecserver exposes the bencode codec over HTTP.
package codecserver

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/epithet-ssh/bencode/pkg/bencode"
	"github.com/epithet-ssh/bencode/pkg/config"
	"github.com/epithet-ssh/bencode/pkg/digest"
	"github.com/epithet-ssh/bencode/pkg/transcode"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxBodyBytes is the request body limit when Config leaves it
// unset.
const DefaultMaxBodyBytes = 8 << 20

const contentTypeBencode = "application/x-bencode"

// Config configures the handler returned by New.
type Config struct {
	Codec        config.Codec
	Logger       *slog.Logger
	MaxBodyBytes int64
}

type server struct {
	codec        config.Codec
	log          *slog.Logger
	maxBodyBytes int64
}

// New returns a handler serving:
//
//	POST /decode    bencode body to JSON, or YAML with ?format=yaml
//	POST /encode    JSON (or YAML by Content-Type) body to bencode
//	POST /validate  report whether the body is well-formed bencode
//	POST /digest    hash the body's canonical form, ?alg= and ?info=1
//	GET  /healthz   liveness
func New(cfg Config) http.Handler {
	s := &server{
		codec:        cfg.Codec,
		log:          cfg.Logger,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = DefaultMaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/decode", s.decode)
	r.Post("/encode", s.encode)
	r.Post("/validate", s.validate)
	r.Post("/digest", s.digest)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})
	return r
}

func (s *server) decode(w http.ResponseWriter, r *http.Request) {
	v, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	var err error
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		err = transcode.WriteJSON(&buf, v, "")
	case "yaml":
		w.Header().Set("Content-Type", "application/yaml")
		err = transcode.WriteYAML(&buf, v)
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown format %q", format))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Write(buf.Bytes())
}

func (s *server) encode(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var v bencode.Value
	var err error
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		v, err = transcode.FromYAML(body)
	} else {
		v, err = transcode.FromJSON(body)
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	out, err := bencode.Marshal(v, s.codec.EncoderOptions()...)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", contentTypeBencode)
	w.Write(out)
}

// ValidateResponse is the body returned by /validate.
type ValidateResponse struct {
	Valid  bool   `json:"valid"`
	Error  string `json:"error,omitempty"`
	Offset *int64 `json:"offset,omitempty"`
}

func (s *server) validate(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	resp := ValidateResponse{Valid: true}
	if _, err := bencode.Unmarshal(body, s.codec.DecoderOptions()...); err != nil {
		resp = ValidateResponse{Error: err.Error(), Offset: errorOffset(err)}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// DigestResponse is the body returned by /digest.
type DigestResponse struct {
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
}

func (s *server) digest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	alg := digest.SHA256
	if name := query.Get("alg"); name != "" {
		var err error
		if alg, err = digest.ParseAlgorithm(name); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	v, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	if query.Get("info") == "1" || query.Get("info") == "true" {
		sum, err := digest.InfoHash(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.writeJSON(w, http.StatusOK, DigestResponse{Algorithm: digest.SHA1.String(), Digest: hex.EncodeToString(sum[:])})
		return
	}

	sum, err := digest.Sum(alg, v)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, DigestResponse{Algorithm: alg.String(), Digest: hex.EncodeToString(sum)})
}

func (s *server) decodeBody(w http.ResponseWriter, r *http.Request) (bencode.Value, bool) {
	body, ok := s.readBody(w, r)
	if !ok {
		return bencode.Value{}, false
	}
	v, err := bencode.Unmarshal(body, s.codec.DecoderOptions()...)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return bencode.Value{}, false
	}
	return v, true
}

func (s *server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("unable to read body: %w", err))
		return nil, false
	}
	return body, true
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Offset *int64 `json:"offset,omitempty"`
}

func (s *server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= 500 {
		s.log.Error("request failed", "status", status, "error", err)
	} else {
		s.log.Debug("request rejected", "status", status, "error", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error(), Offset: errorOffset(err)})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, body any) {
	out, err := json.Marshal(body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		s.log.Warn("unable to jsonify response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(out); err != nil {
		s.log.Warn("unable to write response", "error", err)
	}
}

func errorOffset(err error) *int64 {
	var decErr *bencode.DecodeError
	if errors.As(err, &decErr) {
		return &decErr.Offset
	}
	return nil
}

// requestLogger logs one line per request at info level.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
