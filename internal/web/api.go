package web

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/dshills/commitgate/internal/findings"
	"github.com/dshills/commitgate/internal/output"
)

// maxBody bounds /api request bodies.
const maxBody = 10 << 20

// Handler returns the HTTP routes without starting a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/review-data", s.reviewData)
	mux.HandleFunc("GET /api/config", s.config)
	mux.Handle("POST /api/export", sameOrigin(http.HandlerFunc(s.export)))
	mux.Handle("POST /api/commit", sameOrigin(http.HandlerFunc(s.commit)))
	mux.HandleFunc("GET /api/events", s.events.serve(s.Report))
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "API endpoint not found")
	})
	mux.Handle("/", spaHandler(s.assets))
	return mux
}

func (s *Server) reviewData(w http.ResponseWriter, r *http.Request) {
	report := s.Report()
	if report == nil {
		respondJSON(w, http.StatusNotFound, map[string]string{
			"error":   "no review data available",
			"message": "run a code review first",
		})
		return
	}
	s.logger.Printf("[web] serving review data (%d files)", len(report.Files))
	respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"data":      report,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) config(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"config": map[string]any{
			"version":          Version,
			"features":         []string{"export", "theme-toggle", "real-time"},
			"supportedFormats": []string{"markdown", "json"},
		},
	})
}

type exportRequest struct {
	Format string          `json:"format"`
	Data   json.RawMessage `json:"data"`
}

type exportResult struct {
	Success  bool   `json:"success"`
	Content  string `json:"content"`
	Filename string `json:"filename"`
	Format   string `json:"format"`
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	format := req.Format
	if format != "json" {
		format = "markdown"
	}

	hasData := len(req.Data) > 0 && string(req.Data) != "null"
	report := s.Report()
	if !hasData && report == nil {
		respondError(w, http.StatusBadRequest, "no data to export")
		return
	}

	key := format + ":current"
	if hasData {
		sum := sha256.Sum256(req.Data)
		key = format + ":" + hex.EncodeToString(sum[:])
	}
	if res, ok := s.exports.Get(key); ok {
		res.Filename = output.Filename(format, time.Now())
		respondJSON(w, http.StatusOK, res)
		return
	}

	if hasData {
		var supplied findings.Report
		if err := json.Unmarshal(req.Data, &supplied); err != nil {
			respondError(w, http.StatusBadRequest, "invalid report data")
			return
		}
		report = &supplied
	}
	content, err := output.Render(report, format)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed", "message": err.Error()})
		return
	}
	res := exportResult{Success: true, Content: content, Format: format}
	s.exports.Add(key, res)
	res.Filename = output.Filename(format, time.Now())
	respondJSON(w, http.StatusOK, res)
}

type commitRequest struct {
	Action string `json:"action"`
}

func (s *Server) commit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch Decision(strings.ToLower(strings.TrimSpace(req.Action))) {
	case "":
		respondJSON(w, http.StatusOK, commitResponse("commit request received", "continue-commit"))
	case DecisionContinue:
		s.decide(DecisionContinue)
		s.logger.Printf("[web] dashboard decision: continue")
		respondJSON(w, http.StatusOK, commitResponse("commit will continue", "continue-commit"))
	case DecisionAbort:
		s.decide(DecisionAbort)
		s.logger.Printf("[web] dashboard decision: abort")
		respondJSON(w, http.StatusOK, commitResponse("commit aborted", "abort-commit"))
	default:
		respondError(w, http.StatusBadRequest, "action must be continue or abort")
	}
}

func commitResponse(message, action string) map[string]any {
	return map[string]any{"success": true, "message": message, "action": action}
}

// sameOrigin rejects browser requests from other sites and bodies that are
// not JSON. Requiring application/json forces a CORS preflight, which the
// server never answers.
func sameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && !isLocalOrigin(origin) {
			respondError(w, http.StatusForbidden, "cross-origin request rejected")
			return
		}
		if r.ContentLength != 0 {
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mt != "application/json" {
				respondError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)
}

// spaHandler serves files from assets and index.html for every other path.
func spaHandler(assets fs.FS) http.Handler {
	files := http.FileServerFS(assets)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name != "" {
			if info, err := fs.Stat(assets, name); err == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}
		index, err := fs.ReadFile(assets, "index.html")
		if err != nil {
			http.Error(w, "dashboard not available", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(index)
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
