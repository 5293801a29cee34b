package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"review_insights/internal/adapters/dataset"
	"review_insights/internal/app"
	"review_insights/internal/domain"
)

// maxAnalyzeBody caps POST /v1/analyze payloads.
const maxAnalyzeBody = 10 << 20

type Handlers struct {
	Q *app.QueryService
	A *app.AnalysisService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/insights", h.listInsights)
		r.Get("/insights/{entity}", h.getInsights)
		r.Get("/comparison", h.getComparison)
		r.Post("/analyze", h.analyze)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached writes v as JSON with an ETag, answering 304 when the client
// already holds this version.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "encode response")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func (h *Handlers) getInsights(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	out, err := h.Q.GetInsights(r.Context(), entity)
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "no insights for "+entity)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("entity", entity).Msg("get insights failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) listInsights(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListInsights(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list insights failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) getComparison(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.GetComparison(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("comparison failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	writeCached(w, r, out)
}

type analyzeResponse struct {
	Report     domain.Report       `json:"report"`
	Comparison domain.Comparison   `json:"comparison"`
	Stats      *app.NormalizeStats `json:"normalize_stats"`
}

func (h *Handlers) analyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxAnalyzeBody+1))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if len(body) > maxAnalyzeBody {
		writeProblem(w, http.StatusRequestEntityTooLarge, "Payload too large", "body exceeds 10MiB")
		return
	}
	raw, err := dataset.DecodeJSON(body)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", "expected an array of reviews or {\"reviews\": [...]}")
		return
	}
	res, err := h.A.AnalyzeRaw(r.Context(), raw)
	if err != nil {
		log.Error().Err(err).Msg("analyze failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	out, err := json.Marshal(analyzeResponse{Report: res.Report, Comparison: res.Comparison, Stats: res.Stats})
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		log.Error().Err(err).Msg("failed to write analyze body")
	}
}
