package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/mark-c-hall/movie-trivia/internal/catalog"
	"github.com/mark-c-hall/movie-trivia/internal/config"
	mw "github.com/mark-c-hall/movie-trivia/internal/middleware"
	"github.com/mark-c-hall/movie-trivia/internal/trivia"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
	handler http.Handler
}

// NewHandler builds the API mux and its middleware chain. metrics is served
// at /metrics outside the rate limiter.
func NewHandler(ctx context.Context, c *catalog.Catalog, metrics http.Handler, cfg config.ServerConfig, logger *slog.Logger) (*Handler, error) {
	h := &Handler{catalog: c, logger: logger}

	api := http.NewServeMux()
	h.addRoutes(api)

	var apiHandler http.Handler = api
	apiHandler = mw.Timeout(cfg.RequestTimeout)(apiHandler)
	apiHandler = mw.RateLimit(ctx, rate.Limit(cfg.RateLimitPerSec), cfg.RateBurst, logger)(apiHandler)

	root := http.NewServeMux()
	root.Handle("/", apiHandler)
	root.HandleFunc("GET /healthz", h.health)
	if metrics != nil {
		root.Handle("GET /metrics", metrics)
	}

	var handler http.Handler = root
	handler = mw.Recovery(logger)(handler)
	handler = mw.Logging(logger)(handler)
	handler = mw.CORS(cfg.CORSOrigin)(handler)
	handler = otelhttp.NewHandler(handler, "trivia-api")

	h.handler = handler
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func (h *Handler) addRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/actors", h.listActors)
	mux.HandleFunc("POST /api/actors", h.insertActor)
	mux.HandleFunc("GET /api/actors/{name}/movies", h.moviesForActor)
	mux.HandleFunc("GET /api/actors/{name}/coactors", h.coActors)

	mux.HandleFunc("GET /api/movies", h.listMovies)
	mux.HandleFunc("GET /api/movies/good", h.goodMovies)
	mux.HandleFunc("GET /api/movies/{name}/actors", h.actorsInMovie)

	mux.HandleFunc("GET /api/ratings", h.moviesByRating)
	mux.HandleFunc("POST /api/ratings", h.insertRating)
	mux.HandleFunc("GET /api/ratings/mean", h.mean)

	mux.HandleFunc("GET /api/common/movies", h.commonMovies)
	mux.HandleFunc("GET /api/common/actors", h.commonActors)
}

type insertActorRequest struct {
	Name   string   `json:"name"`
	Movies []string `json:"movies"`
}

type insertRatingRequest struct {
	Movie   string `json:"movie"`
	Ratings []int  `json:"ratings"`
}

type meanResponse struct {
	Critic   float64 `json:"critic"`
	Audience float64 `json:"audience"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"status": "ok",
		"counts": h.catalog.Counts(),
	})
}

func (h *Handler) listActors(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.catalog.Actors(r.Context()))
}

func (h *Handler) listMovies(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.catalog.Movies(r.Context()))
}

func (h *Handler) insertActor(w http.ResponseWriter, r *http.Request) {
	var req insertActorRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.catalog.InsertActor(r.Context(), req.Name, req.Movies)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) insertRating(w http.ResponseWriter, r *http.Request) {
	var req insertRatingRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.catalog.InsertRating(r.Context(), req.Movie, req.Ratings)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) moviesForActor(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.catalog.MoviesForActor(r.Context(), r.PathValue("name")))
}

func (h *Handler) coActors(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.catalog.CoActors(r.Context(), r.PathValue("name")))
}

func (h *Handler) actorsInMovie(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.catalog.ActorsInMovie(r.Context(), r.PathValue("name")))
}

func (h *Handler) goodMovies(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.catalog.GoodMovies(r.Context()))
}

// moviesByRating reads op (=, >, <, eq, gt, lt), value, and audience (bool,
// default false meaning critic ratings).
func (h *Handler) moviesByRating(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	value, err := strconv.Atoi(strings.TrimSpace(q.Get("value")))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "value must be an integer")
		return
	}

	audience := false
	if raw := q.Get("audience"); raw != "" {
		audience, err = strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, r, http.StatusBadRequest, "audience must be a boolean")
			return
		}
	}

	comparison := trivia.ParseComparison(q.Get("op"))
	h.writeJSON(w, r, http.StatusOK, h.catalog.MoviesByRating(r.Context(), comparison, value, !audience))
}

func (h *Handler) mean(w http.ResponseWriter, r *http.Request) {
	m := h.catalog.Mean(r.Context())
	h.writeJSON(w, r, http.StatusOK, meanResponse{Critic: m.Critic, Audience: m.Audience})
}

func (h *Handler) commonMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.writeJSON(w, r, http.StatusOK, h.catalog.CommonMovies(r.Context(), q.Get("actor1"), q.Get("actor2")))
}

func (h *Handler) commonActors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.writeJSON(w, r, http.StatusOK, h.catalog.CommonActors(r.Context(), q.Get("movie1"), q.Get("movie2")))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.ErrorContext(r.Context(), "error encoding response",
			"error", err,
			"path", r.URL.Path,
			"request_id", r.Context().Value(mw.RequestIDKey),
		)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, map[string]string{"error": msg})
}
