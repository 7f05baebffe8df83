package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/truthfi/truthfi/internal/analysis"
	"github.com/truthfi/truthfi/internal/analyzer"
	"github.com/truthfi/truthfi/internal/config"
	"github.com/truthfi/truthfi/internal/metrics"
	"github.com/truthfi/truthfi/internal/models"
	"github.com/truthfi/truthfi/internal/trending"
)

// Server exposes the HTTP contract consumed by the dashboard UI.
type Server struct {
	cfg       *config.Config
	analyzer  *analyzer.Service
	trending  *trending.Service
	detector  *analysis.Detector
	startTime time.Time
}

// New creates the HTTP server wiring.
func New(cfg *config.Config, scoring *config.ScoringConfig, analyzerService *analyzer.Service, trendingService *trending.Service) *Server {
	return &Server{
		cfg:       cfg,
		analyzer:  analyzerService,
		trending:  trendingService,
		detector:  analysis.NewDetector(scoring),
		startTime: time.Now(),
	}
}

// Router builds the mux router with all routes and middleware.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware)

	router.HandleFunc("/", s.handleHealth).Methods("GET")
	router.HandleFunc("/api/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/api/analyze", s.handleAnalyze).Methods("POST")
	router.HandleFunc("/api/trending", s.handleTrending).Methods("GET")
	router.HandleFunc("/api/sentiment/{symbol}", s.handleSentiment).Methods("GET")
	router.HandleFunc("/api/detect-patterns", s.handleDetectPatterns).Methods("POST")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}

type analyzeRequest struct {
	TokenSymbol string `json:"token_symbol"`
	PostLimit   int    `json:"post_limit"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.AnalyzeRequests.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "request body must be JSON with token_symbol and post_limit")
		return
	}

	result, err := s.analyzer.AnalyzeToken(r.Context(), req.TokenSymbol, req.PostLimit)
	if err != nil {
		switch {
		case errors.Is(err, analyzer.ErrInvalidSymbol):
			metrics.AnalyzeRequests.WithLabelValues("bad_request").Inc()
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, analyzer.ErrNoData):
			metrics.AnalyzeRequests.WithLabelValues("no_data").Inc()
			writeError(w, http.StatusNotFound, fmt.Sprintf(
				"No social media data found for %s. The token may be too new, not actively discussed, or the symbol may be incorrect.",
				req.TokenSymbol))
		default:
			metrics.AnalyzeRequests.WithLabelValues("error").Inc()
			logrus.Errorf("Analysis failed: %v", err)
			writeError(w, http.StatusInternalServerError, "analysis failed")
		}
		return
	}

	metrics.AnalyzeRequests.WithLabelValues("ok").Inc()
	metrics.AnalyzeDuration.Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, result)
}

type trendingResponse struct {
	Trending  []models.TrendingToken `json:"trending"`
	Timestamp string                 `json:"timestamp"`
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	tokens := s.trending.Trending(r.Context(), 20)
	if tokens == nil {
		tokens = []models.TrendingToken{}
	}
	writeJSON(w, http.StatusOK, trendingResponse{
		Trending:  tokens,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	summary, err := s.analyzer.SentimentSummary(r.Context(), symbol)
	if err != nil {
		switch {
		case errors.Is(err, analyzer.ErrInvalidSymbol):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, analyzer.ErrNoData):
			writeError(w, http.StatusNotFound, fmt.Sprintf("No recent posts found for %s", symbol))
		default:
			logrus.Errorf("Sentiment analysis failed: %v", err)
			writeError(w, http.StatusInternalServerError, "sentiment analysis failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

type detectPatternsRequest struct {
	Text string `json:"text"`
}

type detectPatternsResponse struct {
	ScamScore float64  `json:"scam_score"`
	RiskLevel string   `json:"risk_level"`
	Flags     []string `json:"flags"`
	Timestamp string   `json:"timestamp"`
}

// handleDetectPatterns scores a single piece of text against the pattern
// catalog, for checking individual posts or promotional messages.
func (s *Server) handleDetectPatterns(w http.ResponseWriter, r *http.Request) {
	var req detectPatternsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Text) < 10 {
		writeError(w, http.StatusBadRequest, "text must be at least 10 characters")
		return
	}

	matches := s.detector.Detect([]models.Post{{ID: "adhoc", Text: req.Text}})
	match := matches["adhoc"]

	flags := make([]string, 0, len(match.Flags))
	for _, name := range match.Flags {
		desc, _ := s.detector.FlagMeta(name)
		flags = append(flags, desc)
	}

	writeJSON(w, http.StatusOK, detectPatternsResponse{
		ScamScore: match.ScamScore,
		RiskLevel: analysis.ScamRiskLevel(match.ScamScore),
		Flags:     flags,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

type healthResponse struct {
	Status    string            `json:"status"`
	Services  map[string]string `json:"services"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(s.startTime)

	writeJSON(w, http.StatusOK, healthResponse{
		Status: "operational",
		Services: map[string]string{
			"api":          "operational",
			"truth_scorer": "operational",
			"trending":     "operational",
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    fmt.Sprintf("%dh %dm", int(uptime.Hours()), int(uptime.Minutes())%60),
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		logrus.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		}).Debug("Handling request")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

// writeError emits the {"detail": ...} error shape the UI expects.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
