// Command inference-mock serves a Hugging Face compatible inference API for
// local development. Classification is backed by VADER and summarization by
// the extractive summarizer, so no model weights are needed.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/jonreiter/govader"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/domain"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/logging"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/summarize"
)

const summarySentences = 3

type inferenceRequest struct {
	Inputs     string          `json:"inputs"`
	Parameters *summaryOptions `json:"parameters"`
	Options    json.RawMessage `json:"options"`
}

type summaryOptions struct {
	MaxLength int `json:"max_length"`
	MinLength int `json:"min_length"`
}

type mock struct {
	models   map[string]bool
	analyzer *govader.SentimentIntensityAnalyzer
	logger   *slog.Logger
}

func main() {
	var (
		port     = flag.String("port", "8090", "port to listen on")
		served   = flag.String("models", "", "comma separated model names to serve (default: any)")
		logLevel = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	logger := logging.New(*logLevel, os.Stderr)
	m := newMock(strings.Split(*served, ","), logger)

	addr := ":" + *port
	logger.Info("mock inference listening", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, m.routes()); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newMock(served []string, logger *slog.Logger) *mock {
	m := &mock{
		models:   make(map[string]bool),
		analyzer: govader.NewSentimentIntensityAnalyzer(),
		logger:   logger,
	}
	for _, name := range served {
		if name = strings.TrimSpace(name); name != "" {
			m.models[name] = true
		}
	}
	return m
}

func (m *mock) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /models/{model...}", m.handleShow)
	mux.HandleFunc("POST /models/{model...}", m.handleRun)
	return mux
}

func (m *mock) serves(model string) bool {
	return len(m.models) == 0 || m.models[model]
}

func (m *mock) handleShow(w http.ResponseWriter, r *http.Request) {
	model := r.PathValue("model")
	if !m.serves(model) {
		writeError(w, http.StatusNotFound, "Model "+model+" does not exist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": model})
}

func (m *mock) handleRun(w http.ResponseWriter, r *http.Request) {
	model := r.PathValue("model")
	if !m.serves(model) {
		writeError(w, http.StatusNotFound, "Model "+model+" does not exist")
		return
	}

	var req inferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	m.logger.Debug("mock inference request",
		slog.String("model", model),
		slog.Bool("summarize", req.Parameters != nil),
		slog.Int("input_length", len(req.Inputs)))

	if req.Parameters != nil {
		writeJSON(w, http.StatusOK, []map[string]string{
			{"summary_text": m.summarize(req.Inputs, req.Parameters.MaxLength)},
		})
		return
	}
	writeJSON(w, http.StatusOK, [][]domain.LabelScore{m.classify(req.Inputs)})
}

// classify maps the VADER compound score onto a two-label distribution.
func (m *mock) classify(text string) []domain.LabelScore {
	compound := m.analyzer.PolarityScores(text).Compound
	positive := (compound + 1) / 2
	scores := []domain.LabelScore{
		{Label: "POSITIVE", Score: positive},
		{Label: "NEGATIVE", Score: 1 - positive},
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores
}

func (m *mock) summarize(text string, maxWords int) string {
	summary := summarize.Extract([]string{text}, summarySentences)
	words := strings.Fields(summary)
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
