package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/quillfox/confab/pkg/markov"
	"github.com/quillfox/confab/pkg/polish"
)

// textAPI holds the dependencies for the text generation handlers.
type textAPI struct {
	gen          *markov.Generator
	finisher     *polish.Finisher
	maxSentences int
	logger       *slog.Logger

	// The generator is not safe for concurrent walks, so requests take
	// turns.
	mu sync.Mutex
}

func newTextAPI(gen *markov.Generator, finisher *polish.Finisher, maxSentences int, logger *slog.Logger) *textAPI {
	return &textAPI{
		gen:          gen,
		finisher:     finisher,
		maxSentences: maxSentences,
		logger:       logger,
	}
}

// RegisterRoutes sets up the routing for the text endpoints.
func (a *textAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/v1/text", a.handleText)
}

func (a *textAPI) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleText answers with freshly generated text. Query parameters:
// sentences picks how many to generate, break_prob sets the paragraph break
// probability, and html=true returns an HTML fragment instead of plain
// text.
func (a *textAPI) handleText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sentences := 5
	if raw := r.URL.Query().Get("sentences"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "sentences must be an integer")
			return
		}
		sentences = n
	}
	if sentences < 1 {
		respondWithError(w, http.StatusBadRequest, "sentences must be at least 1")
		return
	}
	if sentences > a.maxSentences {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("sentences must be at most %d", a.maxSentences))
		return
	}

	breakProb := 0.25
	if raw := r.URL.Query().Get("break_prob"); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil || p < 0 || p > 1 {
			respondWithError(w, http.StatusBadRequest, "break_prob must be a number in [0, 1]")
			return
		}
		breakProb = p
	}

	wantHTML := false
	if raw := r.URL.Query().Get("html"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "html must be a boolean")
			return
		}
		wantHTML = b
	}

	a.mu.Lock()
	paragraphs, err := a.gen.GenerateParagraphs(sentences, breakProb)
	a.mu.Unlock()
	if err != nil {
		a.logger.Error("Generation failed", "error", err)
		if errors.Is(err, markov.ErrInvalidConfig) {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Generation failed: %v", err))
			return
		}
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Generation failed: %v", err))
		return
	}

	rendered := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		rendered[i] = a.gen.RenderParagraph(p)
	}

	if wantHTML {
		fragment, err := a.finisher.Finish(polish.WrapHTML(rendered))
		if err != nil {
			a.logger.Error("Finishing failed", "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Finishing failed: %v", err))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, fragment+"\n")
		return
	}

	for i := range rendered {
		if rendered[i], err = a.finisher.Finish(rendered[i]); err != nil {
			a.logger.Error("Finishing failed", "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Finishing failed: %v", err))
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, strings.Join(rendered, "\n\n")+"\n")
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}
