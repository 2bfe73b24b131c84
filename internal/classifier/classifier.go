// Package classifier infers genres for a description using a hosted
// zero-shot text-classification model.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bookdex/bookdex/internal/book"
	"github.com/bookdex/bookdex/internal/config"
	"github.com/bookdex/bookdex/internal/genre"
	"github.com/bookdex/bookdex/internal/ratelimit"
)

const (
	// minDescriptionLength is the shortest description worth classifying.
	minDescriptionLength = 30
	// scoreThreshold drops labels the model is not confident about.
	scoreThreshold = 0.4
	// DefaultTopN is the number of labels kept by default.
	DefaultTopN = 2
)

// Package-level variables for the API client.
// These can be overridden in tests for dependency injection.
var (
	httpClient    *http.Client
	clientOnce    sync.Once
	httpClientNew = func() *http.Client {
		return &http.Client{Timeout: 30 * time.Second}
	}

	limiter     *ratelimit.Limiter
	limiterOnce sync.Once
)

func getHTTPClient() *http.Client {
	clientOnce.Do(func() {
		httpClient = httpClientNew()
	})
	return httpClient
}

// getLimiter returns a singleton rate limiter for the classifier (2 req/sec)
func getLimiter() *ratelimit.Limiter {
	limiterOnce.Do(func() {
		limiter = ratelimit.New("Classifier", 2)
	})
	return limiter
}

// request is the zero-shot inference payload: a text plus the fixed
// candidate label set, multi-label so scores are independent.
type request struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type parameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

// response carries parallel label/score arrays, scores descending.
type response struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// ClassifyGenres scores the description against the candidate genre
// vocabulary and returns the top topN labels above the confidence
// threshold, joined by ", " in descending score order. Returns "" for
// short descriptions and degrades to "" on any request failure.
func ClassifyGenres(ctx context.Context, description string, topN int) string {
	if utf8.RuneCountInString(description) < minDescriptionLength {
		return ""
	}
	if config.ClassifierAPIURL == "" {
		slog.Debug("No classifier endpoint configured, skipping genre classification")
		return ""
	}

	labels, err := classify(ctx, description)
	if err != nil {
		slog.Warn("Genre classification failed", "error", err)
		return ""
	}

	if len(labels) > topN {
		labels = labels[:topN]
	}
	return book.JoinList(labels)
}

// classify calls the inference endpoint and returns the surviving
// labels in descending score order.
func classify(ctx context.Context, description string) ([]string, error) {
	if err := getLimiter().Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(request{
		Inputs: description,
		Parameters: parameters{
			CandidateLabels: genre.Vocabulary,
			MultiLabel:      true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode classifier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.ClassifierAPIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if config.ClassifierAPIToken != "" {
		req.Header.Set("Authorization", "Bearer "+config.ClassifierAPIToken)
	}

	resp, err := getHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var result response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode classifier response: %w", err)
	}
	if len(result.Labels) != len(result.Scores) {
		return nil, fmt.Errorf("classifier returned %d labels but %d scores", len(result.Labels), len(result.Scores))
	}

	// The arrays are documented score-descending, but don't trust the
	// endpoint to keep that contract.
	order := make([]int, len(result.Labels))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return result.Scores[order[a]] > result.Scores[order[b]]
	})

	var kept []string
	for _, i := range order {
		if result.Scores[i] > scoreThreshold {
			kept = append(kept, result.Labels[i])
		}
	}
	return kept, nil
}
