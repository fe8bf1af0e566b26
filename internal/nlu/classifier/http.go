package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	commonhttp "shopsense-voice/internal/common/http"
	"shopsense-voice/internal/common/logger"
)

type HTTPConfig struct {
	URL         string
	APIKey      string
	Timeout     time.Duration
	MaxRetries  int
	BaseBackoff time.Duration
}

// HTTP calls a Hugging Face style zero-shot inference endpoint.
type HTTP struct {
	config HTTPConfig
	client *commonhttp.Client
	logger logger.Logger
}

func NewHTTP(config HTTPConfig, log logger.Logger) *HTTP {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return NewHTTPWithClient(config, commonhttp.NewClient(config.Timeout), log)
}

func NewHTTPWithClient(config HTTPConfig, client *commonhttp.Client, log logger.Logger) *HTTP {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &HTTP{
		config: config,
		client: client,
		logger: log.With(map[string]interface{}{"backend": "http"}),
	}
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

// Legacy response shape: parallel arrays sorted by score.
type zeroShotResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

func (h *HTTP) Classify(ctx context.Context, text string, labels []string) (Result, error) {
	body, err := json.Marshal(zeroShotRequest{
		Inputs:     text,
		Parameters: zeroShotParameters{CandidateLabels: labels},
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	policy := commonhttp.RetryPolicy{MaxRetries: h.config.MaxRetries, BaseBackoff: h.config.BaseBackoff}
	resp, err := h.client.DoWithRetry(ctx, policy, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.config.URL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if h.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+h.config.APIKey)
		}
		return req, nil
	})
	if err != nil {
		if errors.Is(err, commonhttp.ErrTimeout) {
			return Result{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Result{}, fmt.Errorf("%w: decode error: %v", ErrUnavailable, err)
	}

	res, err := decodeZeroShot(raw)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	h.logger.Debug("zero-shot classification", map[string]interface{}{
		"label": res.Label,
		"score": res.Score,
	})
	return res, nil
}

// decodeZeroShot accepts both the legacy {labels, scores} object and the
// newer [{label, score}] list, returning the top-scoring entry.
func decodeZeroShot(raw json.RawMessage) (Result, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var list []Result
		if err := json.Unmarshal(raw, &list); err != nil {
			return Result{}, fmt.Errorf("decode error: %v", err)
		}
		if len(list) == 0 {
			return Result{}, errors.New("empty label list")
		}
		best := list[0]
		for _, r := range list[1:] {
			if r.Score > best.Score {
				best = r
			}
		}
		return best, nil
	}

	var obj zeroShotResponse
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Result{}, fmt.Errorf("decode error: %v", err)
	}
	if len(obj.Labels) == 0 || len(obj.Labels) != len(obj.Scores) {
		return Result{}, fmt.Errorf("malformed response: %d labels, %d scores", len(obj.Labels), len(obj.Scores))
	}
	best := 0
	for i, s := range obj.Scores {
		if s > obj.Scores[best] {
			best = i
		}
	}
	return Result{Label: obj.Labels[best], Score: obj.Scores[best]}, nil
}
