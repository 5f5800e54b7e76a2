package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"sentinel/internal/models"
	"sentinel/internal/validation"
)

// APIError represents a non-2xx HTTP response from the model provider.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// HuggingFace loads models from the Hugging Face Hub and runs them through
// the hosted inference endpoint.
type HuggingFace struct {
	hubURL       string
	inferenceURL string
	token        string
	httpClient   *http.Client
}

// HFOption configures the HuggingFace provider.
type HFOption func(*HuggingFace)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) HFOption {
	return func(h *HuggingFace) {
		h.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) HFOption {
	return func(h *HuggingFace) {
		h.httpClient = c
	}
}

// NewHuggingFace creates a provider. token may be empty for anonymous access.
func NewHuggingFace(hubURL, inferenceURL, token string, opts ...HFOption) *HuggingFace {
	h := &HuggingFace{
		hubURL:       hubURL,
		inferenceURL: inferenceURL,
		token:        token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Name returns the provider name.
func (h *HuggingFace) Name() string {
	return "huggingface"
}

// hubModelInfo is the subset of the Hub model metadata we check.
type hubModelInfo struct {
	ID          string `json:"id"`
	PipelineTag string `json:"pipeline_tag"`
}

// Load fetches the model's Hub metadata to confirm it exists and is a text
// classifier, then returns a handle bound to the inference endpoint.
func (h *HuggingFace) Load(ctx context.Context, modelID string) (Model, error) {
	if !validation.ValidateModelID(modelID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidModelID, modelID)
	}
	if valid, msg := validation.ValidateURL(h.inferenceURL); !valid {
		return nil, fmt.Errorf("inference URL: %s", msg)
	}

	var info hubModelInfo
	if err := h.doJSON(ctx, http.MethodGet, h.hubURL+"/api/models/"+modelID, nil, &info); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode == http.StatusUnauthorized) {
			return nil, fmt.Errorf("%w: %s: %w", ErrModelNotFound, modelID, err)
		}
		return nil, fmt.Errorf("hub metadata: %w", err)
	}

	switch info.PipelineTag {
	case "", "text-classification", "sentiment-analysis":
	default:
		return nil, fmt.Errorf("%w: %s has pipeline %q", ErrUnsupportedModel, modelID, info.PipelineTag)
	}

	return &hfModel{provider: h, modelID: modelID}, nil
}

// hfModel runs inference for one loaded model.
type hfModel struct {
	provider *HuggingFace
	modelID  string
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

// Run posts text to the inference endpoint. The endpoint answers either
// [[{label,score},...]] or [{label,score},...]; both are accepted.
func (m *hfModel) Run(ctx context.Context, text string) ([]models.LabelScore, error) {
	var raw json.RawMessage
	url := m.provider.inferenceURL + "/models/" + m.modelID
	if err := m.provider.doJSON(ctx, http.MethodPost, url, inferenceRequest{Inputs: text}, &raw); err != nil {
		return nil, err
	}
	return decodeScores(raw)
}

func decodeScores(raw json.RawMessage) ([]models.LabelScore, error) {
	var nested [][]models.LabelScore
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 {
			return nil, fmt.Errorf("%w: empty response", ErrInvalidModelOutput)
		}
		return nested[0], nil
	}

	var flat []models.LabelScore
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModelOutput, err)
	}
	return flat, nil
}

// doJSON sends a request with an optional JSON body and unmarshals a 2xx
// response into dest. Non-2xx responses become *APIError.
func (h *HuggingFace) doJSON(ctx context.Context, method, url string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyStr := string(data)
		if len(bodyStr) > 512 {
			bodyStr = bodyStr[:512]
		}
		return &APIError{StatusCode: resp.StatusCode, Body: bodyStr}
	}

	return json.Unmarshal(data, dest)
}
