// Package roboflow implements the VisionService interface against a remote
// serverless detection workflow. The backing model can cold-start, so every
// workflow call runs inside a bounded retry loop with a linear backoff.
package roboflow

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/myboiiPrime/AI-food/internal/domain/detection"
	"github.com/myboiiPrime/AI-food/internal/infrastructure/config"
	"github.com/myboiiPrime/AI-food/pkg/errors"
	"go.uber.org/zap"
)

// Client implements the VisionService interface using the workflow API
type Client struct {
	baseURL    string
	apiKey     string
	workspace  string
	workflowID string
	client     *http.Client
	logger     *zap.Logger
	retry      RetryPolicy
	sleep      func(time.Duration)

	// threshold is the only mutable state on the process-wide handle.
	mu        sync.RWMutex
	threshold float64
}

// NewClient creates a new workflow client
func NewClient(cfg config.VisionConfig, logger *zap.Logger) *Client {
	retry := RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseWait:    cfg.RetryBaseWait,
	}
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryPolicy()
	}

	logger.Info("vision client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("workspace", cfg.Workspace),
		zap.String("workflow_id", cfg.WorkflowID),
		zap.Float64("confidence_threshold", cfg.ConfidenceThreshold),
		zap.Int("max_attempts", retry.MaxAttempts))

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		workspace:  cfg.Workspace,
		workflowID: cfg.WorkflowID,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:    logger.Named("roboflow-client"),
		retry:     retry,
		sleep:     time.Sleep,
		threshold: cfg.ConfidenceThreshold,
	}
}

// Workflow API structures
type workflowRequest struct {
	APIKey string         `json:"api_key"`
	Inputs workflowInputs `json:"inputs"`
}

type workflowInputs struct {
	Image imageInput `json:"image"`
}

type imageInput struct {
	Type  string `json:"type"` // "url" or "base64"
	Value string `json:"value"`
}

// workflowOutput is one entry of the workflow result list. The prediction
// payload shape varies between workflow versions, so fields stay raw until
// extraction.
type workflowOutput map[string]json.RawMessage

type prediction struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// DetectIngredients detects ingredients from an image file or URL and
// returns the unique lower-cased labels above the confidence threshold,
// in first-seen prediction order.
func (c *Client) DetectIngredients(ctx context.Context, image string) ([]string, error) {
	outputs, err := c.runWorkflow(ctx, image)
	if err != nil {
		return nil, err
	}

	threshold := c.ConfidenceThreshold()
	seen := make(map[string]struct{})
	ingredients := []string{}

	for _, p := range extractPredictions(outputs) {
		if p.Confidence < threshold {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(p.Class))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		ingredients = append(ingredients, name)
	}

	c.logger.Debug("ingredients detected",
		zap.Int("count", len(ingredients)),
		zap.Float64("threshold", threshold))

	return ingredients, nil
}

// DetectIngredientsDetailed returns one detection per kept prediction,
// duplicates preserved, confidence rounded to three decimals.
func (c *Client) DetectIngredientsDetailed(ctx context.Context, image string) ([]detection.Detection, error) {
	outputs, err := c.runWorkflow(ctx, image)
	if err != nil {
		return nil, err
	}

	threshold := c.ConfidenceThreshold()
	detections := []detection.Detection{}

	for _, p := range extractPredictions(outputs) {
		if p.Confidence < threshold {
			continue
		}
		detections = append(detections, detection.Detection{
			Name:       strings.ToLower(strings.TrimSpace(p.Class)),
			Confidence: math.Round(p.Confidence*1000) / 1000,
			BBox: detection.BoundingBox{
				X:      p.X,
				Y:      p.Y,
				Width:  p.Width,
				Height: p.Height,
			},
		})
	}

	return detections, nil
}

// SetConfidenceThreshold sets the minimum confidence for predictions.
// Out-of-range values are rejected, never clamped.
func (c *Client) SetConfidenceThreshold(threshold float64) error {
	if threshold < 0.0 || threshold > 1.0 {
		return errors.NewValidationError("confidence threshold must be between 0.0 and 1.0")
	}

	c.mu.Lock()
	c.threshold = threshold
	c.mu.Unlock()

	c.logger.Info("confidence threshold updated", zap.Float64("threshold", threshold))
	return nil
}

// ConfidenceThreshold returns the current confidence threshold.
func (c *Client) ConfidenceThreshold() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.threshold
}

// runWorkflow issues the workflow call with retry on cold starts. Transport
// failures are not retried; only the "model is being initialized" signal is.
// If the retry budget is spent while the model is still warming up, a typed
// MODEL_INITIALIZING error is returned instead of the raw payload.
func (c *Client) runWorkflow(ctx context.Context, image string) ([]workflowOutput, error) {
	input, err := c.buildImageInput(image)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		outputs, err := c.callWorkflow(ctx, input)
		if err != nil {
			return nil, err
		}

		if !isInitializing(outputs) {
			return outputs, nil
		}

		if attempt < c.retry.MaxAttempts-1 {
			wait := c.retry.Wait(attempt)
			c.logger.Warn("detection model cold start, backing off",
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait))
			c.sleep(wait)
		}
	}

	return nil, errors.NewModelInitializingError(c.retry.MaxAttempts)
}

// buildImageInput resolves a local path to base64 content; URLs pass through.
func (c *Client) buildImageInput(image string) (imageInput, error) {
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return imageInput{Type: "url", Value: image}, nil
	}

	data, err := os.ReadFile(image)
	if err != nil {
		return imageInput{}, errors.NewBadRequestError("unable to read image file").WithCause(err)
	}
	return imageInput{Type: "base64", Value: base64.StdEncoding.EncodeToString(data)}, nil
}

// callWorkflow performs a single workflow request and decodes the output
// list. An unexpected response shape decodes to an empty list rather than
// failing, to stay resilient to upstream schema drift.
func (c *Client) callWorkflow(ctx context.Context, input imageInput) ([]workflowOutput, error) {
	endpoint := fmt.Sprintf("%s/infer/workflows/%s/%s", c.baseURL, c.workspace, c.workflowID)

	reqBody := workflowRequest{
		APIKey: c.apiKey,
		Inputs: workflowInputs{Image: input},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode workflow request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, errors.NewInternalError("failed to create workflow request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.NewExternalServiceError("vision", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewExternalServiceError("vision", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalServiceError("vision",
			fmt.Errorf("workflow API returned status %d", resp.StatusCode))
	}

	return decodeOutputs(body), nil
}

// decodeOutputs accepts either a bare output list or an object wrapping it
// under "outputs". Anything else yields an empty list.
func decodeOutputs(body []byte) []workflowOutput {
	var outputs []workflowOutput
	if err := json.Unmarshal(body, &outputs); err == nil {
		return outputs
	}

	var envelope struct {
		Outputs []workflowOutput `json:"outputs"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		return envelope.Outputs
	}

	return nil
}

// isInitializing reports whether the first output carries the cold-start
// message instead of predictions.
func isInitializing(outputs []workflowOutput) bool {
	if len(outputs) == 0 {
		return false
	}

	raw, ok := outputs[0]["message"]
	if !ok {
		return false
	}

	var message string
	if err := json.Unmarshal(raw, &message); err != nil {
		return false
	}

	return strings.Contains(strings.ToLower(message), "being initialized")
}

// extractPredictions flattens prediction entries across all workflow
// outputs, handling both the nested {"predictions":{"predictions":[...]}}
// and the flat {"predictions":[...]} shapes.
func extractPredictions(outputs []workflowOutput) []prediction {
	var predictions []prediction

	for _, output := range outputs {
		raw, ok := output["predictions"]
		if !ok {
			continue
		}

		var nested struct {
			Predictions []prediction `json:"predictions"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil {
			predictions = append(predictions, nested.Predictions...)
			continue
		}

		var flat []prediction
		if err := json.Unmarshal(raw, &flat); err == nil {
			predictions = append(predictions, flat...)
		}
	}

	return predictions
}
