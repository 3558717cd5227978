package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/fairwaylabs/shotlens/internal/model"
	"github.com/fairwaylabs/shotlens/internal/resilience"
)

// EasyOCROptions configures the sidecar client.
type EasyOCROptions struct {
	RequestsPerSecond float64
	Timeout           time.Duration
	MaxRetries        int
}

// EasyOCR talks to an EasyOCR HTTP sidecar. The sidecar receives the
// region image and returns per-token readings with quad boxes and
// confidences.
type EasyOCR struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewEasyOCR creates a sidecar client with rate limiting and retry.
func NewEasyOCR(baseURL string, opts EasyOCROptions) *EasyOCR {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	retry := resilience.DefaultRetryConfig()
	if opts.MaxRetries > 0 {
		retry.MaxAttempts = opts.MaxRetries
	}
	retry.OnRetry = resilience.RetryLogger("easyocr", "readtext")

	return &EasyOCR{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   retry,
	}
}

type easyOCRRequest struct {
	ImageB64 string `json:"image_b64"`
}

type easyOCRToken struct {
	Text       string      `json:"text"`
	Quad       [][]float64 `json:"box"` // four corner points
	Confidence float64     `json:"confidence"`
}

type easyOCRResponse struct {
	Results []easyOCRToken `json:"results"`
}

// Recognize sends the region image to the sidecar and converts its
// readings to observations. Transient failures are retried with
// exponential backoff.
func (e *EasyOCR) Recognize(ctx context.Context, imagePath string) ([]model.Observation, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, eris.Wrapf(err, "ocr: read region image %s", imagePath)
	}

	body, err := json.Marshal(easyOCRRequest{ImageB64: base64.StdEncoding.EncodeToString(data)})
	if err != nil {
		return nil, eris.Wrap(err, "ocr: marshal sidecar request")
	}

	var resp easyOCRResponse
	err = resilience.Do(ctx, e.retry, func(ctx context.Context) error {
		if err := e.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "ocr: rate limit wait")
		}
		return e.post(ctx, body, &resp)
	})
	if err != nil {
		return nil, err
	}

	obs := make([]model.Observation, 0, len(resp.Results))
	for _, tok := range resp.Results {
		obs = append(obs, model.Observation{
			Text:       tok.Text,
			Box:        quadToBox(tok.Quad),
			Confidence: tok.Confidence,
		})
	}
	return obs, nil
}

func (e *EasyOCR) post(ctx context.Context, body []byte, out *easyOCRResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/readtext", bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "ocr: create sidecar request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return resilience.NewTransientError(eris.Wrap(err, "ocr: sidecar request"), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		statusErr := eris.Errorf("ocr: sidecar returned %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrap(err, "ocr: decode sidecar response")
	}
	return nil
}

// quadToBox converts a four-point quad to an axis-aligned box. Returns
// nil when the quad is malformed so the observation degrades to
// location-unknown instead of failing.
func quadToBox(quad [][]float64) *model.Box {
	if len(quad) != 4 {
		return nil
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range quad {
		if len(p) != 2 {
			return nil
		}
		minX = math.Min(minX, p[0])
		minY = math.Min(minY, p[1])
		maxX = math.Max(maxX, p[0])
		maxY = math.Max(maxY, p[1])
	}
	return &model.Box{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
