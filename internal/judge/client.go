package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"algoprep/internal/domain/model"
	"algoprep/internal/platform/metrics"

	"github.com/cockroachdb/errors"
)

const maxResponseBytes = 4 << 20

// Submission is one piece of source code to execute.
type Submission struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin"`
}

// Runner executes a submission and classifies the result. It never returns an error:
// every failure is an Outcome.
type Runner interface {
	Run(ctx context.Context, sub Submission) model.Outcome
}

type Client struct {
	baseURL string
	host    string
	apiKey  string
	http    *http.Client
}

// NewClient builds a Judge0 client. An empty apiKey is accepted; Run then reports a
// missing credential without calling out.
func NewClient(baseURL, host, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		host:    host,
		apiKey:  strings.TrimSpace(apiKey),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Run(ctx context.Context, sub Submission) model.Outcome {
	outcome := c.run(ctx, sub)
	metrics.JudgeOutcomes.WithLabelValues(string(outcome.Kind)).Inc()
	return outcome
}

func (c *Client) run(ctx context.Context, sub Submission) model.Outcome {
	if c.apiKey == "" {
		log.Println("WARN: Judge API key is not configured; skipping execution.")
		return MissingCredential()
	}

	body, err := c.post(ctx, sub)
	if err != nil {
		log.Printf("ERROR: Judge submission failed: %v", err)
		return TransportError(err)
	}
	resp, err := ParseResponse(body)
	if err != nil {
		log.Printf("ERROR: Judge response could not be decoded: %v", err)
		return TransportError(err)
	}
	return Classify(resp)
}

func (c *Client) post(ctx context.Context, sub Submission) ([]byte, error) {
	payload, err := json.Marshal(struct {
		Submission
		Wait          bool `json:"wait"`
		Base64Encoded bool `json:"base64_encoded"`
	}{Submission: sub, Wait: true})
	if err != nil {
		return nil, errors.Wrap(err, "marshal submission")
	}

	url := c.baseURL + "/submissions?base64_encoded=false&wait=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build judge request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	if c.host != "" {
		req.Header.Set("X-RapidAPI-Host", c.host)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	metrics.JudgeLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read judge response")
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, errors.Newf("HTTP error! status: %d, message: %s", res.StatusCode, string(data))
	}
	return data, nil
}
