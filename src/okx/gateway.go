package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const apiPrefix = "/api/v5"

// isoTimestampLayout is the wall-clock format covered by the request
// signature (ISO-8601 UTC with millisecond precision).
const isoTimestampLayout = "2006-01-02T15:04:05.000Z"

// Credentials is the immutable key/secret/passphrase triple. A Gateway
// is constructed from a snapshot; config changes build a new Gateway
// instead of mutating a live one.
type Credentials struct {
	Key        string
	Secret     string
	Passphrase string
}

// Complete reports whether all three fields are present.
func (c Credentials) Complete() bool {
	return c.Key != "" && c.Secret != "" && c.Passphrase != ""
}

// Envelope is the exchange's standard response wrapper. Code "0" means
// success; anything else is an API-level failure even under HTTP 200.
type Envelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Gateway issues single-attempt signed HTTP calls against the exchange.
// No retries anywhere; callers decide per-call whether a failure is
// fatal or absorbed.
type Gateway struct {
	creds Credentials
	http  *resty.Client
	now   func() time.Time
}

func NewGateway(creds Credentials) *Gateway {
	config := GetConfig()

	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.HTTPTimeout)

	return &Gateway{
		creds: creds,
		http:  httpClient,
		now:   time.Now,
	}
}

// HasKeys reports whether private endpoints can be called.
func (g *Gateway) HasKeys() bool {
	return g.creds.Complete()
}

// isPublicPath classifies a request path. Public paths never require
// credentials.
func isPublicPath(path string) bool {
	return strings.Contains(path, "/public/") || strings.Contains(path, "/market/")
}

// Request performs one HTTP call and classifies the outcome. Auth
// headers are attached whenever the credential triple is complete,
// public paths included (higher rate-limit tier); signing is skipped
// entirely when no credentials exist. Private paths without complete
// credentials fail with ErrAuthMissing before any network I/O.
func (g *Gateway) Request(ctx context.Context, method, path string, query url.Values, body interface{}) (*Envelope, error) {
	requestPath := apiPrefix + path
	if len(query) > 0 {
		requestPath += "?" + query.Encode()
	}

	if !isPublicPath(path) && !g.creds.Complete() {
		return nil, ErrAuthMissing
	}

	bodyStr := ""
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyStr = string(b)
	}

	req := g.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json")
	if bodyStr != "" {
		req.SetBody(bodyStr)
	}

	if g.creds.Complete() {
		timestamp := g.now().UTC().Format(isoTimestampLayout)
		req.SetHeaders(map[string]string{
			"OK-ACCESS-KEY":        g.creds.Key,
			"OK-ACCESS-SIGN":       Sign(timestamp, method, requestPath, bodyStr, g.creds.Secret),
			"OK-ACCESS-TIMESTAMP":  timestamp,
			"OK-ACCESS-PASSPHRASE": g.creds.Passphrase,
		})
	}

	logger.WithFields(logger.Fields{
		"method": method,
		"path":   requestPath,
		"body":   bodyStr,
	}).Debug("OKX HTTP request")

	resp, err := req.Execute(method, requestPath)
	if err != nil {
		logger.WithError(err).Error("OKX HTTP request failed")
		return nil, &NetworkError{Err: err}
	}

	status := resp.StatusCode()

	logger.WithFields(logger.Fields{
		"status": status,
		"body":   string(resp.Body()),
	}).Debug("OKX HTTP response")

	if status == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}

	if status < 200 || status > 299 {
		var env Envelope
		if jsonErr := json.Unmarshal(resp.Body(), &env); jsonErr == nil && env.Code != "" {
			return nil, &APIError{HTTPStatus: status, Code: env.Code, Msg: env.Msg}
		}
		return nil, &APIError{
			HTTPStatus: status,
			Code:       strconv.Itoa(status),
			Msg:        resp.Status(),
		}
	}

	var env Envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, fmt.Errorf("decode okx envelope: %w", err)
	}

	return &env, nil
}

// Call performs a request and additionally enforces envelope success.
// A non-zero envelope code inside a 2xx response surfaces as APIError.
func (g *Gateway) Call(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	env, err := g.Request(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	if env.Code != "0" {
		return nil, &APIError{HTTPStatus: http.StatusOK, Code: env.Code, Msg: env.Msg}
	}
	return env.Data, nil
}
