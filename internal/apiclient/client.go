// Package apiclient talks to the travel backend (/api/reguler/*,
// /api/payment-validations). Every response is normalized into one canonical
// shape here; alternate field spellings never leave this package.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookingflow/internal/domain"

	"github.com/sirupsen/logrus"
)

const maxErrorBody = 64 << 10

type requestIDKey struct{}

// WithRequestID tags outgoing backend calls with the caller's request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger
}

// New builds a client for baseURL (e.g. "http://localhost:8081").
func New(baseURL string, timeout time.Duration, log logrus.FieldLogger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.WithField("module", "APICLIENT"),
	}
}

// do issues one request and decodes a 2xx body into out (when non-nil).
// Non-2xx responses become typed domain errors carrying the server message.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return domain.InternalError{Msg: "gagal menyusun request " + op, Err: err}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return domain.InternalError{Msg: "gagal menyusun request " + op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if rid := requestIDFrom(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		c.log.WithFields(logrus.Fields{"op": op, "request_id": requestIDFrom(ctx)}).WithError(err).Warn("request gagal")
		return domain.UnavailableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"op":         op,
		"status":     resp.StatusCode,
		"latency_ms": float64(time.Since(start).Microseconds()) / 1000.0,
		"request_id": requestIDFrom(ctx),
	}).Debug("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return statusError(op, resp.StatusCode, serverMessage(raw))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.UnavailableError{Op: op, Msg: "respon server tidak valid", Err: err}
	}
	return nil
}

func statusError(op string, status int, msg string) error {
	cause := fmt.Errorf("%s: http %d", op, status)
	switch {
	case status == http.StatusConflict:
		return domain.ConflictError{Resource: "seat", Msg: msg, Err: cause}
	case status == http.StatusNotFound:
		return domain.NotFoundError{Resource: op, Err: cause}
	case status >= 400 && status < 500:
		return domain.ValidationError{Msg: msg, Err: cause}
	default:
		return domain.UnavailableError{Op: op, Msg: msg, Err: cause}
	}
}

// serverMessage extracts {"message"} or {"error"} from an error body.
func serverMessage(raw []byte) string {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return ""
	}
	return pickString(m, "message", "error")
}
