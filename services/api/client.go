package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/kymoh/darasa/core"
	"github.com/kymoh/darasa/core/session"
)

// Client talks to the campus API: it attaches the bearer token, retries
// exactly once on a transport-level failure, and classifies responses into
// the shared error taxonomy. Any 401/403 invalidates the session globally,
// regardless of which operation triggered it.
type Client struct {
	baseURL    string
	http       *http.Client
	sess       session.Manager
	log        core.Logger
	retryDelay time.Duration
}

func NewClient(conf *core.Config, sess session.Manager, logger core.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(conf.API.BaseURL, "/") + "/api",
		http:       &http.Client{Timeout: conf.API.RequestTimeout},
		sess:       sess,
		log:        logger,
		retryDelay: conf.API.RetryDelay,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	data, status, err := drain(resp)
	if err != nil {
		return err
	}
	if err := c.classify(status, data); err != nil {
		return err
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return errors.Wrapf(err, "decoding %s %s response", method, path)
		}
	}
	return nil
}

// delete mirrors do but treats 404 as success: deleting what is already gone
// is not an error.
func (c *Client) delete(ctx context.Context, path string) error {
	resp, err := c.send(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	data, status, err := drain(resp)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return nil
	}
	return c.classify(status, data)
}

// send issues the request, retrying once after retryDelay when no response
// was received at all. Anything with a status code is not retried.
func (c *Client) send(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, errors.Wrapf(err, "encoding %s %s request", method, path)
		}
	}

	resp, err := c.attempt(ctx, method, path, payload)
	if err == nil {
		return resp, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	c.log.Debug("transport failure, retrying once", method, path, err)

	select {
	case <-time.After(c.retryDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	resp, err = c.attempt(ctx, method, path, payload)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, core.NewNetworkError(err)
	}
	return resp, nil
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s %s request", method, path)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.sess.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.http.Do(req)
}

func (c *Client) classify(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		// Fatal to the session, whatever the operation was.
		if err := c.sess.Invalidate(); err != nil {
			c.log.Error("invalidating session", err)
		}
		return core.NewAuthError(errMessage(status, body))
	case status >= 500:
		return core.NewServerError(status, errMessage(status, body))
	case status >= 400:
		return core.NewValidationError(errors.New(errMessage(status, body)))
	}
	return nil
}

func drain(resp *http.Response) ([]byte, int, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, core.NewNetworkError(err)
	}
	return data, resp.StatusCode, nil
}

// errMessage extracts the optional `message` field from a JSON error body;
// anything unparseable yields the generic status text.
func errMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
			return payload.Message
		}
	}
	return fmt.Sprintf("server responded with status %d", status)
}
