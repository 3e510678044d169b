// Package reportapi is the typed client of the remote Project Report
// Submission System API. Every call takes a context and the acting session
// explicitly; the client itself holds no credentials and no ambient state.
package reportapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/ripoti/core/user"
)

type Client struct {
	baseURL string

	// no client-enforced timeout: a hung request is only ever abandoned via
	// its context (poller teardown, server shutdown).
	http *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    new(http.Client),
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// doJSON issues a request with an optional JSON payload and decodes the JSON
// response into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, sess user.Session, payload, out interface{}) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	data, err := c.do(ctx, method, path, sess, contentType, body)
	if err != nil {
		return err
	}
	if out != nil {
		if err = json.Unmarshal(data, out); err != nil {
			return errors.Wrapf(err, "decoding %s %s response", method, path)
		}
	}
	return nil
}

// do issues a request and returns the raw response body.
// Non-2xx statuses are mapped to this package's error types.
func (c *Client) do(ctx context.Context, method, path string, sess user.Session, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s %s request", method, path)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if !sess.IsZero() {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "calling %s %s", method, path)
	}
	defer res.Body.Close()

	data, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s %s response", method, path)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return nil, newStatusError(res.StatusCode, data)
	}
	return data, nil
}
