/*
Copyright 2021 Stefan Prodan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/go-querystring/query"
)

// Connection holds the address and credentials of one cluster endpoint.
type Connection struct {
	Scheme             string
	Host               string
	Port               int
	Username           string
	Password           string
	InsecureSkipVerify bool
}

// BaseURL returns the connection address in the format '<scheme>://<host>:<port>'.
func (c Connection) BaseURL() string {
	scheme := c.Scheme
	if scheme == "" {
		scheme = "http"
	}
	if c.Port == 0 {
		return fmt.Sprintf("%s://%s", scheme, c.Host)
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

// Request describes a single call against the cluster HTTP API.
type Request struct {
	// Endpoint is the absolute path, it may contain a query string.
	Endpoint string

	// Body is encoded as JSON when not nil.
	Body interface{}

	// Params is either url.Values or a struct with `url` tags.
	Params interface{}
}

// Client performs authenticated JSON requests against a cluster endpoint.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	logger   logr.Logger
}

// New creates a Client for the given connection.
func New(conn Connection, logger logr.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if conn.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		baseURL:  strings.TrimSuffix(conn.BaseURL(), "/"),
		username: conn.Username,
		password: conn.Password,
		http:     &http.Client{Transport: transport, Timeout: 5 * time.Minute},
		logger:   logger,
	}
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, req Request) (*Response, error) {
	return c.Do(ctx, http.MethodGet, req)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, req Request) (*Response, error) {
	return c.Do(ctx, http.MethodPost, req)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, req Request) (*Response, error) {
	return c.Do(ctx, http.MethodPut, req)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, req Request) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, req)
}

// Do issues the request and returns the response with its body fully read.
// Any status code is returned as a Response, only transport failures are errors.
func (c *Client) Do(ctx context.Context, method string, req Request) (*Response, error) {
	target, err := c.url(req)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	contentType := ""
	switch b := req.Body.(type) {
	case nil:
	case []byte:
		body = bytes.NewReader(b)
		contentType = "application/octet-stream"
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("%s %s body encoding failed, error: %w", method, req.Endpoint, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.username != "" {
		httpReq.SetBasicAuth(c.username, c.password)
	}

	c.logger.V(1).Info("request", "method", method, "url", target)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed, error: %w", method, req.Endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s reading response failed, error: %w", method, req.Endpoint, err)
	}

	c.logger.V(1).Info("response", "method", method, "url", target, "status", resp.StatusCode)

	return &Response{
		Method:     method,
		Endpoint:   req.Endpoint,
		StatusCode: resp.StatusCode,
		Body:       data,
	}, nil
}

func (c *Client) url(req Request) (string, error) {
	u, err := url.Parse(c.baseURL + req.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint '%s', error: %w", req.Endpoint, err)
	}

	params, err := encodeParams(req.Params)
	if err != nil {
		return "", err
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

func encodeParams(params interface{}) (url.Values, error) {
	switch p := params.(type) {
	case nil:
		return nil, nil
	case url.Values:
		return p, nil
	default:
		v, err := query.Values(p)
		if err != nil {
			return nil, fmt.Errorf("query params encoding failed, error: %w", err)
		}
		return v, nil
	}
}
