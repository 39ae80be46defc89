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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Response holds the status code and raw body returned by the cluster.
type Response struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       []byte
}

// errorResponse is the error envelope returned by the management API.
type errorResponse struct {
	ErrorResponse struct {
		StatusCode  int    `json:"statusCode"`
		Status      string `json:"status"`
		MessageCode string `json:"messageCode"`
		Message     string `json:"message"`
	} `json:"errorResponse"`
}

// ErrorMessage returns the server message from the error envelope,
// falling back to the raw body when the envelope is missing.
func (r *Response) ErrorMessage() string {
	var e errorResponse
	if err := json.Unmarshal(r.Body, &e); err == nil && e.ErrorResponse.Message != "" {
		if e.ErrorResponse.MessageCode != "" {
			return fmt.Sprintf("%s: %s", e.ErrorResponse.MessageCode, e.ErrorResponse.Message)
		}
		return e.ErrorResponse.Message
	}
	return strings.TrimSpace(string(r.Body))
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%s %s response decoding failed, error: %w", r.Method, r.Endpoint, err)
	}
	return nil
}

// Is reports whether the response has one of the given status codes.
func (r *Response) Is(codes ...int) bool {
	for _, code := range codes {
		if r.StatusCode == code {
			return true
		}
	}
	return false
}

// StatusError is returned when the cluster answers with an unexpected status code.
type StatusError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Message    string
}

// NewStatusError builds a StatusError from the given response.
func NewStatusError(resp *Response) *StatusError {
	return &StatusError{
		Method:     resp.Method,
		Endpoint:   resp.Endpoint,
		StatusCode: resp.StatusCode,
		Message:    resp.ErrorMessage(),
	}
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s [Error %d]", e.Method, e.Endpoint, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// IsNotFound returns true if the error is a StatusError with code 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode returns the status code carried by a StatusError, or zero.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
