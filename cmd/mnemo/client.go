// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// defaultHTTPClient is the package-level HTTP client used by daemon commands.
// Overridden in tests via httptest.
var defaultHTTPClient = &http.Client{
	Timeout: 10 * time.Second,
}

// daemonClient provides HTTP access to a running Mnemo daemon.
type daemonClient struct {
	baseURL string
	http    *http.Client
}

// newDaemonClient creates a client targeting the given host:port address.
func newDaemonClient(addr string) *daemonClient {
	return &daemonClient{
		baseURL: "http://" + addr,
		http:    defaultHTTPClient,
	}
}

// getJSON performs a GET request and decodes the JSON response into dest.
func (c *daemonClient) getJSON(path string, dest any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return c.wrapDialError(err)
	}
	return decodeResponse(resp, dest)
}

// postJSON performs a POST request with a JSON body and decodes the response.
func (c *daemonClient) postJSON(path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return mnemoerr.Wrapf(err, mnemoerr.CodeCLIRequestFailure, "encoding request")
	}

	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return c.wrapDialError(err)
	}
	return decodeResponse(resp, dest)
}

// deleteJSON performs a DELETE request and decodes the JSON response into dest.
func (c *daemonClient) deleteJSON(path string, dest any) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return mnemoerr.Wrapf(err, mnemoerr.CodeCLIRequestFailure, "building request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.wrapDialError(err)
	}
	return decodeResponse(resp, dest)
}

func (c *daemonClient) wrapDialError(err error) error {
	if isDialError(err) {
		return mnemoerr.Errorf(mnemoerr.CodeCLIDaemonNotRunning, "daemon is not running (connection refused)")
	}
	return mnemoerr.Wrapf(err, mnemoerr.CodeCLIRequestFailure, "request failed")
}

func decodeResponse(resp *http.Response, dest any) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return mnemoerr.Errorf(mnemoerr.CodeCLIRequestFailure,
			"daemon returned status %d: %s", resp.StatusCode, string(body))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return mnemoerr.Wrapf(err, mnemoerr.CodeCLIResponseInvalid, "invalid response")
	}
	return nil
}

// isDialError returns true if err is a net dial error (connection refused, etc.).
func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}
