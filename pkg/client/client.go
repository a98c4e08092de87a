// Package client talks to the battery-monitor daemon over its unix
// control socket.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/distatus/battery"
	"github.com/sirupsen/logrus"

	"github.com/rg3/battery-monitor/pkg/config"
	"github.com/rg3/battery-monitor/pkg/daemon"
)

// Client is a struct for communicating with the battery-monitor daemon
type Client struct {
	socketPath string
	httpClient *http.Client
}

// NewClient is a constructor for creating a new Client
func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext: func(_ context.Context, _, _ string) (net.Conn, error) {
					conn, err := net.Dial("unix", socketPath)
					if err != nil {
						if os.IsNotExist(err) {
							return nil, ErrDaemonNotRunning
						}
						if os.IsPermission(err) {
							return nil, ErrPermissionDenied
						}
						logrus.Errorf("failed to connect to unix socket: %v", err)
						return nil, err
					}
					return conn, err
				},
			},
		},
	}
}

// Send is a method for sending a request to the daemon
func (c *Client) Send(method string, path string, data string) (string, error) {
	logrus.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"data":   data,
		"unix":   c.socketPath,
	}).Debug("sending request")

	var resp *http.Response
	var err error
	url := "http://unix" + path

	switch method {
	case "GET":
		resp, err = c.httpClient.Get(url)
	case "PUT":
		req, err2 := http.NewRequest("PUT", url, strings.NewReader(data))
		if err2 != nil {
			return "", fmt.Errorf("failed to create request: %w", err2)
		}
		resp, err = c.httpClient.Do(req)
	default:
		return "", fmt.Errorf("unknown method: %s", method)
	}

	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			logrus.Errorf("failed to close response body: %v", err)
		}
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	body := string(b)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("got %d: %s", resp.StatusCode, body)
	}

	return body, nil
}

// Get is a method for sending a GET request to the daemon
func (c *Client) Get(path string) (string, error) {
	return c.Send("GET", path, "")
}

// Put is a method for sending a PUT request to the daemon
func (c *Client) Put(path string, data string) (string, error) {
	return c.Send("PUT", path, data)
}

// GetState returns the last sampled battery status.
func (c *Client) GetState() (*daemon.Status, error) {
	body, err := c.Get("/state")
	if err != nil {
		return nil, err
	}
	var s daemon.Status
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &s, nil
}

// GetConfig returns the daemon's effective configuration.
func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	body, err := c.Get("/config")
	if err != nil {
		return nil, err
	}
	var fc config.RawFileConfig
	if err := json.Unmarshal([]byte(body), &fc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &fc, nil
}

// SetPollInterval changes the daemon's poll interval.
func (c *Client) SetPollInterval(seconds int) (string, error) {
	return c.Put("/config/period", strconv.Itoa(seconds))
}

// GetShutdownActive reports whether a shutdown is currently launched.
func (c *Client) GetShutdownActive() (bool, error) {
	body, err := c.Get("/shutdown-active")
	if err != nil {
		return false, err
	}
	var active bool
	if err := json.Unmarshal([]byte(body), &active); err != nil {
		return false, fmt.Errorf("failed to unmarshal shutdown state: %w", err)
	}
	return active, nil
}

// GetBatteryInfo returns OS-level battery details.
func (c *Client) GetBatteryInfo() (*battery.Battery, error) {
	body, err := c.Get("/battery-info")
	if err != nil {
		return nil, err
	}
	var bat battery.Battery
	if err := json.Unmarshal([]byte(body), &bat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal battery info: %w", err)
	}
	return &bat, nil
}

// GetVersion returns the daemon's version.
func (c *Client) GetVersion() (string, error) {
	body, err := c.Get("/version")
	if err != nil {
		return "", err
	}
	var v string
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return "", fmt.Errorf("failed to unmarshal version: %w", err)
	}
	return v, nil
}
