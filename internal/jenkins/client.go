package jenkins

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jenkinsapi/jenkins-workbench/internal/models"
)

// Transport is what the facade needs from an HTTP client. Paths are relative
// to the controller root and already expanded.
type Transport interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Post(ctx context.Context, path string, body []byte, contentType string) ([]byte, error)
	PostForm(ctx context.Context, path string, fields url.Values, expectResult bool) ([]byte, error)
}

const crumbIssuerPath = "/crumbIssuer/api/json"

type crumb struct {
	Field string `json:"crumbRequestField"`
	Value string `json:"crumb"`
}

// Client talks to one Jenkins controller with basic auth. POSTs carry a CSRF
// crumb when the controller issues one.
type Client struct {
	baseURL    string
	username   string
	token      string
	httpClient *http.Client
	log        *logrus.Entry

	crumbMu       sync.Mutex
	crumb         *crumb
	crumbDisabled bool
}

// NewClient creates a Client from a Connection.
func NewClient(conn *models.Connection, log *logrus.Entry) (*Client, error) {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if conn.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	} else if conn.CACert != "" {
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM([]byte(conn.CACert)) {
			return nil, errors.New("ca_cert: no certificates found in PEM data")
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: caCertPool}
	}
	// Crumbs are bound to the web session unless an API token is used.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Client{
		baseURL:  conn.BaseURL(),
		username: conn.Username,
		token:    conn.Token,
		log:      log.WithField("jenkins", conn.BaseURL()),
		httpClient: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   conn.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Re-apply basic auth on redirects
				if len(via) > 0 && conn.Username != "" {
					req.SetBasicAuth(conn.Username, conn.Token)
				}
				return nil
			},
		},
	}, nil
}

// Get performs an authenticated GET request and returns the response body.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	body, _, err := c.do(ctx, http.MethodGet, path, nil, "")
	return body, err
}

// Post sends body with the given content type. A nil body sends an empty
// POST, which is how most Jenkins actions are triggered.
func (c *Client) Post(ctx context.Context, path string, body []byte, contentType string) ([]byte, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	resp, _, err := c.do(ctx, http.MethodPost, path, r, contentType)
	return resp, err
}

// PostForm sends fields url-encoded. The response body is only returned when
// expectResult is set.
func (c *Client) PostForm(ctx context.Context, path string, fields url.Values, expectResult bool) ([]byte, error) {
	resp, _, err := c.do(ctx, http.MethodPost, path, strings.NewReader(fields.Encode()), "application/x-www-form-urlencoded")
	if err != nil || !expectResult {
		return nil, err
	}
	return resp, nil
}

// Ping checks connectivity and credentials and returns the controller
// version from the X-Jenkins header ("" when the header is absent).
func (c *Client) Ping(ctx context.Context) (string, error) {
	_, header, err := c.do(ctx, http.MethodGet, "/api/json?tree=mode", nil, "")
	if err != nil {
		return "", err
	}
	return header.Get("X-Jenkins"), nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method == http.MethodPost {
		cr, err := c.crumbFor(ctx)
		if err != nil {
			return nil, nil, err
		}
		if cr != nil {
			req.Header.Set(cr.Field, cr.Value)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(method, "error").Inc()
		return nil, nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()
	requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &TransportError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}
	c.log.WithFields(logrus.Fields{
		"method":  method,
		"path":    path,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("jenkins request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusForbidden && method == http.MethodPost {
			// A stale crumb is refetched on the next POST.
			c.resetCrumb()
		}
		return nil, nil, &TransportError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(data), 200),
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}
	return data, resp.Header, nil
}

// crumbFor returns the cached crumb, fetching it on first use. Controllers
// without CSRF protection answer 404, which disables crumbs for the client.
func (c *Client) crumbFor(ctx context.Context) (*crumb, error) {
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()
	if c.crumbDisabled || c.crumb != nil {
		return c.crumb, nil
	}
	body, _, err := c.do(ctx, http.MethodGet, crumbIssuerPath, nil, "")
	if err != nil {
		if IsNotFound(err) {
			c.crumbDisabled = true
			return nil, nil
		}
		return nil, fmt.Errorf("fetching crumb: %w", err)
	}
	var cr crumb
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("parsing crumb: %w", err)
	}
	if cr.Field == "" || cr.Value == "" {
		c.crumbDisabled = true
		return nil, nil
	}
	c.crumb = &cr
	return c.crumb, nil
}

func (c *Client) resetCrumb() {
	c.crumbMu.Lock()
	c.crumb = nil
	c.crumbMu.Unlock()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
