// Package demoapi talks to the public demo account service used for the
// shared demo login and for display-name lookups.
package demoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/common"
)

const (
	DefaultBaseURL = "https://reqres.in/api"
	DemoEmail      = "eve.holt@reqres.in"
	DemoPassword   = "cityslicka"

	maxPages = 20
)

// HTTPError is a non-2xx answer from the demo service. It always matches
// common.ErrTransport.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return fmt.Sprintf("invalid credentials for the demo service, use %s / %s", DemoEmail, DemoPassword)
	case http.StatusRequestHeaderFieldsTooLarge:
		return "request too large for the demo service"
	default:
		return fmt.Sprintf("failed (%d): %s", e.StatusCode, e.Body)
	}
}

func (e *HTTPError) Unwrap() error { return common.ErrTransport }

type RemoteUser struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (u RemoteUser) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type UsersPage struct {
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	Data       []RemoteUser `json:"data"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Login exchanges the demo credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("%w: demo login returned no token", common.ErrTransport)
	}
	return out.Token, nil
}

func (c *Client) Users(ctx context.Context, page int) (*UsersPage, error) {
	url := fmt.Sprintf("%s/users?page=%d", c.baseURL, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	var out UsersPage
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindDisplayName walks the paged listing and returns the name of the user
// with the given email, or "" if nobody matches.
func (c *Client) FindDisplayName(ctx context.Context, email string) (string, error) {
	for page := 1; page <= maxPages; page++ {
		p, err := c.Users(ctx, page)
		if err != nil {
			return "", err
		}
		for _, u := range p.Data {
			if strings.EqualFold(u.Email, email) {
				return u.DisplayName(), nil
			}
		}
		if page >= p.TotalPages {
			break
		}
	}
	return "", nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", common.ErrTransport, req.URL.Path, err)
	}
	return nil
}
