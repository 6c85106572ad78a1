// Package ghstore persists catalog blobs to a GitHub repository through the
// contents API, treating it as a versioned read-modify-write content store.
package ghstore

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.github.com"

// ErrNoToken is returned when a write is attempted without a bearer
// credential. The token lives in memory for the session only; this package
// never stores it durably.
var ErrNoToken = errors.New("github token is required for commits")

// Client talks to the contents API for one repository and branch.
type Client struct {
	Owner   string
	Repo    string
	Branch  string
	Token   string
	BaseURL string // overridable for tests

	httpClient *http.Client
}

// NewClient creates a contents API client.
func NewClient(owner, repo, branch, token string) *Client {
	return &Client{
		Owner:   owner,
		Repo:    repo,
		Branch:  branch,
		Token:   token,
		BaseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.BaseURL, c.Owner, c.Repo, url.PathEscape(path))
}

func (c *Client) setHeaders(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
}

// GetSHA fetches the current revision identifier for a path. An absent path
// is not an error; it reports an empty sha.
func (c *Client) GetSHA(ctx context.Context, path string) (string, error) {
	reqURL := c.contentsURL(path) + "?ref=" + url.QueryEscape(c.Branch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build contents request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch revision for %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("revision fetch for %s returned status %d: %s", path, resp.StatusCode, string(body))
	}

	var payload struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode contents response: %w", err)
	}
	return payload.SHA, nil
}

// PutFile creates or updates a path with the given content. The write is
// conditional on the current revision; on a conflict the revision is
// re-fetched once and the write retried. A second failure, or any
// non-conflict error, is surfaced with the underlying status and message.
func (c *Client) PutFile(ctx context.Context, path string, content []byte, message string) error {
	if c.Token == "" {
		return ErrNoToken
	}

	sha, err := c.GetSHA(ctx, path)
	if err != nil {
		return err
	}

	err = c.put(ctx, path, content, message, sha)
	if err == nil {
		return nil
	}
	if !isConflict(err) {
		return err
	}

	slog.Warn("Conflicting revision on commit, retrying once", "path", path)
	sha, shaErr := c.GetSHA(ctx, path)
	if shaErr != nil {
		return shaErr
	}
	return c.put(ctx, path, content, message, sha)
}

type putError struct {
	status int
	body   string
}

func (e *putError) Error() string {
	return fmt.Sprintf("github commit failed with status %d: %s", e.status, e.body)
}

// The API reports a stale revision as 409, and a write that omitted a
// required revision as 422. Both mean the same thing here: someone else
// committed since the sha was fetched.
func isConflict(err error) bool {
	var pe *putError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.status == http.StatusConflict || pe.status == http.StatusUnprocessableEntity
}

func (c *Client) put(ctx context.Context, path string, content []byte, message, sha string) error {
	body := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  c.Branch,
	}
	if sha != "" {
		body["sha"] = sha
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal commit payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentsURL(path), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build commit request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("commit request for %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	return &putError{status: resp.StatusCode, body: string(respBody)}
}
