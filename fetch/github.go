// Package fetch loads source trees for analysis, either from the GitHub API
// or from a local directory.
package fetch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"

	// maxFiles bounds how many files one analysis will pull.
	maxFiles = 100

	// maxConcurrentFetches bounds parallel content requests.
	maxConcurrentFetches = 5

	maxRetries = 3
)

var (
	// ErrNotFound means the repository or branch does not exist or is not
	// accessible with the current credentials.
	ErrNotFound = errors.New("repository not found")

	// ErrRateLimited means the GitHub API rejected the request for quota
	// reasons even after retries.
	ErrRateLimited = errors.New("github api rate limit exceeded")
)

// Repository is a fetched source tree plus identifying metadata.
type Repository struct {
	Owner         string
	Name          string
	FullName      string
	Description   string
	Language      string
	Stars         int
	DefaultBranch string

	// Files maps repo-relative paths to their contents.
	Files map[string]string

	TotalFilesFound int
}

// Paths returns the fetched file paths in sorted order.
func (r *Repository) Paths() []string {
	paths := make([]string, 0, len(r.Files))
	for p := range r.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Client fetches repositories from the GitHub API. A token is optional and
// raises rate limits.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *slog.Logger

	// retryWait is overridable so tests do not sleep for real.
	retryWait func(attempt int)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken authenticates API requests with a personal access token.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger sets the client's logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a GitHub API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		logger:     slog.Default(),
		retryWait: func(attempt int) {
			time.Sleep(time.Duration(attempt+1) * 5 * time.Second)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseRepoURL extracts owner and repo from a GitHub repository URL.
func ParseRepoURL(rawURL string) (owner, repo string, err error) {
	rawURL = strings.TrimSuffix(rawURL, ".git")

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parsing repository url: %w", err)
	}
	if u.Host != "github.com" {
		return "", "", fmt.Errorf("url must point at github.com, got %q", u.Host)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository url %q", rawURL)
	}
	return parts[0], parts[1], nil
}

type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int    `json:"size"`
}

type repoInfo struct {
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	Language      string `json:"language"`
	Stars         int    `json:"stargazers_count"`
	DefaultBranch string `json:"default_branch"`
}

type fileContent struct {
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// FetchRepository pulls the analyzable subset of a repository: the file
// tree, filtered for relevance, Python files preferred and capped at
// maxFiles, then all contents fetched with bounded concurrency.
func (c *Client) FetchRepository(ctx context.Context, repoURL string) (*Repository, error) {
	owner, name, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	c.logger.Info("fetching repository", slog.String("owner", owner), slog.String("repo", name))

	var info repoInfo
	if err := c.getJSON(ctx, fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, name), &info); err != nil {
		return nil, err
	}

	branch := info.DefaultBranch
	if branch == "" {
		branch = "main"
	}

	entries, err := c.fetchTree(ctx, owner, name, branch)
	if err != nil {
		return nil, err
	}

	var relevant []treeEntry
	for _, e := range entries {
		if e.Type != "blob" {
			continue
		}
		if inSkippedDirectory(e.Path) || !includeFile(e.Path) {
			continue
		}
		relevant = append(relevant, e)
	}

	// Python files first, larger files first within each class.
	sort.SliceStable(relevant, func(i, j int) bool {
		pi, pj := strings.HasSuffix(relevant[i].Path, ".py"), strings.HasSuffix(relevant[j].Path, ".py")
		if pi != pj {
			return pi
		}
		return relevant[i].Size > relevant[j].Size
	})

	totalFound := len(relevant)
	if len(relevant) > maxFiles {
		c.logger.Warn("limiting file count", slog.Int("found", totalFound), slog.Int("limit", maxFiles))
		relevant = relevant[:maxFiles]
	}

	repo := &Repository{
		Owner:           owner,
		Name:            name,
		FullName:        info.FullName,
		Description:     info.Description,
		Language:        info.Language,
		Stars:           info.Stars,
		DefaultBranch:   branch,
		Files:           make(map[string]string, len(relevant)),
		TotalFilesFound: totalFound,
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, maxConcurrentFetches)
	)
	for _, entry := range relevant {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			content, err := c.fetchFile(ctx, owner, name, path, branch)
			if err != nil {
				c.logger.Warn("skipping file", slog.String("path", path), slog.String("error", err.Error()))
				return
			}
			if content == "" {
				return
			}
			mu.Lock()
			repo.Files[path] = content
			mu.Unlock()
		}(entry.Path)
	}
	wg.Wait()

	c.logger.Info("repository fetched", slog.String("owner", owner), slog.String("repo", name), slog.Int("files", len(repo.Files)))
	return repo, nil
}

// fetchTree fetches the recursive file tree, falling back from the default
// branch to master and main.
func (c *Client) fetchTree(ctx context.Context, owner, repo, branch string) ([]treeEntry, error) {
	var lastErr error
	for _, b := range dedupeBranches(branch, "master", "main") {
		var tree struct {
			Tree []treeEntry `json:"tree"`
		}
		url := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", c.baseURL, owner, repo, b)
		err := c.getJSON(ctx, url, &tree)
		if err == nil {
			return tree.Tree, nil
		}
		lastErr = err
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("no usable branch found: %w", lastErr)
}

// fetchFile fetches and decodes one file's content.
func (c *Client) fetchFile(ctx context.Context, owner, repo, path, branch string) (string, error) {
	var fc fileContent
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", c.baseURL, owner, repo, path, branch)
	if err := c.getJSON(ctx, url, &fc); err != nil {
		return "", err
	}

	if fc.Encoding != "base64" {
		return fc.Content, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(fc.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", path, err)
	}
	return string(decoded), nil
}

// getJSON performs a GET with auth headers, retrying on rate limits and
// transient failures, and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	for attempt := 0; ; attempt++ {
		err := c.tryGetJSON(ctx, url, out)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNotFound) || attempt >= maxRetries || ctx.Err() != nil {
			return err
		}
		c.logger.Warn("request failed, retrying", slog.String("url", url), slog.Int("attempt", attempt+1), slog.String("error", err.Error()))
		c.retryWait(attempt)
	}
}

func (c *Client) tryGetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "signalbox-analyzer/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(out)
	case http.StatusForbidden, http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("github api returned %s", resp.Status)
	}
}

func dedupeBranches(branches ...string) []string {
	seen := make(map[string]bool, len(branches))
	var out []string
	for _, b := range branches {
		if b != "" && !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	return out
}
