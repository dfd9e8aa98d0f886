package fetch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		url         string
		owner, repo string
		wantErr     bool
	}{
		{"https://github.com/acme/widgets", "acme", "widgets", false},
		{"https://github.com/acme/widgets.git", "acme", "widgets", false},
		{"https://github.com/acme/widgets/tree/main/src", "acme", "widgets", false},
		{"https://gitlab.com/acme/widgets", "", "", true},
		{"https://github.com/acme", "", "", true},
		{"not a url at all ://", "", "", true},
	}

	for _, tt := range tests {
		owner, repo, err := ParseRepoURL(tt.url)
		if tt.wantErr {
			assert.Error(t, err, tt.url)
			continue
		}
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.owner, owner)
		assert.Equal(t, tt.repo, repo)
	}
}

func TestIncludeFile(t *testing.T) {
	assert.True(t, includeFile("src/agents.py"))
	assert.True(t, includeFile("docs/README.md"))
	assert.True(t, includeFile("OAI_CONFIG_LIST"))
	assert.True(t, includeFile("deploy/docker-compose.yml"))
	assert.False(t, includeFile("assets/logo.png"))
	assert.False(t, includeFile("bin/app"))
}

func TestInSkippedDirectory(t *testing.T) {
	assert.True(t, inSkippedDirectory("node_modules/lib/index.js"))
	assert.True(t, inSkippedDirectory("src/__pycache__/mod.pyc"))
	assert.False(t, inSkippedDirectory("src/agents.py"))
}

// fakeGitHub serves the minimal API surface FetchRepository touches.
func fakeGitHub(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/widgets", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"full_name":        "acme/widgets",
			"description":      "test fixture",
			"language":         "Python",
			"stargazers_count": 7,
			"default_branch":   "main",
		})
	})
	mux.HandleFunc("GET /repos/acme/widgets/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		var tree []map[string]any
		for path, content := range files {
			tree = append(tree, map[string]any{
				"path": path, "type": "blob", "size": len(content),
			})
		}
		tree = append(tree, map[string]any{"path": "src", "type": "tree", "size": 0})
		json.NewEncoder(w).Encode(map[string]any{"tree": tree})
	})
	mux.HandleFunc("GET /repos/acme/widgets/contents/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path[len("/repos/acme/widgets/contents/"):]
		content, ok := files[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(content)),
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchRepository(t *testing.T) {
	files := map[string]string{
		"src/agents.py":    "import autogen\n",
		"requirements.txt": "autogen\n",
		"assets/logo.png":  "binary",
	}
	srv := fakeGitHub(t, files)
	c := NewClient(WithBaseURL(srv.URL))

	repo, err := c.FetchRepository(context.Background(), "https://github.com/acme/widgets")
	require.NoError(t, err)

	assert.Equal(t, "acme/widgets", repo.FullName)
	assert.Equal(t, "main", repo.DefaultBranch)
	assert.Equal(t, "import autogen\n", repo.Files["src/agents.py"])
	assert.Equal(t, "autogen\n", repo.Files["requirements.txt"])
	assert.NotContains(t, repo.Files, "assets/logo.png")
	assert.Equal(t, 2, repo.TotalFilesFound)
	assert.Equal(t, []string{"requirements.txt", "src/agents.py"}, repo.Paths())
}

func TestFetchRepository_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.FetchRepository(context.Background(), "https://github.com/acme/widgets")

	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetJSON_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"full_name": "acme/widgets"})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithBaseURL(srv.URL))
	c.retryWait = func(int) {}

	var info struct {
		FullName string `json:"full_name"`
	}
	err := c.getJSON(context.Background(), srv.URL, &info)
	require.NoError(t, err)
	assert.Equal(t, "acme/widgets", info.FullName)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetJSON_RateLimitExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithBaseURL(srv.URL))
	c.retryWait = func(int) {}

	err := c.getJSON(context.Background(), srv.URL, &struct{}{})
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestGetJSON_SendsToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithBaseURL(srv.URL), WithToken("sekrit"))
	require.NoError(t, c.getJSON(context.Background(), srv.URL, &struct{}{}))
	assert.Equal(t, "token sekrit", got)
}

func TestLoadDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "x"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "app.py"), []byte("import autogen\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "x", "index.js"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "logo.png"), []byte{0x89}, 0o644))

	files, err := LoadDirectory(root)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"src/app.py": "import autogen\n"}, files)
}

func TestLoadDirectory_NotADirectory(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	_, err := LoadDirectory(f)
	assert.Error(t, err)
}
