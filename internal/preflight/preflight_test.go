package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subburn/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	assert.True(t, CheckDirectoryAccess("test", t.TempDir()).Passed)

	missing := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	assert.False(t, missing.Passed)
	assert.Contains(t, missing.Detail, "does not exist")

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.False(t, CheckDirectoryAccess("test", file).Passed)
}

func TestCheckOpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithAPIKey("good-key"), testsupport.WithBaseURL(srv.URL))
	assert.True(t, CheckOpenAI(context.Background(), cfg).Passed)

	cfg.OpenAI.APIKey = "bad-key"
	result := CheckOpenAI(context.Background(), cfg)
	assert.False(t, result.Passed)
	assert.Contains(t, result.Detail, "401")

	cfg.OpenAI.APIKey = ""
	assert.Equal(t, "API key missing", CheckOpenAI(context.Background(), cfg).Detail)
}

func TestRunAllReportsMissingBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	t.Setenv("PATH", t.TempDir())

	results := RunAll(context.Background(), cfg, Options{})
	failed := Failed(results)
	names := make([]string, 0, len(failed))
	for _, r := range failed {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"FFmpeg", "FFprobe"}, names)
}

func TestRunAllPassesWithStubs(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAPIKey("k"), testsupport.WithStubbedBinaries())
	results := RunAll(context.Background(), cfg, Options{})
	assert.Empty(t, Failed(results))
	assert.True(t, results[len(results)-1].Passed)
}
