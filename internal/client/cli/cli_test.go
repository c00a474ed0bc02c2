package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	mu       sync.Mutex
	created  []map[string]any
	payments string
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["username"] != "Rob" || in["password"] != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"Invalid credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"tok-rob","user_id":"Rob","username":"Rob","expires_at":"2025-01-02T00:00:00Z"}`)
	})
	mux.HandleFunc("/api/payments", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-rob" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"Token expired"}`)
			return
		}
		if r.Method == http.MethodPost {
			var in map[string]any
			_ = json.NewDecoder(r.Body).Decode(&in)
			f.mu.Lock()
			f.created = append(f.created, in)
			f.mu.Unlock()
			_, _ = io.WriteString(w, `{"id":"p-1","userId":"Rob","ownerUsername":"Rob","businessName":"Acme","quantitySold":150,"timestamp":"2025-01-01T10:00:00Z"}`)
			return
		}
		f.mu.Lock()
		body := f.payments
		f.mu.Unlock()
		_, _ = io.WriteString(w, body)
	})
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"healthy","timestamp":"2025-01-01T00:00:00Z"}`)
	})
	return mux
}

func (f *fakeServer) setPayments(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments = body
}

func (f *fakeServer) createdBodies() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.created...)
}

func newFakeServer(t *testing.T) (*fakeServer, string) {
	t.Helper()
	f := &fakeServer{payments: `[]`}
	ts := httptest.NewServer(f.handler())
	t.Cleanup(ts.Close)
	return f, ts.URL
}

func withTempHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("USERPROFILE", dir)
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("1.0.0", "2025-08-13")
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "checkpay 1.0.0 (2025-08-13)\n", out)
}

func TestLogin_PasswordStdinSavesToken(t *testing.T) {
	home := withTempHome(t)
	_, url := newFakeServer(t)

	out, err := execute(t, "s3cret\n", "--server", url, "login", "Rob", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Rob")

	p := filepath.Join(home, ".checkpay_token")
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "tok-rob", string(b))

	fi, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestLogin_PromptsForUsernameAndPassword(t *testing.T) {
	withTempHome(t)
	_, url := newFakeServer(t)

	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }

	out, err := execute(t, "Rob\n", "--server", url, "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Username: ")
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Logged in as Rob")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	home := withTempHome(t)
	_, url := newFakeServer(t)

	_, err := execute(t, "wrong\n", "--server", url, "login", "Rob", "--password-stdin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")

	_, statErr := os.Stat(filepath.Join(home, ".checkpay_token"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestServerURLFromEnv(t *testing.T) {
	withTempHome(t)
	_, url := newFakeServer(t)
	t.Setenv(ServerURLEnv, url)

	out, err := execute(t, "", "health")
	require.NoError(t, err)
	assert.Equal(t, "healthy (2025-01-01 00:00:00 UTC)\n", out)
}

func TestAdd(t *testing.T) {
	home := withTempHome(t)
	f, url := newFakeServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".checkpay_token"), []byte("tok-rob\n"), 0o600))

	img := filepath.Join(t.TempDir(), "check.jpg")
	require.NoError(t, os.WriteFile(img, []byte("hello"), 0o600))

	out, err := execute(t, "", "--server", url, "add", "--business", "Acme", "--quantity", "150", "--image", img)
	require.NoError(t, err)
	assert.Equal(t, "Saved payment p-1 for Acme (150 sold)\n", out)

	created := f.createdBodies()
	require.Len(t, created, 1)
	assert.Equal(t, "Acme", created[0]["businessName"])
	assert.Equal(t, float64(150), created[0]["quantitySold"])
	assert.Equal(t, "aGVsbG8=", created[0]["checkImageBase64"])
}

func TestAdd_Validation(t *testing.T) {
	withTempHome(t)
	f, url := newFakeServer(t)

	img := filepath.Join(t.TempDir(), "check.jpg")
	require.NoError(t, os.WriteFile(img, []byte("x"), 0o600))

	cases := [][]string{
		{"add", "--quantity", "1", "--image", img},
		{"add", "--business", "  ", "--quantity", "1", "--image", img},
		{"add", "--business", "Acme", "--image", img},
		{"add", "--business", "Acme", "--quantity", "-2", "--image", img},
		{"add", "--business", "Acme", "--quantity", "1"},
	}
	for _, args := range cases {
		_, err := execute(t, "", append([]string{"--server", url}, args...)...)
		assert.Error(t, err, args)
	}

	_, err := execute(t, "", "--server", url, "add", "--business", "Acme", "--quantity", "1", "--image", img)
	require.ErrorIs(t, err, errNotLoggedIn)
	assert.Empty(t, f.createdBodies())
}

func TestList(t *testing.T) {
	home := withTempHome(t)
	f, url := newFakeServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".checkpay_token"), []byte("tok-rob"), 0o600))

	out, err := execute(t, "", "--server", url, "list")
	require.NoError(t, err)
	assert.Equal(t, "No payments yet\n", out)

	f.setPayments(`[{"id":"p-2","businessName":"Beta","quantitySold":2,"timestamp":"2025-01-02T10:00:00Z"},
		{"id":"p-1","businessName":"Acme","quantitySold":150,"timestamp":"2025-01-01T10:00:00Z"}]`)
	out, err = execute(t, "", "--server", url, "list", "--limit", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "BUSINESS")
	assert.Contains(t, lines[1], "Beta")
	assert.Contains(t, lines[2], "2025-01-01 10:00:00")
}

func TestList_ExpiredToken(t *testing.T) {
	home := withTempHome(t)
	_, url := newFakeServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".checkpay_token"), []byte("stale"), 0o600))

	_, err := execute(t, "", "--server", url, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkpay login")
}

func TestLogout(t *testing.T) {
	home := withTempHome(t)
	p := filepath.Join(home, ".checkpay_token")
	require.NoError(t, os.WriteFile(p, []byte("tok"), 0o600))

	out, err := execute(t, "", "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out\n", out)
	_, statErr := os.Stat(p)
	assert.True(t, os.IsNotExist(statErr))

	_, err = execute(t, "", "logout")
	require.NoError(t, err)

	_, err = execute(t, "", "list")
	require.ErrorIs(t, err, errNotLoggedIn)
}
