package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cardsite/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiRecorder struct {
	mu       sync.Mutex
	contacts []model.ContactSubmission
	actions  []map[string]any
	status   int
}

func (a *apiRecorder) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/contact", func(w http.ResponseWriter, r *http.Request) {
		var sub model.ContactSubmission
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sub))
		a.mu.Lock()
		a.contacts = append(a.contacts, sub)
		a.mu.Unlock()
		if a.status != 0 {
			w.WriteHeader(a.status)
			_, _ = io.WriteString(w, `{"error":"Failed to save contact information. Please try again."}`)
			return
		}
		_, _ = io.WriteString(w, `{"success":true,"message":"ok"}`)
	})
	mux.HandleFunc("POST /api/analytics", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		a.mu.Lock()
		a.actions = append(a.actions, body)
		a.mu.Unlock()
		_, _ = io.WriteString(w, `{"success":true}`)
	})
	mux.HandleFunc("GET /api/vcard", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="Nick_Janes.vcf"`)
		_, _ = io.WriteString(w, "BEGIN:VCARD\r\nEND:VCARD\r\n")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandStructure(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"submit", "track", "vcard", "share"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.NotEmpty(t, cmd.Short, name)
	}
}

func TestSubmit_ConferenceBanner(t *testing.T) {
	api := &apiRecorder{}
	srv := api.server(t)

	out, err := run(t, "--api", srv.URL, "submit", "--name", "Ava", "--email", "ava@x.com", "--company", "Acme")

	require.NoError(t, err)
	assert.Contains(t, out, "received successfully")
	require.Len(t, api.contacts, 1)
	got := api.contacts[0]
	assert.Equal(t, "Ava", got.Name)
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, "conference_banner", got.Source)
	assert.Empty(t, got.Photo)
}

func TestSubmit_WithPhoto(t *testing.T) {
	api := &apiRecorder{}
	srv := api.server(t)

	path := filepath.Join(t.TempDir(), "selfie.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 640, 480))))
	require.NoError(t, f.Close())

	_, err = run(t, "--api", srv.URL, "submit", "--name", "Bo", "--phone", "555", "--photo", path)

	require.NoError(t, err)
	require.Len(t, api.contacts, 1)
	assert.Equal(t, "selfie_exchange", api.contacts[0].Source)
	assert.True(t, strings.HasPrefix(api.contacts[0].Photo, "data:image/png;base64,"))
}

func TestSubmit_ServerErrorIsReported(t *testing.T) {
	api := &apiRecorder{status: http.StatusInternalServerError}
	srv := api.server(t)

	_, err := run(t, "--api", srv.URL, "submit", "--name", "Ava", "--email", "ava@x.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please try again")
}

func TestTrack_WithMetadata(t *testing.T) {
	api := &apiRecorder{}
	srv := api.server(t)

	_, err := run(t, "--api", srv.URL, "track", "page_view", "--meta", "page=home", "--meta", "ref=qr")

	require.NoError(t, err)
	require.Len(t, api.actions, 1)
	assert.Equal(t, "page_view", api.actions[0]["action"])
	assert.Equal(t, map[string]any{"page": "home", "ref": "qr"}, api.actions[0]["metadata"])
}

func TestTrack_BadMetadata(t *testing.T) {
	_, err := run(t, "--api", "http://127.0.0.1:1", "track", "page_view", "--meta", "novalue")
	assert.ErrorContains(t, err, "key=value")
}

func TestVCard_SavesAndTracks(t *testing.T) {
	api := &apiRecorder{}
	srv := api.server(t)
	out := filepath.Join(t.TempDir(), "card.vcf")

	_, err := run(t, "--api", srv.URL, "vcard", "--out", out)

	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCARD\r\nEND:VCARD\r\n", string(data))
	require.Len(t, api.actions, 1)
	assert.Equal(t, "save_contact", api.actions[0]["action"])
}

func TestShare_CopiesAndTracks(t *testing.T) {
	api := &apiRecorder{}
	srv := api.server(t)

	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyToClipboard = orig })

	out, err := run(t, "--api", srv.URL, "share", "--url", "https://nickjanes.com")

	require.NoError(t, err)
	assert.Equal(t, "https://nickjanes.com", copied)
	assert.Contains(t, out, "Copied")
	require.Len(t, api.actions, 1)
	assert.Equal(t, "share_card", api.actions[0]["action"])
}

func TestShare_NoClipboardDoesNotTrack(t *testing.T) {
	api := &apiRecorder{}
	srv := api.server(t)

	orig := copyToClipboard
	copyToClipboard = func(string) error { return errors.New("no clipboard utilities available") }
	t.Cleanup(func() { copyToClipboard = orig })

	out, err := run(t, "--api", srv.URL, "share", "--url", "https://nickjanes.com")

	require.NoError(t, err)
	assert.Contains(t, out, "https://nickjanes.com")
	assert.Empty(t, api.actions)
}
