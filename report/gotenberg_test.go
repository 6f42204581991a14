package report

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRenderHTML(t *testing.T) {
	var gotHTML string
	var gotFields map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.Equal(t, "/forms/chromium/convert/html", r.URL.Path) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		file, _, err := r.FormFile("files")
		if !assert.NoError(t, err) {
			return
		}
		raw, _ := io.ReadAll(file)
		gotHTML = string(raw)
		gotFields = map[string]string{
			"paperWidth":      r.FormValue("paperWidth"),
			"paperHeight":     r.FormValue("paperHeight"),
			"printBackground": r.FormValue("printBackground"),
		}
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL + "/")
	pdf, err := client.RenderHTML(context.Background(), "<h2>Report</h2>")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), pdf)
	assert.Equal(t, "<h2>Report</h2>", gotHTML)
	assert.Equal(t, map[string]string{"paperWidth": "8.27", "paperHeight": "11.69", "printBackground": "true"}, gotFields)
}

func TestClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.RenderHTML(context.Background(), "<p>x</p>")
	assert.Error(t, err)
	assert.Error(t, client.Ping(context.Background()))
}

func TestClientPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"up"}`))
	}))
	defer srv.Close()

	assert.NoError(t, NewClient(srv.URL).Ping(context.Background()))
}
