package cloudapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"subgen/internal/subgenerr"
	"subgen/internal/transcribe"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "audio-*.wav")
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("fake audio bytes")
	f.Close()
	return f.Name()
}

func TestNewRejectsInvalidEndpoint(t *testing.T) {
	_, err := New(Config{Endpoint: "not-a-url"})
	if err == nil {
		t.Fatal("expected error for invalid endpoint")
	}
	if !errors.Is(err, subgenerr.ErrBadConfig) {
		t.Fatalf("expected ErrBadConfig, got %v", err)
	}
}

func TestTranscribeUploadsAndDecodesResponse(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("server failed to parse multipart form: %v", err)
		}
		io.WriteString(w, `{"language":"en","segments":[{"text":"hello","start":0,"end":1}]}`)
	}))
	defer srv.Close()

	a, err := New(Config{Endpoint: srv.URL, APIKey: "secret"})
	if err != nil {
		t.Fatal(err)
	}

	result, err := a.Transcribe(context.Background(), writeTempAudio(t), transcribe.Options{SourceLang: "en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("got auth header %q", gotAuth)
	}
	if len(result.Segments) != 1 || result.Segments[0].Text != "hello" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestTranscribeSurfacesHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "boom")
	}))
	defer srv.Close()

	a, err := New(Config{Endpoint: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	_, err = a.Transcribe(context.Background(), writeTempAudio(t), transcribe.Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, subgenerr.ErrTranscriptionFailed) {
		t.Fatalf("expected ErrTranscriptionFailed, got %v", err)
	}
}

func TestTranscribeErrorsOnMissingAudioFile(t *testing.T) {
	a, err := New(Config{Endpoint: "https://example.com/transcribe"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = a.Transcribe(context.Background(), "/nonexistent/audio.wav", transcribe.Options{})
	if err == nil {
		t.Fatal("expected error for missing audio file")
	}
	if !errors.Is(err, subgenerr.ErrBadInput) {
		t.Fatalf("expected ErrBadInput, got %v", err)
	}
}
