package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 0)
}

func TestQuestionsDecodesObjectPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/questions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("count"); got != "3" {
			t.Errorf("expected count=3, got %q", got)
		}
		_, _ = io.WriteString(w, `{"questions": ["q1", "q2", "q3"], "source": "meme"}`)
	})

	batch, err := client.Questions(context.Background(), 3)
	if err != nil {
		t.Fatalf("Questions failed: %v", err)
	}
	if len(batch.Questions) != 3 || batch.Questions[2] != "q3" {
		t.Fatalf("unexpected questions: %v", batch.Questions)
	}
	if batch.Source != "meme" {
		t.Fatalf("expected source meme, got %q", batch.Source)
	}
}

func TestQuestionsAcceptsBareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `["only one"]`)
	})
	batch, err := client.Questions(context.Background(), 1)
	if err != nil {
		t.Fatalf("Questions failed: %v", err)
	}
	if len(batch.Questions) != 1 || batch.Questions[0] != "only one" {
		t.Fatalf("unexpected questions: %v", batch.Questions)
	}
}

func TestQuestionsLoadErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{}`},
		{name: "missing field", status: http.StatusOK, body: `{"source": "meme"}`},
		{name: "not a list", status: http.StatusOK, body: `{"questions": "q1"}`},
		{name: "empty list", status: http.StatusOK, body: `{"questions": []}`},
		{name: "not json", status: http.StatusOK, body: `<html>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			_, err := client.Questions(context.Background(), 5)
			if !IsLoadError(err) {
				t.Fatalf("expected load error, got %v", err)
			}
		})
	}
}

func TestAnalyzeSendsTextAndReturnsScore(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/analyze" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["text"] != "I would comfort them" {
			t.Errorf("unexpected text %q", body["text"])
		}
		_, _ = io.WriteString(w, `{"score": 72.5}`)
	})

	score, err := client.Analyze(context.Background(), "I would comfort them")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if score != 72.5 {
		t.Fatalf("expected 72.5, got %v", score)
	}
}

func TestAnalyzeScoringErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"score": 50}`},
		{name: "missing score", status: http.StatusOK, body: `{"reasoning": "x"}`},
		{name: "string score", status: http.StatusOK, body: `{"score": "50"}`},
		{name: "out of range", status: http.StatusOK, body: `{"score": 120}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			_, err := client.Analyze(context.Background(), "answer")
			if !IsScoringError(err) {
				t.Fatalf("expected scoring error, got %v", err)
			}
		})
	}
}

func TestAnalyzeStatusIsReported(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := client.Analyze(context.Background(), "answer")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", apiErr.StatusCode)
	}
}

func TestTranscribeUploadsMultipartClip(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stt" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		file, header, err := r.FormFile("audio_file")
		if err != nil {
			t.Errorf("missing audio_file: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "RIFF" || header.Filename != "clip.wav" {
			t.Errorf("unexpected upload %q %q", header.Filename, data)
		}
		_, _ = io.WriteString(w, `{"text": "  I would listen first  "}`)
	})

	text, err := client.Transcribe(context.Background(), Clip{Name: "clip.wav", ContentType: "audio/wav", Data: []byte("RIFF")})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "I would listen first" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestTranscribeWithoutTextIsTranscriptionError(t *testing.T) {
	for _, body := range []string{`{}`, `{"text": "   "}`} {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, body)
		})
		_, err := client.Transcribe(context.Background(), Clip{Data: []byte("x")})
		if !IsTranscriptionError(err) {
			t.Fatalf("expected transcription error for %s, got %v", body, err)
		}
	}
}

func TestSpeakReturnsAudio(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["lang"] != DefaultTTSLang {
			t.Errorf("expected default lang, got %q", body["lang"])
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte{0xff, 0xfb})
	})
	audio, err := client.Speak(context.Background(), "hello", "")
	if err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if len(audio) != 2 {
		t.Fatalf("expected 2 bytes, got %d", len(audio))
	}
}

func TestSpeakFailureIsSpeechError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := client.Speak(context.Background(), "hello", "en-US")
	if !IsSpeechError(err) {
		t.Fatalf("expected speech error, got %v", err)
	}
}

func TestUnreachableServiceIsLoadError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, 0)
	if _, err := client.Questions(context.Background(), 1); !IsLoadError(err) {
		t.Fatalf("expected load error, got %v", err)
	}
}
