package tutor_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/helix-ai/backend/internal/grader"
	"github.com/helix-ai/backend/internal/tutor"
)

func newTestTutor(url string) *tutor.Tutor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return tutor.New(url, "test-model", grader.NewKeyPool([]string{"k1"}), logger)
}

func sseStub(chunks ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range chunks {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", c)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}
}

func TestStream_AssemblesChunks(t *testing.T) {
	srv := httptest.NewServer(sseStub("O que ", "você já ", "sabe sobre isso?"))
	defer srv.Close()

	var emitted []string
	reply, err := newTestTutor(srv.URL).Stream(context.Background(), "replicação", nil, "Me dá a resposta?", func(chunk string) {
		emitted = append(emitted, chunk)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "O que você já sabe sobre isso?"
	if reply != want {
		t.Errorf("expected reply %q, got %q", want, reply)
	}
	if len(emitted) != 3 {
		t.Errorf("expected 3 emitted chunks, got %d", len(emitted))
	}
}

func TestStream_RetriesBeforeFirstChunk(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		sseStub("Pense na função da enzima.")(w, r)
	}))
	defer srv.Close()

	reply, err := newTestTutor(srv.URL).Stream(context.Background(), "", nil, "oi", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Pense na função da enzima." {
		t.Errorf("unexpected reply %q", reply)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestStream_AllAttemptsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestTutor(srv.URL).Stream(context.Background(), "", nil, "oi", nil)
	if err == nil {
		t.Fatal("expected an error when every attempt fails")
	}
}
