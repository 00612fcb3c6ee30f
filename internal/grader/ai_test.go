package grader_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/helix-ai/backend/internal/domain/question"
	"github.com/helix-ai/backend/internal/domain/submission"
	"github.com/helix-ai/backend/internal/grader"
)

func testQuestion() *question.Question {
	return &question.Question{
		ID:                  "q_test",
		Prompt:              "O que é um nucleotídeo?",
		KnowledgeComponents: []string{"estrutura do DNA"},
		ExpectedAnswer:      "Unidade formada por fosfato, pentose e base nitrogenada.",
		MaxPoints:           1,
	}
}

// llmStub serves a fixed chat-completions reply.
func llmStub(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, content)
	}))
}

func newTestAIGrader(url string) *grader.AIGrader {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return grader.NewAIGrader(url, "test-model", grader.NewKeyPool([]string{"k1", "k2"}), logger)
}

func TestAIGrader_ParsesStructuredVerdict(t *testing.T) {
	srv := llmStub(t, `{"classification": "CORRETA", "feedback": "Muito bem."}`)
	defer srv.Close()

	g := newTestAIGrader(srv.URL)
	ev := g.Evaluate(context.Background(), grader.Request{Question: testQuestion(), Answer: "..."})

	if ev.Classification != submission.Correct {
		t.Errorf("expected CORRECT, got %s", ev.Classification)
	}
	if ev.Feedback != "Muito bem." {
		t.Errorf("unexpected feedback %q", ev.Feedback)
	}
}

func TestAIGrader_ParsesJSONInsideMarkdown(t *testing.T) {
	srv := llmStub(t, "Claro! Aqui está:\n```json\n{\"classification\": \"PARCIALMENTE_CORRETA\", \"feedback\": \"Faltou a pentose.\"}\n```")
	defer srv.Close()

	g := newTestAIGrader(srv.URL)
	ev := g.Evaluate(context.Background(), grader.Request{Question: testQuestion(), Answer: "..."})

	if ev.Classification != submission.PartiallyCorrect {
		t.Errorf("expected PARTIALLY_CORRECT, got %s", ev.Classification)
	}
}

func TestAIGrader_FallsBackToPlainText(t *testing.T) {
	srv := llmStub(t, "A resposta está correta, parabéns!")
	defer srv.Close()

	g := newTestAIGrader(srv.URL)
	ev := g.Evaluate(context.Background(), grader.Request{Question: testQuestion(), Answer: "..."})

	if ev.Classification != submission.Correct {
		t.Errorf("expected CORRECT from plain text, got %s", ev.Classification)
	}
}

func TestAIGrader_IncorretaIsNotMistakenForCorreta(t *testing.T) {
	srv := llmStub(t, "A resposta está incorreta.")
	defer srv.Close()

	g := newTestAIGrader(srv.URL)
	ev := g.Evaluate(context.Background(), grader.Request{Question: testQuestion(), Answer: "..."})

	if ev.Classification != submission.Incorrect {
		t.Errorf("expected INCORRECT, got %s", ev.Classification)
	}
}

func TestAIGrader_UnreachableEndpointYieldsErrorVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := newTestAIGrader(srv.URL)
	ev := g.Evaluate(context.Background(), grader.Request{Question: testQuestion(), Answer: "..."})

	if ev.Classification != submission.Error {
		t.Errorf("expected ERROR verdict, got %s", ev.Classification)
	}
	if ev.Feedback == "" {
		t.Error("expected a feedback message explaining the failure")
	}
}

func TestAIGrader_RotatesKeysAcrossAttempts(t *testing.T) {
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Authorization"))
		if len(keys) < 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"{\"classification\": \"CORRETA\", \"feedback\": \"ok\"}"}}]}`)
	}))
	defer srv.Close()

	g := newTestAIGrader(srv.URL)
	ev := g.Evaluate(context.Background(), grader.Request{Question: testQuestion(), Answer: "..."})

	if ev.Classification != submission.Correct {
		t.Fatalf("expected CORRECT after retry, got %s", ev.Classification)
	}
	if len(keys) != 2 || keys[0] == keys[1] {
		t.Errorf("expected two attempts with distinct keys, got %v", keys)
	}
}

func TestKeyPool_RoundRobin(t *testing.T) {
	pool := grader.NewKeyPool([]string{"a", "b"})

	got := []string{pool.Next(), pool.Next(), pool.Next()}
	want := []string{"a", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Next() call %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestKeyPool_Empty(t *testing.T) {
	pool := grader.NewKeyPool(nil)

	if k := pool.Next(); k != "" {
		t.Errorf("expected empty key from empty pool, got %q", k)
	}
}
