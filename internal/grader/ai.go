package grader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/helix-ai/backend/internal/domain/question"
	"github.com/helix-ai/backend/internal/domain/submission"
)

// AIGrader grades open-text quiz answers by calling an OpenAI-compatible
// chat-completions endpoint (Groq, Ollama, vLLM, etc.). Each attempt uses
// the next credential from the pool so a rate-limited key does not stall
// the whole service.
type AIGrader struct {
	url    string // e.g. "https://api.groq.com/openai"
	model  string // e.g. "llama-3.1-8b-instant"
	keys   *KeyPool
	client *http.Client // reused across calls
	logger *slog.Logger
}

// Compile-time check: *AIGrader satisfies the Grader interface.
var _ Grader = (*AIGrader)(nil)

// gradePayload is the structured output requested from the LLM.
type gradePayload struct {
	Classification string `json:"classification"`
	Feedback       string `json:"feedback"`
}

func NewAIGrader(url, model string, keys *KeyPool, logger *slog.Logger) *AIGrader {
	return &AIGrader{
		url:   url,
		model: model,
		keys:  keys,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// ============================================================================
// Grader interface
// ============================================================================

const (
	maxAttempts = 3
	retryDelay  = time.Second
)

// Evaluate asks the LLM to classify the answer. Transport and parse
// failures are retried with a fresh credential; after the attempts are
// exhausted the verdict is classification ERROR, never a Go error, so the
// submission is still recorded.
func (g *AIGrader) Evaluate(ctx context.Context, req Request) Evaluation {
	if req.Question == nil {
		return errorEvaluation("no question to grade against")
	}
	prompt := buildQuizPrompt(req.Question, req.Answer)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errorEvaluation(ctx.Err().Error())
			case <-time.After(retryDelay):
			}
		}

		content, err := g.callLLM(ctx, prompt)
		if err != nil {
			lastErr = err
			g.logger.Warn("llm grading attempt failed",
				"attempt", attempt+1, "error", err)
			continue
		}

		if ev, ok := parseEvaluation(content); ok {
			return ev
		}
		lastErr = &GradeError{Reason: "no usable JSON in LLM response"}

		// The model answered but not in the agreed format. Before
		// burning another attempt, try to salvage a verdict from the
		// raw text.
		if cls, ok := classifyFromText(content); ok {
			return Evaluation{Classification: cls, Feedback: strings.TrimSpace(content)}
		}
	}

	g.logger.Error("llm grading exhausted all attempts", "error", lastErr)
	return errorEvaluation(fmt.Sprintf("grading unavailable after %d attempts", maxAttempts))
}

func errorEvaluation(reason string) Evaluation {
	return Evaluation{
		Classification: submission.Error,
		Feedback:       "Não foi possível corrigir a resposta agora. Tente novamente. (" + reason + ")",
	}
}

// ============================================================================
// LLM communication
// ============================================================================

type llmRequest struct {
	Model       string       `json:"model"`
	Messages    []llmMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
}

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llmResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// callLLM sends a single request to the LLM and returns the raw text response.
func (g *AIGrader) callLLM(ctx context.Context, prompt string) (string, error) {
	reqBody := llmRequest{
		Model: g.model,
		Messages: []llmMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := g.keys.Next(); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &GradeError{Reason: "LLM request failed", Wrapped: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &GradeError{Reason: fmt.Sprintf("LLM returned status %d", resp.StatusCode)}
	}

	var llmResp llmResponse
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", &GradeError{Reason: "failed to decode LLM response", Wrapped: err}
	}

	if len(llmResp.Choices) == 0 {
		return "", &GradeError{Reason: "LLM returned no choices"}
	}

	content := llmResp.Choices[0].Message.Content
	if content == "" {
		return "", &GradeError{Reason: "LLM returned empty content"}
	}

	return content, nil
}

// ============================================================================
// Response parsing
// ============================================================================

// parseEvaluation pulls the structured verdict out of the model's reply.
func parseEvaluation(content string) (Evaluation, bool) {
	jsonStr := extractJSON(content)
	if jsonStr == "" {
		return Evaluation{}, false
	}

	var payload gradePayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return Evaluation{}, false
	}

	cls, ok := classifyFromText(payload.Classification)
	if !ok {
		cls, ok = classifyFromText(payload.Feedback)
		if !ok {
			return Evaluation{}, false
		}
	}
	feedback := strings.TrimSpace(payload.Feedback)
	if feedback == "" {
		feedback = defaultFeedback(cls)
	}
	return Evaluation{Classification: cls, Feedback: feedback}, true
}

// classifyFromText maps free text to a verdict. "incorreta" must be ruled
// out before "correta" since the former contains the latter.
func classifyFromText(text string) (submission.Classification, bool) {
	t := normalize(text)
	if t == "" {
		return "", false
	}
	switch {
	case strings.Contains(t, "parcial") || strings.Contains(t, "partial"):
		return submission.PartiallyCorrect, true
	case strings.Contains(t, "incorreta") || strings.Contains(t, "incorrect") || strings.Contains(t, "false"):
		return submission.Incorrect, true
	case strings.Contains(t, "correta") || strings.Contains(t, "correct") || strings.Contains(t, "true"):
		return submission.Correct, true
	}
	return "", false
}

func defaultFeedback(cls submission.Classification) string {
	switch cls {
	case submission.Correct:
		return "Resposta correta."
	case submission.PartiallyCorrect:
		return "Resposta parcialmente correta."
	default:
		return "Resposta incorreta."
	}
}

// extractJSON finds the outermost JSON object in a string.
// It handles nested braces correctly and skips braces inside quoted strings.
func extractJSON(s string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, ch := range s {
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if ch == '{' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == '}' {
			depth--
			if depth == 0 && start != -1 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// ============================================================================
// Prompt building
// ============================================================================

// buildQuizPrompt creates a grading prompt. Kept short and directive for
// small instruct models; the JSON schema goes last so it is the freshest
// thing in context.
func buildQuizPrompt(q *question.Question, userAnswer string) string {
	var critical string
	if q.CriticalError != "" {
		critical = fmt.Sprintf("\nERRO GRAVE (se presente, classifique como INCORRETA):\n%s\n", q.CriticalError)
	}

	return fmt.Sprintf(`Você é um corretor de biologia molecular. Classifique a resposta do aluno como CORRETA, PARCIALMENTE_CORRETA ou INCORRETA.

REGRAS:
- CORRETA: cobre as ideias centrais da resposta esperada, mesmo com outras palavras.
- PARCIALMENTE_CORRETA: acerta parte das ideias mas omite ou confunde o restante.
- INCORRETA: erra o conceito central ou comete o erro grave indicado.

PERGUNTA:
%s

CONCEITOS AVALIADOS: %s

RESPOSTA ESPERADA:
%s
%s
RESPOSTA DO ALUNO:
%s

Responda APENAS com este JSON, sem explicação e sem markdown:
{"classification": "CORRETA|PARCIALMENTE_CORRETA|INCORRETA", "feedback": "comentário curto para o aluno"}`,
		q.Prompt, strings.Join(q.KnowledgeComponents, ", "), q.ExpectedAnswer, critical, userAnswer)
}
