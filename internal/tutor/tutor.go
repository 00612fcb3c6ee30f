// Package tutor streams Socratic study conversations from an
// OpenAI-compatible chat endpoint. The tutor never hands out the answer
// to the current exercise; it nudges the student with guiding questions.
package tutor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/helix-ai/backend/internal/grader"
)

// Message is one turn of a tutoring conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Interaction is a persisted question/answer pair, kept so professors can
// audit what the tutor told their students. CaseID links the exchange to
// the exercise the student was working on, when there was one.
type Interaction struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	CaseID              string    `json:"case_id,omitempty"`
	Topic               string    `json:"topic,omitempty"`
	Question            string    `json:"question"`
	Reply               string    `json:"reply"`
	ResponseTimeSeconds float64   `json:"response_time_seconds"`
	Timestamp           time.Time `json:"timestamp"`
}

const systemPrompt = `Você é um tutor socrático de biologia molecular para estudantes de medicina.
Nunca entregue a resposta pronta de um exercício. Conduza o aluno com perguntas
curtas que o façam raciocinar, corrija concepções erradas com delicadeza e use
exemplos clínicos quando ajudarem. Responda sempre em português.`

const maxStreamAttempts = 3

// Tutor streams chat completions. It shares the credential pool with the
// grader so rate limits are spread across the same keys.
type Tutor struct {
	url    string
	model  string
	keys   *grader.KeyPool
	client *http.Client
	logger *slog.Logger
}

func New(url, model string, keys *grader.KeyPool, logger *slog.Logger) *Tutor {
	return &Tutor{
		url:   url,
		model: model,
		keys:  keys,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Stream sends the conversation and invokes emit for every content chunk
// as it arrives. It returns the full assembled reply. Failed connections
// are retried with the next credential, but only before the first chunk
// has been emitted; after that a retry would duplicate output.
func (t *Tutor) Stream(ctx context.Context, topic string, history []Message, userMessage string, emit func(chunk string)) (string, error) {
	messages := make([]Message, 0, len(history)+3)
	messages = append(messages, Message{Role: "system", Content: systemPrompt})
	if topic != "" {
		messages = append(messages, Message{
			Role:    "system",
			Content: "Tópico em estudo no momento: " + topic,
		})
	}
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: userMessage})

	var lastErr error
	for attempt := 0; attempt < maxStreamAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Second):
			}
		}

		reply, started, err := t.streamOnce(ctx, messages, emit)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if started {
			// Part of the reply already reached the client.
			return reply, err
		}
		t.logger.Warn("tutor stream attempt failed", "attempt", attempt+1, "error", err)
	}
	return "", fmt.Errorf("tutor unavailable: %w", lastErr)
}

func (t *Tutor) streamOnce(ctx context.Context, messages []Message, emit func(chunk string)) (reply string, started bool, err error) {
	body, err := json.Marshal(chatRequest{
		Model:       t.model,
		Messages:    messages,
		Temperature: 0.7,
		Stream:      true,
	})
	if err != nil {
		return "", false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if key := t.keys.Next(); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("tutor endpoint returned status %d", resp.StatusCode)
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}
		started = true
		full.WriteString(content)
		if emit != nil {
			emit(content)
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), started, err
	}
	if !started {
		return "", false, fmt.Errorf("tutor stream produced no content")
	}
	return full.String(), true, nil
}
