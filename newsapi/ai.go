package newsapi

import (
	"context"

	"github.com/kroma-labs/newsdesk-go/httpclient"
)

// AIService calls the /ai endpoints.
type AIService struct {
	client *httpclient.Client
}

// Explain posts to /ai/explain.
func (s *AIService) Explain(ctx context.Context, req ExplainRequest) (*Explanation, error) {
	var out Explanation
	if err := post(ctx, s.client, "Explain", "/ai/explain", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat posts to /ai/chat.
func (s *AIService) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	var out ChatReply
	if err := post(ctx, s.client, "Chat", "/ai/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Quiz posts to /ai/quiz.
func (s *AIService) Quiz(ctx context.Context, req QuizRequest) (*Quiz, error) {
	var out Quiz
	if err := post(ctx, s.client, "Quiz", "/ai/quiz", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Coverage posts to /ai/coverage.
func (s *AIService) Coverage(ctx context.Context, req CoverageRequest) (*Coverage, error) {
	var out Coverage
	if err := post(ctx, s.client, "Coverage", "/ai/coverage", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func post(ctx context.Context, client *httpclient.Client, op, path string, body, out any) error {
	if err := validateParams(body); err != nil {
		return err
	}
	_, err := client.Request(op).
		Body(body).
		Decode(out).
		Post(ctx, path)
	return err
}
