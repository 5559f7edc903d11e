package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"mechanic-backend/internal/prompts"
)

// maxImageResponseTokens bounds the length of vision analysis replies.
const maxImageResponseTokens = 500

// GatewayError wraps any failure from the completion service: transport
// errors, upstream error statuses, or responses with no choices. Callers are
// expected to log it and report a generic message to clients.
type GatewayError struct {
	Op  string // "text" or "image"
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s completion failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Gateway wraps the OpenAI chat completions API. The text and image call
// shapes are kept as separate methods since their message structure and
// response constraints differ.
type Gateway struct {
	client openai.Client
	model  string // e.g. "gpt-4o"
	images *ImageResolver
}

func NewGateway(apiKey, model string, opts ...option.RequestOption) *Gateway {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Gateway{
		client: openai.NewClient(opts...),
		model:  model,
		images: NewImageResolver(),
	}
}

// CompleteText sends a system + user exchange and returns the first choice.
// The response is requested in JSON object format.
func (g *Gateway) CompleteText(ctx context.Context, userText, systemPrompt string) (string, error) {
	req := openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userText),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	}

	res, err := g.client.Chat.Completions.New(ctx, req)
	if err != nil {
		slog.Error("openai error: chat completion failed", "error", err)
		return "", &GatewayError{Op: "text", Err: err}
	}
	if len(res.Choices) == 0 {
		return "", &GatewayError{Op: "text", Err: errors.New("response contained no choices")}
	}

	return res.Choices[0].Message.Content, nil
}

// CompleteImage sends the image-analysis persona plus a user message holding
// a short instruction and the image itself. Remote image URLs are inlined as
// data URLs before the call.
func (g *Gateway) CompleteImage(ctx context.Context, imageURL string) (string, error) {
	resolved, err := g.images.Resolve(ctx, imageURL)
	if err != nil {
		return "", &GatewayError{Op: "image", Err: err}
	}

	req := openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompts.ImageSystemPrompt()),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompts.ImageUserInstruction),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: resolved}),
			}),
		},
		MaxTokens: openai.Int(maxImageResponseTokens),
	}

	res, err := g.client.Chat.Completions.New(ctx, req)
	if err != nil {
		slog.Error("openai error: image completion failed", "error", err)
		return "", &GatewayError{Op: "image", Err: err}
	}
	if len(res.Choices) == 0 {
		return "", &GatewayError{Op: "image", Err: errors.New("response contained no choices")}
	}

	return res.Choices[0].Message.Content, nil
}
