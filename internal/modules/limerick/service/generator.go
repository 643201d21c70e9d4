package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/samber/oops"
)

const limerickPrompt = "In less than 60 words, please write a limerick about a bot named %s that got banned from Twitch."

// Generator writes the limerick for a banned bot.
type Generator interface {
	Generate(ctx context.Context, name string) (string, error)
}

type OpenAIGenerator struct {
	client openai.Client
	model  string
}

func NewOpenAIGenerator(apiKey, model string, opts ...option.RequestOption) *OpenAIGenerator {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(3)}, opts...)
	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, name string) (string, error) {
	response, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(fmt.Sprintf(limerickPrompt, name)),
					},
				},
			},
		},
		Temperature: openai.Float(1.2),
		MaxTokens:   openai.Int(200),
	})
	if err != nil {
		return "", oops.With("bot", name, "context", "openai request failed").Wrap(err)
	}

	if len(response.Choices) == 0 {
		return "", oops.With("bot", name).Errorf("no response from openai")
	}

	text := strings.Join(strings.Fields(response.Choices[0].Message.Content), " ")
	if text == "" {
		return "", oops.With("bot", name).Errorf("empty limerick")
	}
	return text, nil
}
