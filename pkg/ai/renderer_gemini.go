package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	defaultImageModel     = "gemini-2.5-flash-image"
	defaultDraftingModel  = "gemini-3-flash-preview"
	defaultReasoningModel = "gemini-3-pro-preview"

	// Fixed fallback replies for the text contracts.
	blueprintFallback = "Failed to generate blueprint reasoning."
	chatFallback      = "I'm sorry, I couldn't process that."

	renderAspectRatio = "16:9"
)

// GeminiRenderer implements Renderer against the Gemini API. Image and
// drafting calls go through the client directly; assistant and blueprint
// text can be routed to any TextGenerator (e.g. an OpenAI-compatible
// endpoint) while renders stay on Gemini.
type GeminiRenderer struct {
	client         *GeminiClient
	imageModel     string
	draftingModel  string
	reasoningModel string
	chatGen        TextGenerator
}

// RendererOption customizes the renderer.
type RendererOption func(*GeminiRenderer)

// WithImageModel overrides the image-capable model.
func WithImageModel(model string) RendererOption {
	return func(r *GeminiRenderer) {
		if strings.TrimSpace(model) != "" {
			r.imageModel = model
		}
	}
}

// WithDraftingModel overrides the model used for floor plans.
func WithDraftingModel(model string) RendererOption {
	return func(r *GeminiRenderer) {
		if strings.TrimSpace(model) != "" {
			r.draftingModel = model
		}
	}
}

// WithReasoningModel overrides the model used for blueprint reasoning.
func WithReasoningModel(model string) RendererOption {
	return func(r *GeminiRenderer) {
		if strings.TrimSpace(model) != "" {
			r.reasoningModel = model
		}
	}
}

// WithChatGenerator routes assistant replies through a different provider.
func WithChatGenerator(gen TextGenerator) RendererOption {
	return func(r *GeminiRenderer) {
		if gen != nil {
			r.chatGen = gen
		}
	}
}

// NewGeminiRenderer builds a renderer around the client.
func NewGeminiRenderer(client *GeminiClient, options ...RendererOption) (*GeminiRenderer, error) {
	if client == nil {
		return nil, fmt.Errorf("gemini client required")
	}
	r := &GeminiRenderer{
		client:         client,
		imageModel:     defaultImageModel,
		draftingModel:  defaultDraftingModel,
		reasoningModel: defaultReasoningModel,
	}
	for _, option := range options {
		if option != nil {
			option(r)
		}
	}
	return r, nil
}

// RenderExterior requests a photorealistic exterior view. A response with no
// inline image degrades to "" — "no visual yet" is a normal state for the
// caller.
func (r *GeminiRenderer) RenderExterior(ctx context.Context, spec ExteriorSpec) (string, error) {
	data, mimeType, ok, err := r.client.GenerateImage(ctx, r.imageModel, exteriorPrompt(spec), renderAspectRatio)
	if err != nil {
		return "", fmt.Errorf("exterior render: %w", err)
	}
	if !ok {
		slog.Warn("exterior render returned no image payload")
		return "", nil
	}
	return dataURI(mimeType, data), nil
}

// RenderRoom requests one interior view. Unlike the exterior render, a
// response without an image payload is a hard failure the caller must show
// to the user.
func (r *GeminiRenderer) RenderRoom(ctx context.Context, spec RoomSpec, mode RenderMode) (string, error) {
	data, mimeType, ok, err := r.client.GenerateImage(ctx, r.imageModel, roomPrompt(spec, mode), renderAspectRatio)
	if err != nil {
		return "", fmt.Errorf("room %s render: %w", mode, err)
	}
	if !ok {
		return "", ErrNoImagePayload
	}
	return dataURI(mimeType, data), nil
}

// RenderFloorPlan requests a conceptual SVG floor plan. Replies without any
// text, without a recognizable SVG, or whose declared aspect ratio does not
// match the plot all degrade to "".
func (r *GeminiRenderer) RenderFloorPlan(ctx context.Context, spec FloorPlanSpec) (string, error) {
	reply, err := r.client.GenerateText(ctx, r.draftingModel, "", floorPlanPrompt(spec))
	if errors.Is(err, ErrEmptyReply) {
		slog.Warn("floor plan reply carried no text")
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("floor plan: %w", err)
	}
	doc := ExtractSVG(reply)
	if doc == "" {
		slog.Warn("floor plan reply contained no svg document")
		return "", nil
	}
	if !SVGMatchesAspect(doc, spec.Length, spec.Breadth) {
		slog.Warn("floor plan svg aspect ratio does not match plot",
			"length", spec.Length, "breadth", spec.Breadth)
		return "", nil
	}
	return doc, nil
}

// DescribeBlueprint requests a conceptual architectural recommendation.
func (r *GeminiRenderer) DescribeBlueprint(ctx context.Context, spec BlueprintSpec) (string, error) {
	reply, err := r.client.GenerateText(ctx, r.reasoningModel, "", blueprintPrompt(spec))
	if errors.Is(err, ErrEmptyReply) {
		return blueprintFallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("blueprint reasoning: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		return blueprintFallback, nil
	}
	return reply, nil
}

// Chat sends one assistant turn with prior history. Empty provider replies
// fall back to a fixed string rather than an error.
func (r *GeminiRenderer) Chat(ctx context.Context, message string, history []Turn) (string, error) {
	if r.chatGen != nil {
		reply, err := r.chatGen.GenerateText(ctx, assistantPersona, chatUserPrompt(message, history))
		if err != nil {
			return "", fmt.Errorf("assistant chat: %w", err)
		}
		if strings.TrimSpace(reply) == "" {
			return chatFallback, nil
		}
		return reply, nil
	}
	reply, err := r.client.GenerateText(ctx, r.draftingModel, assistantPersona, message, history...)
	if errors.Is(err, ErrEmptyReply) {
		return chatFallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("assistant chat: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		return chatFallback, nil
	}
	return reply, nil
}

// chatUserPrompt flattens role-tagged history for providers without a
// structured history field.
func chatUserPrompt(message string, history []Turn) string {
	if len(history) == 0 {
		return message
	}
	var sb strings.Builder
	for _, turn := range history {
		role := turn.Role
		if role == "model" {
			role = "assistant"
		}
		sb.WriteString(role)
		sb.WriteString(": ")
		sb.WriteString(turn.Text)
		sb.WriteString("\n")
	}
	sb.WriteString("user: ")
	sb.WriteString(message)
	return sb.String()
}

func dataURI(mimeType, base64Data string) string {
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64Data
}
