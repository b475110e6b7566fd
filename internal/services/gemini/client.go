package gemini

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"dubber/internal/logging"
	"dubber/internal/oracle"
	"dubber/internal/services"
)

// audioMIMEType is the container the pipeline encodes chunks into before
// handing them to the oracle.
const audioMIMEType = "audio/mpeg"

// Config selects the models and credentials for a Client.
type Config struct {
	APIKey         string
	Model          string
	TTSModel       string
	TimeoutSeconds int
}

// Generator abstracts the generate-content call for testability. The real
// implementation is genai's Models service.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Option configures a Client.
type Option func(*Client)

// WithGenerator injects a custom generator (primarily for tests).
func WithGenerator(gen Generator) Option {
	return func(c *Client) {
		if gen != nil {
			c.gen = gen
		}
	}
}

// Client talks to the Gemini API and satisfies oracle.Oracle.
type Client struct {
	gen      Generator
	model    string
	ttsModel string
	timeout  time.Duration
	logger   *slog.Logger
}

// New constructs a Client. The API key is only required when no custom
// generator is injected.
func New(ctx context.Context, cfg Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if strings.TrimSpace(cfg.TTSModel) == "" {
		cfg.TTSModel = "gemini-2.5-flash-preview-tts"
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 180
	}
	client := &Client{
		model:    cfg.Model,
		ttsModel: cfg.TTSModel,
		timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
		logger:   logging.NewComponentLogger(logger, "gemini"),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.gen == nil {
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, services.Wrap(services.ErrConfiguration, "", "gemini client", "api key is required", nil)
		}
		api, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "", "gemini client", "", err)
		}
		client.gen = api.Models
	}
	return client, nil
}

// Translate transcribes and translates the chunk, then synthesizes the
// translation as speech. With VoiceAuto the source speaker is analyzed first
// to pick a matching voice.
func (c *Client) Translate(ctx context.Context, req oracle.Request) (oracle.Result, error) {
	voice := req.Voice
	if voice.IsAuto() {
		voice = c.analyzeSpeaker(ctx, req)
	}
	text, err := c.translateText(ctx, req)
	if err != nil {
		return oracle.Result{}, err
	}
	return c.synthesize(ctx, text, voice, req.DurationMs)
}

// DiarizeAndTranslate asks the model for speaker turns with translated text.
func (c *Client) DiarizeAndTranslate(ctx context.Context, req oracle.Request) ([]oracle.DialogueSegment, error) {
	parts := []*genai.Part{
		genai.NewPartFromBytes(req.Payload, audioMIMEType),
		genai.NewPartFromText(diarizationPrompt(req.TargetLanguage)),
	}
	resp, err := c.generate(ctx, c.model, parts, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}, "diarize")
	if err != nil {
		return nil, err
	}
	raw := firstText(resp)
	if raw == "" {
		return nil, services.Wrap(services.ErrTransient, "translating", "diarize", "empty response", nil)
	}
	segments, err := parseSegments(raw)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "translating", "diarize", "unparsable response", err)
	}
	return segments, nil
}

// Synthesize renders text as speech in the given voice.
func (c *Client) Synthesize(ctx context.Context, text string, voice oracle.Voice) (oracle.Result, error) {
	return c.synthesize(ctx, text, voice, 0)
}

// analyzeSpeaker classifies the dominant speaker of the chunk so automatic
// voice selection can pick a matching prebuilt voice. Analysis failures are
// not worth failing the chunk over; they degrade to the default voice.
func (c *Client) analyzeSpeaker(ctx context.Context, req oracle.Request) oracle.Voice {
	parts := []*genai.Part{
		genai.NewPartFromBytes(req.Payload, audioMIMEType),
		genai.NewPartFromText(speakerPrompt()),
	}
	resp, err := c.generate(ctx, c.model, parts, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}, "analyze speaker")
	logger := logging.WithContext(ctx, c.logger)
	if err != nil {
		logger.Warn("speaker analysis failed, using default voice", logging.Error(err))
		return oracle.DefaultVoice
	}
	category := parseCategory(firstText(resp))
	voice := oracle.VoiceForCategory(category)
	logger.Debug("speaker analyzed",
		logging.String("category", category),
		logging.String("voice", voice.String()))
	return voice
}

func (c *Client) translateText(ctx context.Context, req oracle.Request) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromBytes(req.Payload, audioMIMEType),
		genai.NewPartFromText(translationPrompt(req.TargetLanguage, req.DurationMs)),
	}
	resp, err := c.generate(ctx, c.model, parts, nil, "translate")
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(firstText(resp))
	if text == "" {
		return "", services.Wrap(services.ErrTransient, "translating", "translate", "empty translation", nil)
	}
	return text, nil
}

func (c *Client) synthesize(ctx context.Context, text string, voice oracle.Voice, durationMs int) (oracle.Result, error) {
	if voice.IsAuto() {
		voice = oracle.DefaultVoice
	}
	parts := []*genai.Part{genai.NewPartFromText(speechPrompt(text, durationMs))}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: string(voice)},
			},
		},
	}
	resp, err := c.generate(ctx, c.ttsModel, parts, config, "synthesize")
	if err != nil {
		return oracle.Result{}, err
	}
	data := firstAudio(resp)
	if len(data) == 0 {
		return oracle.Result{}, services.Wrap(services.ErrTransient, "translating", "synthesize", "no audio in response", nil)
	}
	return oracle.NewResult(data), nil
}

// generate performs one model call under the per-call timeout and normalizes
// transport and blocking failures into sentinel-tagged errors.
func (c *Client) generate(ctx context.Context, model string, parts []*genai.Part, config *genai.GenerateContentConfig, op string) (*genai.GenerateContentResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := c.gen.GenerateContent(callCtx, model, contents, config)
	if err != nil {
		return nil, classify(err, op)
	}
	if reason, isBlocked := blocked(resp); isBlocked {
		return nil, services.Wrap(services.ErrContentBlocked, "translating", op, reason, nil)
	}
	return resp, nil
}

// firstText returns the first text part of the first candidate.
func firstText(resp *genai.GenerateContentResponse) string {
	for _, part := range candidateParts(resp) {
		if part.Text != "" {
			return part.Text
		}
	}
	return ""
}

// firstAudio returns the first inline binary part of the first candidate.
func firstAudio(resp *genai.GenerateContentResponse) []byte {
	for _, part := range candidateParts(resp) {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data
		}
	}
	return nil
}

func candidateParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return nil
	}
	return cand.Content.Parts
}

// blocked reports whether the model refused the request on content grounds.
func blocked(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil {
		return "empty response", true
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "prompt blocked: " + string(resp.PromptFeedback.BlockReason), true
	}
	if len(resp.Candidates) == 0 {
		return "no candidates returned", true
	}
	switch resp.Candidates[0].FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent:
		return "candidate blocked: " + string(resp.Candidates[0].FinishReason), true
	}
	return "", false
}
