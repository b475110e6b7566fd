package oracle

import "context"

// Request carries one chunk of source audio to the oracle.
type Request struct {
	// Payload is the encoded chunk audio (a self-describing container such
	// as MP3), never raw PCM.
	Payload []byte
	// TargetLanguage is the display name of the language to translate into,
	// e.g. "Spanish".
	TargetLanguage string
	// DurationMs is the source chunk duration, passed to the oracle as a
	// pacing hint so the synthesized speech lands near the original length.
	DurationMs int
	// Voice selects the synthesis voice. VoiceAuto lets the oracle pick one
	// based on the speaker it hears.
	Voice Voice
}

// DialogueSegment is one speaker turn produced by diarization, already
// translated to the target language.
type DialogueSegment struct {
	// Speaker is an opaque label stable within one chunk ("Speaker 1").
	Speaker string
	// Category is the oracle's coarse description of the speaker, used to
	// pick a synthesis voice ("Young Woman", "Elderly Man", ...).
	Category string
	// Text is the translated utterance.
	Text string
}

// Oracle translates spoken audio into another language. Implementations must
// be safe for concurrent use; every method honors context cancellation.
type Oracle interface {
	// Translate returns translated speech for the whole chunk in one voice.
	Translate(ctx context.Context, req Request) (Result, error)

	// DiarizeAndTranslate splits the chunk into speaker turns and returns
	// the translated text per turn without synthesizing audio.
	DiarizeAndTranslate(ctx context.Context, req Request) ([]DialogueSegment, error)

	// Synthesize renders translated text as speech in the given voice.
	Synthesize(ctx context.Context, text string, voice Voice) (Result, error)
}
