package gemini

import (
	"fmt"
	"strings"
)

// speakerCategories are the coarse speaker descriptions the model may answer
// with; they map one-to-one onto prebuilt voices.
var speakerCategories = []string{
	"Young Man",
	"Elderly Man",
	"Man",
	"Young Woman",
	"Woman",
}

// translationPrompt asks for a plain-text translation of the spoken content.
// The duration hint keeps the translated phrasing close to the original
// pacing so tempo correction stays small.
func translationPrompt(targetLanguage string, durationMs int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Listen to the audio and translate everything that is spoken into %s. ", targetLanguage)
	b.WriteString("Respond with only the translated text, no commentary, no quotation marks.")
	if durationMs > 0 {
		fmt.Fprintf(&b, " The original speech lasts about %.1f seconds; phrase the translation so it can be spoken in roughly the same time.", float64(durationMs)/1000)
	}
	return b.String()
}

// diarizationPrompt asks for speaker turns with translated text as JSON.
func diarizationPrompt(targetLanguage string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Listen to the audio and split it into speaker turns, translating each utterance into %s. ", targetLanguage)
	b.WriteString("Respond with a JSON array where each element has these keys: ")
	b.WriteString(`"speaker" (a stable label such as "Speaker 1"), `)
	fmt.Fprintf(&b, `"category" (one of: %s), `, strings.Join(speakerCategories, ", "))
	b.WriteString(`"text" (the translated utterance). `)
	b.WriteString("Keep the turns in chronological order. Respond with only the JSON array.")
	return b.String()
}

// speakerPrompt asks for a single-category classification of the dominant
// speaker, used for automatic voice selection.
func speakerPrompt() string {
	return fmt.Sprintf(
		"Listen to the audio and classify the main speaker as one of: %s. "+
			`Respond with only a JSON object of the form {"category": "..."}.`,
		strings.Join(speakerCategories, ", "))
}

// speechPrompt wraps text for the speech model. The duration hint nudges the
// delivery speed toward the source pacing.
func speechPrompt(text string, durationMs int) string {
	if durationMs > 0 {
		return fmt.Sprintf("Read the following aloud naturally, pacing it to take about %.1f seconds: %s",
			float64(durationMs)/1000, text)
	}
	return "Read the following aloud naturally: " + text
}
