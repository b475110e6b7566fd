package oracle

import "strings"

// Voice names a prebuilt synthesis voice. The zero value requests automatic
// selection: the oracle listens to the source speaker and picks a matching
// voice itself.
type Voice string

// Prebuilt voices accepted by the speech model.
const (
	VoiceAuto   Voice = ""
	VoicePuck   Voice = "Puck"
	VoiceCharon Voice = "Charon"
	VoiceKore   Voice = "Kore"
	VoiceFenrir Voice = "Fenrir"
	VoiceAoede  Voice = "Aoede"
)

// DefaultVoice is used when nothing better is known about the speaker and as
// the fallback voice after retries with a requested voice are exhausted.
const DefaultVoice = VoiceKore

// IsAuto reports whether the voice requests automatic selection.
func (v Voice) IsAuto() bool { return v == VoiceAuto }

func (v Voice) String() string {
	if v.IsAuto() {
		return "auto"
	}
	return string(v)
}

// VoiceInfo describes one selectable voice for user-facing listings.
type VoiceInfo struct {
	Name        Voice
	Description string
}

// KnownVoices returns the selectable voices in display order, with the
// automatic option first.
func KnownVoices() []VoiceInfo {
	return []VoiceInfo{
		{VoiceAuto, "match the source speaker automatically"},
		{VoicePuck, "young male"},
		{VoiceCharon, "elderly male"},
		{VoiceFenrir, "adult male"},
		{VoiceAoede, "young female"},
		{VoiceKore, "adult female (default)"},
	}
}

// ParseVoice resolves a user-supplied voice name case-insensitively. "auto"
// and the empty string map to VoiceAuto.
func ParseVoice(name string) (Voice, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || strings.EqualFold(trimmed, "auto") {
		return VoiceAuto, true
	}
	for _, info := range KnownVoices() {
		if strings.EqualFold(trimmed, string(info.Name)) {
			return info.Name, true
		}
	}
	return VoiceAuto, false
}

// VoiceForCategory maps a diarization speaker category to a synthesis voice.
// Unknown categories get the default voice.
func VoiceForCategory(category string) Voice {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "young man":
		return VoicePuck
	case "elderly man":
		return VoiceCharon
	case "man":
		return VoiceFenrir
	case "young woman":
		return VoiceAoede
	case "woman":
		return VoiceKore
	default:
		return DefaultVoice
	}
}
