// Package gemini implements the translation oracle on top of the Gemini
// API. Translation, diarization, and speech synthesis each map to one model
// call; automatic voice selection adds a speaker-analysis call before
// synthesis. Errors are classified into the shared sentinel markers so the
// retry layer can distinguish throttling from content blocks.
package gemini
