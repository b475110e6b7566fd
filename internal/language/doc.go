// Package language normalizes user-supplied target languages. Translation
// prompts need a human-readable language name, so ISO codes and word forms
// are resolved against a small table of common dubbing targets; anything
// unrecognized passes through title-cased and the oracle decides whether it
// can translate into it.
package language
