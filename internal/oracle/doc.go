// Package oracle defines the translation backend contract and the retry
// policy wrapped around it. The concrete Gemini-backed implementation lives
// in internal/services/gemini; pipeline code only sees the Oracle interface
// so tests can substitute scripted fakes.
package oracle
