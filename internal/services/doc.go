// Package services holds cross-cutting helpers shared by pipeline stages:
// the failure taxonomy used to separate fatal from recoverable errors, and
// context annotations that let loggers tag lines with the active stage,
// chunk index, and run identifier.
package services
