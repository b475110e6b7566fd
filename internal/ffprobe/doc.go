// Package ffprobe inspects media containers so the pipeline can decide
// whether an input carries video and how long the program runs before any
// audio is decoded.
package ffprobe
