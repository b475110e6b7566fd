// Package audio owns the in-memory PCM representation used across the
// pipeline and the ffmpeg-backed Store that moves audio between media
// containers and that representation. All decoded material is normalized to
// one canonical sample format so slicing, overlay, and mixing stay simple
// integer operations.
package audio
