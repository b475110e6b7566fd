// Command dubber translates the speech of an audio or video source into
// another language and rebuilds it on the original timeline.
package main
