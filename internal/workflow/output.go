package workflow

import (
	"path/filepath"
	"strings"
)

// videoExtensions are the containers treated as video outputs.
var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".mkv":  {},
	".avi":  {},
	".webm": {},
}

// IsVideoPath reports whether the path's extension names a video container.
func IsVideoPath(path string) bool {
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// defaultOutputPath derives the output name from the input: the input stem
// plus "_translated", as MP4 when the source carries video and MP3 otherwise.
// Local outputs land next to the input; downloaded sources land in the
// current directory because their on-disk home is the temporary work dir.
func defaultOutputPath(inputPath string, remote, hasVideo bool) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	ext := ".mp3"
	if hasVideo {
		ext = ".mp4"
	}
	dir := filepath.Dir(inputPath)
	if remote {
		dir = "."
	}
	return filepath.Join(dir, stem+"_translated"+ext)
}
