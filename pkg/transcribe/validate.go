package transcribe

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// supportedFormats are the audio container extensions the backends
// accept for upload.
var supportedFormats = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".mp4":  true,
	".webm": true,
}

// SupportedFormats lists the accepted extensions, for error messages
// and CLI help text.
func SupportedFormats() []string {
	out := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// ValidateAudioPath checks that the path carries a supported audio
// extension. It does not check the file exists; Transcribe does.
func ValidateAudioPath(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, path)
	}
	if !supportedFormats[ext] {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return nil
}
