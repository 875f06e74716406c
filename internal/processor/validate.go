package processor

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"lecture-insights-go/internal/apperr"
)

var allowedContentTypes = map[string]struct{}{
	"audio/mpeg":  {},
	"audio/mp3":   {},
	"audio/wav":   {},
	"audio/x-wav": {},
	"audio/wave":  {},
	"audio/m4a":   {},
	"audio/x-m4a": {},
	"audio/mp4":   {},
	"video/mp4":   {},
}

var allowedExtensions = map[string]struct{}{
	".mp3": {},
	".wav": {},
	".m4a": {},
	".mp4": {},
}

func validateUpload(up Upload, maxBytes int64) ([]byte, error) {
	if up.Body == nil {
		return nil, &apperr.ValidationError{Field: "audio", Reason: "file is required"}
	}

	ct := up.ContentType
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		ct = mt
	}
	if _, ok := allowedContentTypes[strings.ToLower(ct)]; !ok {
		return nil, &apperr.ValidationError{
			Field:  "audio",
			Reason: fmt.Sprintf("invalid file type %q, must be an audio file", up.ContentType),
		}
	}
	if up.Filename != "" && !allowedExtension(up.Filename) {
		return nil, &apperr.ValidationError{
			Field:  "audio",
			Reason: fmt.Sprintf("invalid file extension %q, allowed: .mp3 .wav .m4a .mp4", filepath.Ext(up.Filename)),
		}
	}

	data, err := readCapped(up.Body, maxBytes)
	if err != nil {
		return nil, err
	}
	if err := checkAudio(data); err != nil {
		return nil, err
	}
	return data, nil
}

// checkAudio rejects empty payloads and content that does not sniff as
// audio or video, whatever the declared type says.
func checkAudio(data []byte) error {
	if len(data) == 0 {
		return &apperr.ValidationError{Field: "audio", Reason: "file is empty"}
	}
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "audio/") || strings.HasPrefix(m.String(), "video/") {
			return nil
		}
	}
	return &apperr.ValidationError{
		Field:  "audio",
		Reason: fmt.Sprintf("content does not look like audio (detected %s)", detected.String()),
	}
}
