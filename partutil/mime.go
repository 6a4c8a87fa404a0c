// Package partutil holds cross-provider helpers shared by adapters: audio
// MIME/format conversion, lossy down-conversion for modalities a provider
// does not support, and delta-index inference for providers that do not
// supply a stable per-Part index (spec.md §4.2, §4.1 Part Utilities).
package partutil

import (
	"strings"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
)

var mimeToFormat = map[string]model.AudioFormat{
	"audio/wav":       model.AudioFormatWAV,
	"audio/x-wav":     model.AudioFormatWAV,
	"audio/mpeg":      model.AudioFormatMP3,
	"audio/mp3":       model.AudioFormatMP3,
	"audio/l16":       model.AudioFormatLinear16,
	"audio/pcm":       model.AudioFormatLinear16,
	"audio/flac":      model.AudioFormatFLAC,
	"audio/x-flac":    model.AudioFormatFLAC,
	"audio/basic":     model.AudioFormatMulaw,
	"audio/mulaw":     model.AudioFormatMulaw,
	"audio/alaw":      model.AudioFormatAlaw,
	"audio/aac":       model.AudioFormatAAC,
	"audio/opus":      model.AudioFormatOpus,
	"audio/ogg":       model.AudioFormatOpus,
}

var formatToMime = map[model.AudioFormat]string{
	model.AudioFormatWAV:      "audio/wav",
	model.AudioFormatMP3:      "audio/mpeg",
	model.AudioFormatLinear16: "audio/l16",
	model.AudioFormatFLAC:     "audio/flac",
	model.AudioFormatMulaw:    "audio/basic",
	model.AudioFormatAlaw:     "audio/alaw",
	model.AudioFormatAAC:      "audio/aac",
	model.AudioFormatOpus:     "audio/opus",
}

// AudioFormatFromMIME maps an inbound MIME type to the library's
// AudioFormat enum. It returns an *apierror.Error of Kind Unsupported for
// a MIME type no adapter knows how to interpret.
func AudioFormatFromMIME(mime string) (model.AudioFormat, error) {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if semi := strings.IndexByte(mime, ';'); semi >= 0 {
		mime = mime[:semi]
	}
	if f, ok := mimeToFormat[mime]; ok {
		return f, nil
	}
	return "", apierror.Unsupportedf("partutil: unsupported audio MIME type %q", mime)
}

// MIMEFromAudioFormat maps an AudioFormat back to its canonical MIME type.
func MIMEFromAudioFormat(format model.AudioFormat) (string, error) {
	if m, ok := formatToMime[format]; ok {
		return m, nil
	}
	return "", apierror.Unsupportedf("partutil: unsupported audio format %q", format)
}
