package partutil

import (
	"testing"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/stretchr/testify/require"
)

func TestAudioFormatFromMIMEMapsKnownTypes(t *testing.T) {
	cases := []struct {
		mime   string
		format model.AudioFormat
	}{
		{"audio/wav", model.AudioFormatWAV},
		{"audio/mpeg", model.AudioFormatMP3},
		{"audio/flac; codecs=0", model.AudioFormatFLAC},
	}
	for _, c := range cases {
		got, err := AudioFormatFromMIME(c.mime)
		require.NoError(t, err)
		require.Equal(t, c.format, got)
	}
}

func TestAudioFormatFromMIMEUnsupported(t *testing.T) {
	_, err := AudioFormatFromMIME("audio/x-made-up")
	require.Error(t, err)
	require.True(t, apierror.Is(err, apierror.KindUnsupported))
}

func TestMIMEFromAudioFormat(t *testing.T) {
	got, err := MIMEFromAudioFormat(model.AudioFormatOpus)
	require.NoError(t, err)
	require.Equal(t, "audio/opus", got)
}
