package jobs

import (
	"testing"

	"github.com/cuongbtq/video-downloader/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowList_Normalize(t *testing.T) {
	a := NewAllowList(nil)

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "watch url", raw: "https://www.youtube.com/watch?v=abc", want: "https://www.youtube.com/watch?v=abc"},
		{name: "short url", raw: "https://youtu.be/abc", want: "https://youtu.be/abc"},
		{name: "mobile subdomain", raw: "http://m.youtube.com/watch?v=abc", want: "http://m.youtube.com/watch?v=abc"},
		{name: "missing scheme", raw: "youtu.be/abc", want: "https://youtu.be/abc"},
		{name: "surrounding whitespace", raw: "  https://youtu.be/abc \n", want: "https://youtu.be/abc"},
		{name: "uppercase host", raw: "https://WWW.YouTube.com/watch?v=abc", want: "https://WWW.YouTube.com/watch?v=abc"},
		{name: "empty", raw: "", wantErr: true},
		{name: "whitespace only", raw: "   ", wantErr: true},
		{name: "not a url", raw: "not a url", wantErr: true},
		{name: "other host", raw: "https://example.com/video", wantErr: true},
		{name: "lookalike host", raw: "https://notyoutube.com/watch?v=abc", wantErr: true},
		{name: "host in path", raw: "https://example.com/youtube.com", wantErr: true},
		{name: "unsupported scheme", raw: "ftp://youtube.com/video", wantErr: true},
		{name: "javascript scheme", raw: "javascript://youtube.com/%0aalert(1)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Normalize(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllowList_CustomHosts(t *testing.T) {
	a := NewAllowList([]string{" Vimeo.com ", ""})

	_, err := a.Normalize("https://player.vimeo.com/video/1")
	require.NoError(t, err)

	_, err = a.Normalize("https://youtube.com/watch?v=abc")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
