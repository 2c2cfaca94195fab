package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/blacktop/texttoimage/internal/api"
	"github.com/stretchr/testify/require"
)

func images(n int) []api.Image {
	out := make([]api.Image, n)
	for i := range out {
		out[i] = api.Image{
			ID:        api.ID(fmt.Sprint(i + 1)),
			Prompt:    fmt.Sprintf("prompt %d", i+1),
			ModelName: "stabilityai/stable-diffusion-2-1",
			Filename:  fmt.Sprintf("img%d.png", i+1),
		}
	}
	return out
}

func TestRecentStripBoundsEntries(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		wantState recentState
		wantLen   int
	}{
		{name: "empty", n: 0, wantState: recentEmpty, wantLen: 0},
		{name: "one", n: 1, wantState: recentReady, wantLen: 1},
		{name: "six", n: 6, wantState: recentReady, wantLen: 6},
		{name: "twelve", n: 12, wantState: recentReady, wantLen: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{images: images(tt.n)}
			m, _, _ := newTestModel(t, b, PageGenerate)

			loaded, ok := findMsg[recentLoadedMsg](collect(loadRecent(m.ctx, b)))
			require.True(t, ok)
			m, _ = update(t, m, loaded)

			require.Equal(t, tt.wantState, m.recent.state)
			require.Len(t, m.recent.images, tt.wantLen)

			view := m.recent.view(200)
			if tt.n == 0 {
				require.Contains(t, view, msgNoImages)
				return
			}
			require.NotContains(t, view, msgNoImages)
			require.Equal(t, tt.wantLen, strings.Count(view, "prompt "))
		})
	}
}

func TestRecentStripLoadFailure(t *testing.T) {
	b := &fakeBackend{imagesErr: errors.New("error sending request: dial tcp: refused")}
	m, _, _ := newTestModel(t, b, PageGenerate)

	loaded, ok := findMsg[recentLoadedMsg](collect(loadRecent(m.ctx, b)))
	require.True(t, ok)
	m, _ = update(t, m, loaded)

	require.Equal(t, recentFailed, m.recent.state)
	require.Contains(t, m.recent.view(120), msgRecentFailed)
	require.NotContains(t, m.recent.view(120), msgNoImages)
	require.Len(t, b.imagesCalls, 1, "no retry")
}

func TestRecentStripReplacesPreviousEntries(t *testing.T) {
	var r recentStrip
	r.apply(recentLoadedMsg{images: images(3)})
	require.Len(t, r.images, 3)
	r.apply(recentLoadedMsg{err: errTransport})
	require.Empty(t, r.images)
	require.Equal(t, recentFailed, r.state)
}
