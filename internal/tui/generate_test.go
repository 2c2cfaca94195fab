package tui

import (
	"testing"

	"github.com/blacktop/texttoimage/internal/api"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"
)

func TestSubmitBlankPromptMakesNoRequest(t *testing.T) {
	for _, prompt := range []string{"", "   ", "\t \t"} {
		b := &fakeBackend{}
		m, _, _ := newTestModel(t, b, PageGenerate)
		m.prompt.SetValue(prompt)

		m, cmd := update(t, m, keyEnter())

		require.Nil(t, cmd)
		for _, msg := range collect(cmd) {
			_, isGenerated := msg.(generatedMsg)
			require.False(t, isGenerated)
		}
		require.Empty(t, b.generateReqs)
		require.Equal(t, msgEmptyPrompt, m.gen.errMsg)
		require.False(t, m.gen.loading)
		require.True(t, m.gen.submitEnabled)
	}
}

func TestSubmitStartsLoadingAndSendsTrimmedPrompt(t *testing.T) {
	b := &fakeBackend{generateResp: &api.GenerateResponse{Success: true, Filename: "abc.png", ImageID: "42", DownloadURL: "/download/abc.png"}}
	m, _, _ := newTestModel(t, b, PageGenerate)
	m.gen.showError("old error")
	m.gen.showResult = true
	m.prompt.SetValue("  a red fox in snow ")

	m, cmd := update(t, m, keyEnter())
	require.NotNil(t, cmd)
	require.True(t, m.gen.loading)
	require.False(t, m.gen.submitEnabled)
	require.Empty(t, m.gen.errMsg)
	require.False(t, m.gen.showResult)

	msgs := collect(cmd)
	generated, ok := findMsg[generatedMsg](msgs)
	require.True(t, ok)
	require.Equal(t, []api.GenerateRequest{{Prompt: "a red fox in snow", ModelName: "stabilityai/stable-diffusion-2-1"}}, b.generateReqs)

	// a second submit while loading is ignored
	m, cmd = update(t, m, keyEnter())
	require.Nil(t, cmd)
	require.Len(t, b.generateReqs, 1)

	m, _ = update(t, m, generated)
	require.False(t, m.gen.loading)
	require.True(t, m.gen.submitEnabled)
}

func TestGenerationSuccessStoresSession(t *testing.T) {
	b := &fakeBackend{fetchData: []byte("not an image")}
	m, _, _ := newTestModel(t, b, PageGenerate)
	m.prompt.SetValue("a red fox in snow")
	m, _ = update(t, m, keyEnter())

	resp := &api.GenerateResponse{Success: true, Filename: "abc.png", ImageID: "42", DownloadURL: "/download/abc.png"}
	m, cmd := update(t, m, generatedMsg{resp: resp})

	require.Equal(t, Session{
		ImageID:     "42",
		DownloadURL: "/download/abc.png",
		Filename:    "abc.png",
		ImageSrc:    "/static/generated/abc.png",
	}, m.Session())
	require.True(t, m.gen.showResult)
	require.Empty(t, m.gen.errMsg)
	require.False(t, m.gen.loading)
	require.True(t, m.gen.submitEnabled)
	require.Equal(t, "/static/generated/abc.png", m.result.src)

	msgs := collect(cmd)
	_, refresh := findMsg[refreshRecentMsg](msgs)
	require.True(t, refresh, "recent strip refresh should be scheduled")
	preview, ok := findMsg[previewMsg](msgs)
	require.True(t, ok)

	m, _ = update(t, m, preview)
	require.Error(t, m.result.err, "undecodable preview is reported, not fatal")

	m, cmd = update(t, m, refreshRecentMsg{})
	loaded, ok := findMsg[recentLoadedMsg](collect(cmd))
	require.True(t, ok)
	m, _ = update(t, m, loaded)
	require.Equal(t, recentEmpty, m.recent.state)
}

func TestNewResultReplacesPreviousPreview(t *testing.T) {
	b := &fakeBackend{}
	m, _, _ := newTestModel(t, b, PageGenerate)
	m.result = resultPanel{src: "/static/generated/old.png", rendered: "old"}

	m, _ = update(t, m, generatedMsg{resp: &api.GenerateResponse{Success: true, Filename: "new.png", ImageID: "2"}})
	require.Equal(t, "/static/generated/new.png", m.result.src)
	require.Empty(t, m.result.rendered)

	// a late preview for the old image is dropped
	m, _ = update(t, m, previewMsg{src: "/static/generated/old.png", data: []byte("x")})
	require.Nil(t, m.result.preview)
}

func TestGenerationCleanupOnEveryOutcome(t *testing.T) {
	tests := []struct {
		name    string
		msg     generatedMsg
		wantErr string
	}{
		{
			name: "success",
			msg:  generatedMsg{resp: &api.GenerateResponse{Success: true, Filename: "a.png", ImageID: "1", DownloadURL: "/download/a.png"}},
		},
		{
			name:    "application failure",
			msg:     generatedMsg{resp: &api.GenerateResponse{Success: false, Error: "Model is currently loading."}},
			wantErr: "Model is currently loading.",
		},
		{
			name:    "failure without message",
			msg:     generatedMsg{resp: &api.GenerateResponse{Success: false}},
			wantErr: msgGenerateFailed,
		},
		{
			name:    "malformed payload",
			msg:     generatedMsg{resp: &api.GenerateResponse{ImageID: "1"}},
			wantErr: msgGenerateFailed,
		},
		{
			name:    "transport failure",
			msg:     generatedMsg{err: errTransport},
			wantErr: msgNetworkError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newTestModel(t, &fakeBackend{}, PageGenerate)
			m.prompt.SetValue("prompt")
			m, _ = update(t, m, keyEnter())
			require.True(t, m.gen.loading)

			m, _ = update(t, m, tt.msg)
			require.False(t, m.gen.loading)
			require.True(t, m.gen.submitEnabled)
			require.Equal(t, tt.wantErr, m.gen.errMsg)
			require.Equal(t, tt.wantErr == "", m.gen.showResult)
		})
	}
}

func TestFailureKeepsPreviousSession(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeBackend{}, PageGenerate)
	m, _ = update(t, m, generatedMsg{resp: &api.GenerateResponse{Success: true, Filename: "a.png", ImageID: "1", DownloadURL: "/download/a.png"}})
	m, _ = update(t, m, generatedMsg{err: errTransport})
	require.Equal(t, api.ID("1"), m.Session().ImageID)
}

func TestProgressCreepsAndCaps(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeBackend{}, PageGenerate)
	m.prompt.SetValue("prompt")
	m, _ = update(t, m, keyEnter())

	seq := m.gen.seq
	for range 200 {
		m, _ = update(t, m, progressMsg{seq: seq})
	}
	require.InDelta(t, progressCap, m.gen.percent, 1e-9)

	m, cmd := update(t, m, progressMsg{seq: seq})
	require.Nil(t, cmd)

	// stale ticks from an earlier request are ignored
	m, cmd = update(t, m, progressMsg{seq: seq - 1})
	require.Nil(t, cmd)
}

func TestDismissErrorAndGenerateAnother(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeBackend{}, PageGenerate)
	m, _ = update(t, m, keyEnter())
	require.Equal(t, msgEmptyPrompt, m.gen.errMsg)

	m, _ = update(t, m, keyEsc())
	require.Empty(t, m.gen.errMsg)

	m.prompt.SetValue("x")
	m, _ = update(t, m, generatedMsg{resp: &api.GenerateResponse{Success: true, Filename: "a.png"}})
	require.True(t, m.gen.showResult)

	m, _ = update(t, m, keyCtrl("n"))
	require.False(t, m.gen.showResult)
	require.Empty(t, m.prompt.Value())
}

func TestDownloadUsesStoredSession(t *testing.T) {
	b := &fakeBackend{}
	m, n, _ := newTestModel(t, b, PageGenerate)
	m.opts.OutputFolder = "out"

	m, cmd := update(t, m, keyCtrl("s"))
	require.Nil(t, cmd, "no download without a generated image")

	m, _ = update(t, m, generatedMsg{resp: &api.GenerateResponse{Success: true, Filename: "abc.png", ImageID: "42", DownloadURL: "/download/abc.png"}})
	m, cmd = update(t, m, keyCtrl("s"))
	downloaded, ok := findMsg[downloadedMsg](collect(cmd))
	require.True(t, ok)
	require.Equal(t, []string{"/download/abc.png"}, b.downloads)

	_, _ = update(t, m, downloaded)
	require.Equal(t, []note{{level: LevelSuccess, message: "Image saved: out/saved.png"}}, n.notes)
}

func TestCycleModel(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeBackend{}, PageGenerate)
	m, _ = update(t, m, modelsLoadedMsg{models: []api.ModelInfo{{ID: "a/one"}, {ID: "b/two"}}})

	// configured model is not in the catalog, so tab starts at the first entry
	m, _ = update(t, m, keyTab())
	require.Equal(t, "a/one", m.modelName)
	m, _ = update(t, m, keyTab())
	require.Equal(t, "b/two", m.modelName)
	m, _ = update(t, m, keyTab())
	require.Equal(t, "a/one", m.modelName)
}

func TestCounterStyle(t *testing.T) {
	require.Equal(t, lipgloss.Color("#6c757d"), counterStyle(0).GetForeground())
	require.Equal(t, lipgloss.Color("#6c757d"), counterStyle(800).GetForeground())
	require.Equal(t, lipgloss.Color("#fd7e14"), counterStyle(801).GetForeground())
	require.Equal(t, lipgloss.Color("#dc3545"), counterStyle(901).GetForeground())
}
