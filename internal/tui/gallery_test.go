package tui

import (
	"testing"

	"github.com/blacktop/texttoimage/internal/api"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func newGalleryModel(t *testing.T, b *fakeBackend) (Model, *recordingNotifier, *recordingDialogs) {
	t.Helper()
	m, n, d := newTestModel(t, b, PageGallery)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	loaded, ok := findMsg[galleryLoadedMsg](collect(m.Init()))
	require.True(t, ok)
	m, _ = update(t, m, loaded)
	require.False(t, m.gallery.loading)
	return m, n, d
}

func galleryIDs(m Model) []api.ID {
	var ids []api.ID
	for _, item := range m.gallery.list.Items() {
		ids = append(ids, item.(galleryItem).ID)
	}
	return ids
}

func TestDeleteConfirmRemovesExactlyOneEntry(t *testing.T) {
	b := &fakeBackend{images: images(3)}
	m, n, d := newGalleryModel(t, b)

	m, cmd := update(t, m, keyRunes("d"))
	require.Nil(t, cmd)
	id, armed := m.gallery.target.Armed()
	require.True(t, armed)
	require.Equal(t, api.ID("1"), id)
	kind, _ := d.Active()
	require.Equal(t, DialogConfirmDelete, kind)
	require.Empty(t, b.deleteCalls, "arming alone sends nothing")

	m, cmd = update(t, m, keyRunes("y"))
	deleted, ok := findMsg[deletedMsg](collect(cmd))
	require.True(t, ok)
	require.Equal(t, []api.ID{"1"}, b.deleteCalls)

	m, cmd = update(t, m, deleted)
	require.Equal(t, []api.ID{"2", "3"}, galleryIDs(m))
	_, armed = m.gallery.target.Armed()
	require.False(t, armed)
	require.False(t, m.gallery.target.inFlight)
	kind, _ = d.Active()
	require.Equal(t, DialogNone, kind)
	require.Equal(t, 1, d.dismissed)
	require.Equal(t, []note{{level: LevelSuccess, message: msgDeleted}}, n.notes)

	_, reload := findMsg[reloadGalleryMsg](collect(cmd))
	require.False(t, reload, "entries remain, no reload")
}

func TestConfirmWithoutArmedTargetIsNoop(t *testing.T) {
	b := &fakeBackend{images: images(2)}
	m, n, d := newGalleryModel(t, b)

	require.Nil(t, m.confirmDelete())

	// a confirm dialog shown without arming still sends nothing
	d.Show(DialogConfirmDelete, b.images[0])
	m, cmd := update(t, m, keyRunes("y"))
	require.Nil(t, cmd)
	require.Empty(t, b.deleteCalls)
	require.Empty(t, n.notes)
	require.Len(t, galleryIDs(m), 2)
}

func TestConfirmIgnoredWhileDeleteInFlight(t *testing.T) {
	b := &fakeBackend{images: images(2)}
	m, _, _ := newGalleryModel(t, b)

	m, _ = update(t, m, keyRunes("d"))
	m, cmd := update(t, m, keyRunes("y"))
	require.NotNil(t, cmd)
	m, cmd = update(t, m, keyEnter())
	require.Nil(t, cmd)
	require.True(t, m.gallery.target.inFlight)
}

func TestDeleteFailureKeepsEntries(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "application failure", err: &api.Error{StatusCode: 404, Message: "Image not found"}, want: msgDeleteFailed},
		{name: "transport failure", err: errTransport, want: msgDeleteNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{images: images(3), deleteErr: tt.err}
			m, n, d := newGalleryModel(t, b)

			m, _ = update(t, m, keyRunes("d"))
			m, cmd := update(t, m, keyRunes("y"))
			deleted, ok := findMsg[deletedMsg](collect(cmd))
			require.True(t, ok)
			m, _ = update(t, m, deleted)

			require.Equal(t, []api.ID{"1", "2", "3"}, galleryIDs(m))
			require.Equal(t, []note{{level: LevelError, message: tt.want}}, n.notes)
			_, armed := m.gallery.target.Armed()
			require.False(t, armed)
			require.False(t, m.gallery.target.inFlight)
			require.Zero(t, d.dismissed)
		})
	}
}

func TestDeletingLastEntryReloadsGallery(t *testing.T) {
	b := &fakeBackend{images: images(1)}
	m, _, _ := newGalleryModel(t, b)
	require.Equal(t, []int{1}, b.imagesCalls)

	m, _ = update(t, m, keyRunes("d"))
	m, cmd := update(t, m, keyRunes("y"))
	deleted, _ := findMsg[deletedMsg](collect(cmd))

	b.images = nil
	m, cmd = update(t, m, deleted)
	require.Zero(t, m.gallery.count())
	reload, ok := findMsg[reloadGalleryMsg](collect(cmd))
	require.True(t, ok)

	m, cmd = update(t, m, reload)
	require.True(t, m.gallery.loading)
	loaded, ok := findMsg[galleryLoadedMsg](collect(cmd))
	require.True(t, ok)
	require.Equal(t, []int{1, 1}, b.imagesCalls)

	m, _ = update(t, m, loaded)
	require.Contains(t, m.galleryView(), msgGalleryEmpty)
}

func TestViewDialogMakesNoRequest(t *testing.T) {
	b := &fakeBackend{images: images(2)}
	m, n, d := newGalleryModel(t, b)
	calls := len(b.imagesCalls)

	m, cmd := update(t, m, keyEnter())
	require.Nil(t, cmd)
	kind, img := d.Active()
	require.Equal(t, DialogDetail, kind)
	require.Equal(t, "prompt 1", img.Prompt)
	require.Len(t, b.imagesCalls, calls)
	require.Empty(t, b.deleteCalls)

	view := m.View()
	require.Contains(t, view, "/static/generated/img1.png")
	require.Contains(t, view, "/download/img1.png")

	m, cmd = update(t, m, keyRunes("s"))
	_, ok := findMsg[downloadedMsg](collect(cmd))
	require.True(t, ok)
	require.Equal(t, []string{"/download/img1.png"}, b.downloads)

	_, _ = update(t, m, keyEsc())
	kind, _ = d.Active()
	require.Equal(t, DialogNone, kind)
	require.Empty(t, n.notes)
}

func TestGalleryPaging(t *testing.T) {
	b := &fakeBackend{images: images(2), pages: 3}
	m, _, _ := newGalleryModel(t, b)

	m, cmd := update(t, m, keyRunes("["))
	require.Nil(t, cmd, "already on the first page")

	m, cmd = update(t, m, keyRunes("]"))
	require.True(t, m.gallery.loading)
	loaded, ok := findMsg[galleryLoadedMsg](collect(cmd))
	require.True(t, ok)
	m, _ = update(t, m, loaded)
	require.Equal(t, 2, m.gallery.page)
	require.Equal(t, []int{1, 2}, b.imagesCalls)
}

func TestGalleryLoadFailure(t *testing.T) {
	b := &fakeBackend{imagesErr: errTransport}
	m, _, _ := newGalleryModel(t, b)
	require.Contains(t, m.galleryView(), msgGalleryFailed)
}
