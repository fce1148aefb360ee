package viewer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glbview/pkg/types"
)

func TestNewDefaults(t *testing.T) {
	c := New(Options{Widget: NewRemoteWidget(), Lister: staticLister()})
	assert.Equal(t, DefaultLoadTimeout, c.timeout)
	assert.Equal(t, string(StatusIdle), c.State().Status)
	assert.Empty(t, c.State().SelectedKey)
}

func TestStart_AutoSelectsFirstDiscovered(t *testing.T) {
	f := newFixture(t, staticLister(glb("a"), glb("b")))
	f.ctl.Start(context.Background())

	require.Eventually(t, func() bool {
		return f.ctl.State().SelectedName == "a"
	}, time.Second, 5*time.Millisecond)

	st := f.ctl.State()
	assert.Equal(t, string(StatusLoading), st.Status)
	assert.Equal(t, "/models/a.glb", f.widget.Source())
	assert.Equal(t, DefaultFlags, f.widget.Flags())
	assert.Len(t, st.Catalog, 2)
	assert.Equal(t, []string{"https://cdn.example/model-viewer.js"}, st.Widget.Scripts)
}

func TestStart_BuiltinSelectedBeforeDiscovery(t *testing.T) {
	f := newFixture(t, failingLister(), glb("builtin"))
	f.ctl.Start(context.Background())
	st := f.ctl.State()
	assert.Equal(t, "builtin", st.SelectedName)
	assert.Equal(t, "builtin:/models/builtin.glb", st.SelectedKey)
}

func TestStart_DiscoveryFailureIsSilent(t *testing.T) {
	f := newFixture(t, failingLister())
	f.ctl.Start(context.Background())
	err := f.ctl.Refresh(context.Background())
	require.Error(t, err)

	st := f.ctl.State()
	assert.Equal(t, string(StatusIdle), st.Status)
	assert.Empty(t, st.Error)
	assert.Empty(t, st.Catalog)
}

func TestStart_Idempotent(t *testing.T) {
	f := newFixture(t, staticLister())
	f.ctl.Start(context.Background())
	f.ctl.Start(context.Background())
	assert.Len(t, f.assets.Scripts(), 1)
	require.NoError(t, f.ctl.Close())
	assert.Empty(t, f.assets.Scripts())
}

func TestAutoSelectHappensOnlyOnce(t *testing.T) {
	f := newFixture(t, staticLister(glb("a"), glb("b")))
	require.NoError(t, f.ctl.Refresh(context.Background()))
	require.NoError(t, f.ctl.Select("discovered:/models/b.glb"))
	require.NoError(t, f.ctl.Refresh(context.Background()))
	assert.Equal(t, "b", f.ctl.State().SelectedName)
}

func TestSelect_LoadAndError(t *testing.T) {
	f := newFixture(t, staticLister(glb("a"), glb("b")))
	require.NoError(t, f.ctl.Refresh(context.Background()))

	require.True(t, f.widget.Fire(WidgetLoad, "/models/a.glb"))
	st := f.ctl.State()
	assert.Equal(t, string(StatusReady), st.Status)
	assert.Empty(t, st.Error)

	require.NoError(t, f.ctl.Select("discovered:/models/b.glb"))
	assert.Equal(t, string(StatusLoading), f.ctl.State().Status)
	require.True(t, f.widget.Fire(WidgetError, "/models/b.glb"))
	st = f.ctl.State()
	assert.Equal(t, string(StatusError), st.Status)
	assert.Equal(t, MsgLoadFailed, st.Error)
	assert.False(t, st.TimedOut)

	// Selecting again clears the message.
	require.NoError(t, f.ctl.Select("discovered:/models/a.glb"))
	st = f.ctl.State()
	assert.Equal(t, string(StatusLoading), st.Status)
	assert.Empty(t, st.Error)
}

func TestSelect_UnknownKey(t *testing.T) {
	f := newFixture(t, staticLister())
	err := f.ctl.Select("discovered:/models/nope.glb")
	require.Error(t, err)
	assert.True(t, IsUnknownModel(err))
}

func TestSelect_StaleHandlersCannotChangeState(t *testing.T) {
	f := newFixture(t, staticLister(glb("x"), glb("y")))
	require.NoError(t, f.ctl.Refresh(context.Background())) // auto-selects x
	require.NoError(t, f.ctl.Select("discovered:/models/y.glb"))

	// x's handlers are detached.
	assert.Equal(t, 1, f.widget.Subscribers(WidgetLoad))
	assert.Equal(t, 1, f.widget.Subscribers(WidgetError))

	// A late signal for x, whether routed through the widget or through a
	// handler that raced its detachment, leaves y loading.
	assert.False(t, f.widget.Fire(WidgetLoad, "/models/x.glb"))
	f.widget.handler(WidgetLoad, 0)()
	f.widget.handler(WidgetError, 0)()
	st := f.ctl.State()
	assert.Equal(t, "y", st.SelectedName)
	assert.Equal(t, string(StatusLoading), st.Status)
	assert.Empty(t, st.Error)

	require.True(t, f.widget.Fire(WidgetLoad, "/models/y.glb"))
	assert.Equal(t, string(StatusReady), f.ctl.State().Status)
}

func TestTimeout_LeavesLoadingWithoutMessage(t *testing.T) {
	f := newFixture(t, staticLister(glb("a")))
	require.NoError(t, f.ctl.Refresh(context.Background()))

	f.clock.Advance(DefaultLoadTimeout - time.Millisecond)
	assert.Equal(t, string(StatusLoading), f.ctl.State().Status)

	f.clock.Advance(time.Millisecond)
	st := f.ctl.State()
	assert.Equal(t, string(StatusReady), st.Status)
	assert.True(t, st.TimedOut)
	assert.Empty(t, st.Error)
	assert.Contains(t, f.pub.Names(), EventLoadTimeout)
}

func TestTimeout_OneTimerPerSelection(t *testing.T) {
	f := newFixture(t, staticLister(glb("x"), glb("y")))
	require.NoError(t, f.ctl.Refresh(context.Background()))
	assert.Equal(t, 1, f.clock.Active())

	f.clock.Advance(5 * time.Second)
	require.NoError(t, f.ctl.Select("discovered:/models/y.glb"))
	assert.Equal(t, 1, f.clock.Active())

	// x's deadline passes; y is still within its own window.
	f.clock.Advance(5 * time.Second)
	assert.Equal(t, string(StatusLoading), f.ctl.State().Status)

	f.clock.Advance(3 * time.Second)
	st := f.ctl.State()
	assert.Equal(t, string(StatusReady), st.Status)
	assert.True(t, st.TimedOut)
	assert.Equal(t, 0, f.clock.Active())
}

func TestTimeout_DoesNotOverrideTerminalSignal(t *testing.T) {
	f := newFixture(t, staticLister(glb("a")))
	require.NoError(t, f.ctl.Refresh(context.Background()))
	require.True(t, f.widget.Fire(WidgetError, ""))
	f.clock.Advance(DefaultLoadTimeout)
	st := f.ctl.State()
	assert.Equal(t, string(StatusError), st.Status)
	assert.Equal(t, MsgLoadFailed, st.Error)
	assert.False(t, st.TimedOut)
}

func TestLateErrorAfterTimeoutStillReported(t *testing.T) {
	f := newFixture(t, staticLister(glb("a")))
	require.NoError(t, f.ctl.Refresh(context.Background()))
	f.clock.Advance(DefaultLoadTimeout)
	require.True(t, f.widget.Fire(WidgetError, "/models/a.glb"))
	st := f.ctl.State()
	assert.Equal(t, string(StatusError), st.Status)
	assert.Equal(t, MsgLoadFailed, st.Error)
	assert.False(t, st.TimedOut)
}

func TestUpload_UppercaseExtensionAutoSelects(t *testing.T) {
	f := newFixture(t, staticLister())
	d, err := f.ctl.Upload("thing.GLB", strings.NewReader("glTF-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "thing", d.Name)
	assert.Equal(t, "local", d.Description)
	assert.True(t, d.IsLocal)
	assert.True(t, strings.HasPrefix(d.URL, "/blobs/"))

	st := f.ctl.State()
	assert.Equal(t, "thing", st.SelectedName)
	assert.Equal(t, d.URL, st.SelectedURL)
	assert.Equal(t, string(StatusLoading), st.Status)
	assert.Equal(t, 1, st.UploadedCount)
	assert.Equal(t, d.URL, f.widget.Source())
	assert.Equal(t, 1, f.blobs.Len())
}

func TestUpload_RejectsWrongExtension(t *testing.T) {
	f := newFixture(t, staticLister(glb("a")))
	require.NoError(t, f.ctl.Refresh(context.Background()))
	before := f.ctl.State()

	_, err := f.ctl.Upload("thing.txt", strings.NewReader("nope"))
	require.Error(t, err)
	assert.True(t, IsUnsupportedFile(err))

	st := f.ctl.State()
	assert.Equal(t, MsgUnsupportedFile, st.Error)
	assert.Len(t, st.Catalog, len(before.Catalog))
	assert.Equal(t, before.SelectedKey, st.SelectedKey)
	assert.Equal(t, before.Status, st.Status)
	assert.Equal(t, 0, f.blobs.Len())
}

func TestUpload_ClearsPreviousValidationMessage(t *testing.T) {
	f := newFixture(t, staticLister())
	_, _ = f.ctl.Upload("bad.obj", strings.NewReader(""))
	_, err := f.ctl.Upload("good.glb", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Empty(t, f.ctl.State().Error)
}

func TestUpload_TooLarge(t *testing.T) {
	f := newFixture(t, staticLister())
	f.ctl.blobs = NewBlobStore("/blobs", 4)
	_, err := f.ctl.Upload("big.glb", strings.NewReader("12345"))
	require.Error(t, err)
	assert.True(t, IsTooLarge(err))
	assert.Empty(t, f.ctl.State().Catalog)
}

func TestCatalogLengthAndRefreshKeepsUploads(t *testing.T) {
	f := newFixture(t, staticLister(glb("a"), glb("b")), glb("builtin"))
	require.NoError(t, f.ctl.Refresh(context.Background()))
	_, err := f.ctl.Upload("u1.glb", strings.NewReader("1"))
	require.NoError(t, err)
	_, err = f.ctl.Upload("u2.glb", strings.NewReader("2"))
	require.NoError(t, err)

	require.NoError(t, f.ctl.Refresh(context.Background()))
	st := f.ctl.State()
	require.Len(t, st.Catalog, 1+2+2)
	assert.Equal(t, types.SourceBuiltin, st.Catalog[0].Source)
	assert.Equal(t, types.SourceDiscovered, st.Catalog[1].Source)
	assert.Equal(t, types.SourceUploaded, st.Catalog[4].Source)
	assert.Equal(t, 2, st.UploadedCount)
	assert.Equal(t, "u2", st.SelectedName)
}

func TestSameNameAcrossSourcesSelectsByKey(t *testing.T) {
	f := newFixture(t, staticLister(glb("dup")))
	require.NoError(t, f.ctl.Refresh(context.Background()))
	up, err := f.ctl.Upload("dup.glb", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, f.ctl.Select("discovered:/models/dup.glb"))
	assert.Equal(t, "/models/dup.glb", f.ctl.State().SelectedURL)
	require.NoError(t, f.ctl.Select(up.Key()))
	assert.Equal(t, up.URL, f.ctl.State().SelectedURL)
}

func TestClose_ReleasesResources(t *testing.T) {
	f := newFixture(t, staticLister())
	f.ctl.Start(context.Background())
	_, err := f.ctl.Upload("a.glb", strings.NewReader("x"))
	require.NoError(t, err)
	require.Equal(t, 1, f.blobs.Len())

	require.NoError(t, f.ctl.Close())
	require.NoError(t, f.ctl.Close())
	assert.Equal(t, 0, f.blobs.Len())
	assert.Equal(t, 0, f.clock.Active())
	assert.Equal(t, 0, f.widget.Subscribers(WidgetLoad))
	assert.Empty(t, f.assets.Scripts())
	assert.ErrorIs(t, f.ctl.Select("uploaded:/blobs/x"), ErrClosed)
}

func TestStateVersionIncreases(t *testing.T) {
	f := newFixture(t, staticLister(glb("a")))
	require.NoError(t, f.ctl.Refresh(context.Background()))
	v1 := f.ctl.State().Version
	require.True(t, f.widget.Fire(WidgetLoad, ""))
	assert.Greater(t, f.ctl.State().Version, v1)

	var last uint64
	for _, e := range f.pub.Events() {
		if e.Name != EventState {
			continue
		}
		require.NotNil(t, e.State)
		assert.Greater(t, e.State.Version, last)
		last = e.State.Version
	}
}
