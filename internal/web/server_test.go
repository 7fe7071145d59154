package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/conorfennell/cardfold/internal/app"
	"github.com/conorfennell/cardfold/internal/library"
	"github.com/conorfennell/cardfold/internal/storage"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *app.Controller) {
	t.Helper()
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctrl := app.New(
		library.NewFolderService(db, nil),
		library.NewCardService(db, nil),
		library.NewReviewService(db, nil),
		nil,
	)
	srv, err := NewServer(ctrl, nil)
	require.NoError(t, err)
	return srv, ctrl
}

func post(t *testing.T, srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestIndexRendersFolderList(t *testing.T) {
	srv, ctrl := newTestServer(t)

	rec := post(t, srv, "/folders", url.Values{"name": {"Spanish"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = get(t, srv, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Spanish")
	require.Contains(t, rec.Body.String(), "0 cards")
	require.Len(t, ctrl.Folders(), 1)
}

func TestCreateFolderValidationSurfacedNotFatal(t *testing.T) {
	srv, ctrl := newTestServer(t)

	rec := post(t, srv, "/folders", url.Values{"name": {"   "}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "error=")
	require.Empty(t, ctrl.Folders())
}

func TestFolderSelectionShowsCards(t *testing.T) {
	srv, ctrl := newTestServer(t)

	post(t, srv, "/folders", url.Values{"name": {"Maths"}})
	require.NoError(t, ctrl.RefreshFolders(t.Context()))
	folderID := ctrl.Folders()[0].ID

	rec := post(t, srv, "/folders/"+itoa(folderID)+"/select", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	post(t, srv, "/cards", url.Values{"front": {"2+2"}, "back": {"4"}})

	rec = get(t, srv, "/")
	require.Contains(t, rec.Body.String(), "2+2")
	require.Contains(t, rec.Body.String(), "Study")
}

func TestStudyFlowOverHTTP(t *testing.T) {
	srv, ctrl := newTestServer(t)

	post(t, srv, "/folders", url.Values{"name": {"Maths"}})
	require.NoError(t, ctrl.RefreshFolders(t.Context()))
	folderID := ctrl.Folders()[0].ID
	post(t, srv, "/folders/"+itoa(folderID)+"/select", nil)
	post(t, srv, "/cards", url.Values{"front": {"2+2"}, "back": {"4"}})

	post(t, srv, "/study/start", nil)
	rec := get(t, srv, "/")
	require.Contains(t, rec.Body.String(), "2+2")
	require.NotContains(t, rec.Body.String(), "<h2>4</h2>")

	post(t, srv, "/study/reveal", nil)
	rec = get(t, srv, "/")
	require.Contains(t, rec.Body.String(), "<h2>4</h2>")

	post(t, srv, "/study/grade", url.Values{"correct": {"1"}})
	rec = get(t, srv, "/")
	require.Contains(t, rec.Body.String(), "Session complete")
	require.Contains(t, rec.Body.String(), "accuracy 100%")

	post(t, srv, "/study/exit", nil)
	require.Equal(t, app.ScreenCards, ctrl.Screen())
}

func TestStartStudyWithEmptyFolderIsRecoverable(t *testing.T) {
	srv, ctrl := newTestServer(t)

	post(t, srv, "/folders", url.Values{"name": {"Empty"}})
	require.NoError(t, ctrl.RefreshFolders(t.Context()))
	post(t, srv, "/folders/"+itoa(ctrl.Folders()[0].ID)+"/select", nil)

	rec := post(t, srv, "/study/start", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "error=")
}

func TestOutOfOrderStudyActionRedirects(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := post(t, srv, "/study/reveal", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
