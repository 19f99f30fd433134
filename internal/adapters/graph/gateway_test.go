package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mailmind/mailmind/internal/core"
)

type staticTokens string

func (s staticTokens) Token(context.Context) (string, error) { return string(s), nil }

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, staticTokens("tok-1"), zap.NewNop())
	return NewGateway(client, zap.NewNop()), srv
}

func TestListMessagesParsesAndDefaults(t *testing.T) {
	var gotAuth string
	var gotQuery map[string]string
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/me/messages", r.URL.Path)
		q := r.URL.Query()
		gotQuery = map[string]string{
			"$top":     q.Get("$top"),
			"$orderby": q.Get("$orderby"),
			"$filter":  q.Get("$filter"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value": [
			{
				"id": "m1",
				"subject": "Weekly digest",
				"from": {"emailAddress": {"name": "News", "address": "news@example.com"}},
				"receivedDateTime": "2026-08-30T09:00:00Z",
				"bodyPreview": "This week in review",
				"importance": "high",
				"categories": ["Bulk"],
				"hasAttachments": true,
				"isRead": false,
				"flag": {"flagStatus": "flagged"}
			},
			{"id": "m2", "subject": "Bare message"}
		]}`))
	})

	mails, err := gw.ListMessages(context.Background(), "", core.ListOptions{Top: 25, UnreadOnly: true})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "25", gotQuery["$top"])
	assert.Equal(t, "receivedDateTime desc", gotQuery["$orderby"])
	assert.Equal(t, "isRead eq false", gotQuery["$filter"])

	require.Len(t, mails, 2)
	assert.Equal(t, "m1", mails[0].ID)
	assert.Equal(t, "news@example.com", mails[0].Sender.Address)
	assert.Equal(t, "News", mails[0].Sender.Name)
	assert.Equal(t, core.FlagFlagged, mails[0].Flag)
	assert.Equal(t, core.ImportanceHigh, mails[0].Importance)
	assert.True(t, mails[0].HasAttachments)

	// Missing flag and importance fall back to the quiet defaults.
	assert.Equal(t, core.FlagNotFlagged, mails[1].Flag)
	assert.Equal(t, core.ImportanceNormal, mails[1].Importance)
}

func TestListMessagesRoutesThroughFolder(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/mailFolders/inbox/messages", r.URL.Path)
		assert.Empty(t, r.URL.Query().Get("$filter"))
		w.Write([]byte(`{"value": []}`))
	})

	_, err := gw.ListMessages(context.Background(), "inbox", core.ListOptions{Top: 10})
	require.NoError(t, err)
}

func TestListFoldersRootAndChildren(t *testing.T) {
	var paths []string
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"value": [
			{"id": "f1", "displayName": "Inbox", "parentFolderId": "root", "totalItemCount": 12, "unreadItemCount": 3}
		]}`))
	})

	folders, err := gw.ListFolders(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "Inbox", folders[0].DisplayName)
	assert.Equal(t, 12, folders[0].TotalCount)
	assert.Equal(t, 3, folders[0].UnreadCount)

	_, err = gw.ListFolders(context.Background(), "f1")
	require.NoError(t, err)

	assert.Equal(t, []string{"/me/mailFolders", "/me/mailFolders/f1/childFolders"}, paths)
}

func TestMovePostsDestination(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/me/messages/m1/move", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "archive", body["destinationId"])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "m1-moved"}`))
	})

	require.NoError(t, gw.Move(context.Background(), "m1", "archive"))
}

func TestPatchMutationsAccept204(t *testing.T) {
	var bodies []map[string]interface{}
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	require.NoError(t, gw.MarkRead(ctx, "m1", true))
	require.NoError(t, gw.Flag(ctx, "m1", core.FlagComplete))
	require.NoError(t, gw.Categorise(ctx, "m1", nil))
	require.NoError(t, gw.SetImportance(ctx, "m1", core.ImportanceLow))

	require.Len(t, bodies, 4)
	assert.Equal(t, true, bodies[0]["isRead"])
	assert.Equal(t, map[string]interface{}{"flagStatus": "complete"}, bodies[1]["flag"])
	assert.Equal(t, []interface{}{}, bodies[2]["categories"], "nil categories patch as an empty array")
	assert.Equal(t, "low", bodies[3]["importance"])
}

func TestDelete(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/me/messages/m1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, gw.Delete(context.Background(), "m1"))
}

func TestErrorMessageExtraction(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"code": "ErrorItemNotFound", "message": "The specified object was not found in the store."}}`))
	})

	err := gw.Delete(context.Background(), "missing")
	var nerr *core.NetworkError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, http.StatusNotFound, nerr.Status)
	assert.Contains(t, nerr.Detail, "not found in the store")
}

func TestTokenFailurePropagatesUnwrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected when the token source fails")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, failingTokens{}, zap.NewNop())
	gw := NewGateway(client, zap.NewNop())

	err := gw.Delete(context.Background(), "m1")
	assert.ErrorIs(t, err, core.ErrSessionExpired)
}

type failingTokens struct{}

func (failingTokens) Token(context.Context) (string, error) { return "", core.ErrSessionExpired }
