package announcements

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	"github.com/wrale/wrale-kiosk/internal/wkioskctl/util"
)

const announcementsJSON = `[
  {"_id": "a1", "title": "Fire drill", "content": "At 11:00", "type": "urgent", "priority": 9,
   "startDate": "2024-03-04T00:00:00Z", "endDate": "2024-03-04T23:59:00Z"},
  {"_id": "a2", "title": "Welcome visitors", "content": "Hello", "type": "info",
   "startDate": "2024-03-01T00:00:00Z", "endDate": "2024-03-31T00:00:00Z"},
  {"_id": "a3", "title": "Old party", "content": "Done", "type": "event", "priority": 7,
   "startDate": "2024-01-15T00:00:00Z", "endDate": "2024-02-01T00:00:00Z"},
  {"_id": "a4", "title": "Draft", "content": "Hidden", "type": "info", "priority": 8, "isActive": false},
  {"_id": "a5", "title": "Undated", "content": "No window", "type": "info", "priority": 6}
]`

func run(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("WKIOSKCTL_SERVER", "")
	t.Setenv("WKIOSKCTL_TOKEN", "")

	root := &cobra.Command{Use: "wkioskctl", SilenceUsage: true, SilenceErrors: true}
	util.AddConnectionFlags(root)
	root.AddCommand(NewCommand())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--server", server + "/api"}, args...))
	err := root.Execute()
	return out.String(), err
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/announcements":
			w.Write([]byte(announcementsJSON))
		case r.Method == http.MethodPatch && r.URL.Path == "/api/announcements/a4/toggle":
			w.Write([]byte(`{"_id":"a4","title":"Draft","type":"info","isActive":true}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/api/announcements/a2":
			w.Write([]byte(`{"message":"Announcement deleted"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Announcement not found"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestShowing(t *testing.T) {
	var items []v1alpha1.Announcement
	require.NoError(t, json.Unmarshal([]byte(announcementsJSON), &items))

	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	got := Showing(items, now)
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].ID, "highest priority first")
	assert.Equal(t, "a2", got[1].ID)
	assert.Equal(t, v1alpha1.DefaultAnnouncementPriority, got[1].Priority)

	got = Showing(items, now.Add(24*time.Hour))
	require.Len(t, got, 1)
	assert.Equal(t, "a2", got[0].ID)
}

func TestList(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, srv.URL, "announcements", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "WINDOW")
	assert.Contains(t, lines[1], "2024-03-04 00:00 to 2024-03-04 23:59")
	assert.Contains(t, lines[2], "2024-03-01 00:00 to 2024-03-31 00:00")
	assert.Contains(t, lines[3], "2024-01-15 00:00 to 2024-02-01 00:00")
}

func TestList_Active(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, srv.URL, "announcements", "list", "--active", "--at", "2024-03-04T10:00:00Z", "-o", "json")
	require.NoError(t, err)

	var items []v1alpha1.Announcement
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "a1", items[0].ID)

	out, err = run(t, srv.URL, "announcements", "list", "--active", "--at", "2024-03-10T10:00:00Z", "--timezone", "UTC")
	require.NoError(t, err)
	assert.NotContains(t, out, "Fire drill")
	assert.Contains(t, out, "Welcome visitors")
	assert.NotContains(t, out, "Undated", "announcements without a window are never shown")
}

func TestToggle(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, srv.URL, "announcements", "toggle", "a4")
	require.NoError(t, err)
	assert.Equal(t, "Announcement \"Draft\" is now active\n", out)

	_, err = run(t, srv.URL, "announcements", "toggle", "zz")
	assert.ErrorContains(t, err, "Announcement not found")

	_, err = run(t, srv.URL, "announcements", "toggle")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, srv.URL, "announcements", "delete", "a2")
	require.NoError(t, err)
	assert.Equal(t, "Announcement \"a2\" deleted\n", out)

	_, err = run(t, srv.URL, "ann", "rm", "zz")
	assert.ErrorContains(t, err, "Announcement not found")
}
