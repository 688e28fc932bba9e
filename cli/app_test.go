package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/brunoscheufler/pocketnotes/listing"
	"github.com/brunoscheufler/pocketnotes/notebook"
	"github.com/brunoscheufler/pocketnotes/store"
	"github.com/brunoscheufler/pocketnotes/telemetry"
	"github.com/stretchr/testify/require"
)

// newTestApp wires a CLIApp to in-memory stores without starting the
// terminal event loop
func newTestApp(t *testing.T) *CLIApp {
	t.Helper()

	kv := store.NewMemoryKV()
	accounts := store.NewAccountStore(kv)
	notes := store.NewNoteStore(kv)
	blobs, err := store.NewBlobStore(t.TempDir())
	require.NoError(t, err)

	svc := notebook.NewService(accounts, notes, blobs,
		notebook.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	tel := telemetry.New(accounts, notes, telemetry.Options{})

	c := NewCLIApp(svc, tel, CLIOptions{Theme: "light"})
	c.Setup()
	t.Cleanup(func() {
		c.cancel()
		tel.Stop()
	})
	return c
}

func frontPage(c *CLIApp) string {
	name, _ := c.pages.GetFrontPage()
	return name
}

func status(c *CLIApp) string {
	return c.statusView.GetText(true)
}

func signUp(t *testing.T, c *CLIApp, username, pin string) {
	t.Helper()
	c.showSignUp()
	c.signUp.username.SetText(username)
	c.signUp.pin.SetText(pin)
	c.signUp.confirm.SetText(pin)
	c.submitSignUp()
	require.True(t, c.session.Valid(), status(c))
}

func TestCLIApp_LoginFlow(t *testing.T) {
	c := newTestApp(t)
	require.Equal(t, pageLogin, frontPage(c))

	c.login.username.SetText("alice")
	c.login.pin.SetText("1234")
	c.submitLogin()
	require.Equal(t, pageLogin, frontPage(c))
	require.Equal(t, "Invalid username or PIN", status(c))
	require.Empty(t, c.login.pin.GetText())

	signUp(t, c, "alice", "1234")
	require.Equal(t, pageNotes, frontPage(c))
	require.Equal(t, "Signed in as alice", status(c))

	c.logout()
	require.False(t, c.session.Valid())
	require.Equal(t, pageLogin, frontPage(c))

	c.login.username.SetText("ALICE")
	c.login.pin.SetText("1234")
	c.submitLogin()
	require.Equal(t, pageNotes, frontPage(c))
	require.Equal(t, "alice", c.session.Username)
}

func TestCLIApp_SignUpMismatch(t *testing.T) {
	c := newTestApp(t)

	c.showSignUp()
	c.signUp.username.SetText("bob")
	c.signUp.pin.SetText("1234")
	c.signUp.confirm.SetText("4321")
	c.submitSignUp()

	require.Equal(t, pageSignUp, frontPage(c))
	require.Equal(t, "PINs do not match", status(c))
}

func TestCLIApp_EditNotes(t *testing.T) {
	c := newTestApp(t)
	signUp(t, c, "alice", "1234")

	c.newNote()
	require.Equal(t, pageEditor, frontPage(c))
	c.saveDraft()
	require.Equal(t, pageEditor, frontPage(c))
	require.Equal(t, "Add a title or some text first", status(c))

	image := filepath.Join(t.TempDir(), "cat.jpg")
	require.NoError(t, os.WriteFile(image, []byte("meow"), 0o600))

	c.editor.title.SetText("Groceries")
	c.editor.body.SetText("milk\neggs", false)
	c.editor.attach.SetText(filepath.Join(t.TempDir(), "missing.jpg"))
	c.attachImage()
	require.Empty(t, c.draft.NewImages)

	c.editor.attach.SetText(image)
	c.attachImage()
	require.Equal(t, []string{image}, c.draft.NewImages)
	require.Equal(t, 1, c.editor.images.GetItemCount())

	c.saveDraft()
	require.Equal(t, pageNotes, frontPage(c))
	require.Len(t, c.notes, 1)
	require.Equal(t, "Groceries", c.notes[0].Title)
	require.Len(t, c.notes[0].ImageURIs, 1)
	require.Equal(t, 1, c.browse.list.GetItemCount())

	c.openNote(0)
	require.Equal(t, "Groceries", c.editor.title.GetText())
	require.Equal(t, 1, c.editor.images.GetItemCount())
	c.removeImage(0)
	require.Empty(t, c.draft.ImageURIs)
	c.saveDraft()
	require.Nil(t, c.notes[0].ImageURIs)

	c.browse.search.SetText("nothing like this")
	require.Empty(t, c.notes)
	c.browse.search.SetText("EGGS")
	require.Len(t, c.notes, 1)

	c.cycleSort()
	require.Equal(t, listing.Options[1].Order, c.order)
}

func TestCLIApp_SwitchAccount(t *testing.T) {
	c := newTestApp(t)
	signUp(t, c, "bob", "5678")
	c.logout()
	signUp(t, c, "alice", "1234")

	c.showSwitchAccount()
	require.Equal(t, pageSwitch, frontPage(c))

	c.switcher.pin.SetText("0000")
	c.submitSwitch()
	require.Equal(t, "alice", c.session.Username)
	require.Equal(t, "Invalid username or PIN", status(c))

	c.switcher.pin.SetText("5678")
	c.submitSwitch()
	require.Equal(t, "bob", c.session.Username)
	require.Equal(t, pageNotes, frontPage(c))
	require.False(t, c.pages.HasPage(pageSwitch))
}
