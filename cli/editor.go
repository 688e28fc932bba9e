package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/brunoscheufler/pocketnotes/notebook"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

type editorPage struct {
	form   *tview.Form
	title  *tview.InputField
	body   *tview.TextArea
	attach *tview.InputField
	images *tview.List
}

func (c *CLIApp) buildEditorPage() tview.Primitive {
	p := &c.editor

	p.title = tview.NewInputField()
	p.title.SetLabel("Title")

	p.body = tview.NewTextArea()
	p.body.SetLabel("Body")
	p.body.SetSize(12, 0)
	p.body.SetPlaceholder("Write something...")

	p.attach = tview.NewInputField()
	p.attach.SetLabel("Attach image")
	p.attach.SetPlaceholder("path to an image file, then Enter")
	onEnter(p.attach, c.attachImage)

	p.form = c.newForm(" Note ")
	p.form.AddFormItem(p.title)
	p.form.AddFormItem(p.body)
	p.form.AddFormItem(p.attach)
	p.form.AddButton("Save", c.saveDraft)
	p.form.AddButton("Images", func() {
		c.app.SetFocus(p.images)
	})
	p.form.AddButton("Cancel", c.showNotes)
	p.form.SetCancelFunc(c.showNotes)

	p.images = tview.NewList()
	p.images.SetBorder(true)
	p.images.SetTitleAlign(tview.AlignLeft)
	p.images.ShowSecondaryText(false)
	ApplyThemeToList(p.images, c.theme)
	p.images.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyDelete, event.Key() == tcell.KeyBackspace2, event.Rune() == 'x':
			c.removeImage(p.images.GetCurrentItem())
			return nil
		case event.Key() == tcell.KeyEscape:
			c.app.SetFocus(p.form)
			return nil
		}
		return event
	})

	help := tview.NewTextView()
	help.SetDynamicColors(true)
	help.SetText(c.theme.tags().Secondary + tview.Escape("[ctrl-s] save  [esc] back  images: [x] remove  [esc] back to form") + "[-]")

	content := tview.NewFlex()
	content.SetDirection(tview.FlexColumn)
	content.AddItem(p.form, 0, 2, true)
	content.AddItem(p.images, 0, 1, false)

	layout := tview.NewFlex()
	layout.SetDirection(tview.FlexRow)
	layout.AddItem(content, 0, 1, true)
	layout.AddItem(help, 1, 0, false)
	layout.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlS {
			c.saveDraft()
			return nil
		}
		return event
	})
	return layout
}

func (c *CLIApp) newNote() {
	c.draft = notebook.Draft{}
	c.showEditor()
}

func (c *CLIApp) openNote(index int) {
	if index < 0 || index >= len(c.notes) {
		return
	}

	c.draft = notebook.DraftFromNote(c.notes[index])
	c.showEditor()
}

func (c *CLIApp) showEditor() {
	p := &c.editor
	p.title.SetText(c.draft.Title)
	p.body.SetText(c.draft.Body, false)
	p.attach.SetText("")

	if c.draft.ID == "" {
		p.form.SetTitle(" New note ")
	} else {
		p.form.SetTitle(" Edit note ")
	}
	c.renderImages()

	p.form.SetFocus(0)
	c.pages.SwitchToPage(pageEditor)
	c.app.SetFocus(p.form)
}

func (c *CLIApp) renderImages() {
	list := c.editor.images
	list.Clear()
	for _, ref := range c.draft.ImageURIs {
		list.AddItem(imageLabel(ref, false), "", 0, nil)
	}
	for _, src := range c.draft.NewImages {
		list.AddItem(imageLabel(src, true), "", 0, nil)
	}
	list.SetTitle(fmt.Sprintf(" Images (%d) ", list.GetItemCount()))
}

func (c *CLIApp) attachImage() {
	path := strings.TrimSpace(c.editor.attach.GetText())
	if path == "" {
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.setStatus(fmt.Sprintf("Cannot read image %s", path), c.theme.Error)
		return
	}

	c.draft.NewImages = append(c.draft.NewImages, path)
	c.editor.attach.SetText("")
	c.renderImages()
	c.showInfo("Image attached, save to keep it")
}

// removeImage detaches the image at index; stored copies are left for
// garbage collection
func (c *CLIApp) removeImage(index int) {
	stored := len(c.draft.ImageURIs)
	switch {
	case index < 0:
		return
	case index < stored:
		c.draft.ImageURIs = slices.Delete(c.draft.ImageURIs, index, index+1)
	case index < stored+len(c.draft.NewImages):
		c.draft.NewImages = slices.Delete(c.draft.NewImages, index-stored, index-stored+1)
	default:
		return
	}
	c.renderImages()
}

func (c *CLIApp) saveDraft() {
	c.draft.Title = c.editor.title.GetText()
	c.draft.Body = c.editor.body.GetText()

	if _, err := c.service.SaveNote(c.ctx, c.session, c.draft); err != nil {
		c.showError(err)
		return
	}

	c.showNotes()
	c.showInfo("Note saved")
}
