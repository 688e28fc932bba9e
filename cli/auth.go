package cli

import (
	"fmt"

	"github.com/brunoscheufler/pocketnotes/notebook"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

type loginPage struct {
	form     *tview.Form
	username *tview.InputField
	pin      *tview.InputField
}

type signUpPage struct {
	form     *tview.Form
	username *tview.InputField
	pin      *tview.InputField
	confirm  *tview.InputField
}

type switchPage struct {
	form     *tview.Form
	accounts *tview.DropDown
	pin      *tview.InputField
}

func newUsernameField() *tview.InputField {
	field := tview.NewInputField()
	field.SetLabel("Username")
	field.SetFieldWidth(24)
	return field
}

func newPINField(label string) *tview.InputField {
	field := tview.NewInputField()
	field.SetLabel(label)
	field.SetFieldWidth(12)
	field.SetMaskCharacter('*')
	field.SetAcceptanceFunc(digitsOnly)
	return field
}

// onEnter runs submit when Enter is pressed in field
func onEnter(field *tview.InputField, submit func()) {
	field.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			submit()
		}
	})
}

func (c *CLIApp) newForm(title string) *tview.Form {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetTitle(title)
	form.SetTitleAlign(tview.AlignLeft)
	ApplyThemeToForm(form, c.theme)
	return form
}

func (c *CLIApp) buildLoginPage() tview.Primitive {
	p := &c.login
	p.username = newUsernameField()
	p.pin = newPINField("PIN")
	onEnter(p.pin, c.submitLogin)

	p.form = c.newForm(" Pocket Notes · Log in ")
	p.form.AddFormItem(p.username)
	p.form.AddFormItem(p.pin)
	p.form.AddButton("Log in", c.submitLogin)
	p.form.AddButton("Sign up", c.showSignUp)
	p.form.AddButton("Quit", c.Stop)
	p.form.SetCancelFunc(c.Stop)

	return center(p.form, 48, 9)
}

func (c *CLIApp) buildSignUpPage() tview.Primitive {
	p := &c.signUp
	p.username = newUsernameField()
	p.pin = newPINField("PIN")
	p.confirm = newPINField("Confirm PIN")
	onEnter(p.confirm, c.submitSignUp)

	p.form = c.newForm(" Create account ")
	p.form.AddFormItem(p.username)
	p.form.AddFormItem(p.pin)
	p.form.AddFormItem(p.confirm)
	p.form.AddButton("Create", c.submitSignUp)
	p.form.AddButton("Back", c.showLogin)
	p.form.SetCancelFunc(c.showLogin)

	return center(p.form, 48, 11)
}

func (c *CLIApp) showLogin() {
	c.login.pin.SetText("")
	c.login.form.SetFocus(0)
	c.pages.SwitchToPage(pageLogin)
	c.app.SetFocus(c.login.form)
}

func (c *CLIApp) showSignUp() {
	c.signUp.username.SetText(c.login.username.GetText())
	c.signUp.pin.SetText("")
	c.signUp.confirm.SetText("")
	c.signUp.form.SetFocus(0)
	c.pages.SwitchToPage(pageSignUp)
	c.app.SetFocus(c.signUp.form)
}

func (c *CLIApp) submitLogin() {
	sess, err := c.service.Login(c.ctx, c.login.username.GetText(), c.login.pin.GetText())
	if err != nil {
		c.login.pin.SetText("")
		c.showError(err)
		return
	}

	c.startSession(sess)
}

func (c *CLIApp) submitSignUp() {
	p := &c.signUp
	account, err := c.service.SignUp(c.ctx, p.username.GetText(), p.pin.GetText(), p.confirm.GetText())
	if err != nil {
		c.showError(err)
		return
	}

	sess, err := c.service.Login(c.ctx, account.Username, p.pin.GetText())
	if err != nil {
		c.showError(err)
		return
	}

	c.login.username.SetText(account.Username)
	c.startSession(sess)
}

func (c *CLIApp) startSession(sess notebook.Session) {
	c.session = sess
	c.query = ""
	c.browse.search.SetText("")
	c.showNotes()
	c.showInfo(fmt.Sprintf("Signed in as %s", sess.Username))
}

func (c *CLIApp) logout() {
	c.session = notebook.Session{}
	c.notes = nil
	c.browse.list.Clear()
	c.showLogin()
}

// showSwitchAccount overlays a form to pick another account and enter its PIN
func (c *CLIApp) showSwitchAccount() {
	others, err := c.service.OtherAccounts(c.ctx, c.session)
	if err != nil {
		c.showError(err)
		return
	}
	if len(others) == 0 {
		c.showInfo("No other accounts on this device")
		return
	}

	names := make([]string, len(others))
	for i, account := range others {
		names[i] = account.Username
	}

	p := &c.switcher
	p.accounts = tview.NewDropDown()
	p.accounts.SetLabel("Account")
	p.accounts.SetOptions(names, nil)
	p.accounts.SetCurrentOption(0)
	p.pin = newPINField("PIN")
	onEnter(p.pin, c.submitSwitch)

	p.form = c.newForm(" Switch account ")
	p.form.AddFormItem(p.accounts)
	p.form.AddFormItem(p.pin)
	p.form.AddButton("Switch", c.submitSwitch)
	p.form.AddButton("Cancel", c.closeSwitchAccount)
	p.form.SetCancelFunc(c.closeSwitchAccount)

	c.pages.AddPage(pageSwitch, center(p.form, 48, 9), true, true)
	c.app.SetFocus(p.form)
}

func (c *CLIApp) closeSwitchAccount() {
	c.pages.RemovePage(pageSwitch)
	c.showNotes()
}

func (c *CLIApp) submitSwitch() {
	p := &c.switcher
	_, username := p.accounts.GetCurrentOption()

	sess, err := c.service.SwitchAccount(c.ctx, c.session, username, p.pin.GetText())
	if err != nil {
		p.pin.SetText("")
		c.showError(err)
		return
	}

	c.pages.RemovePage(pageSwitch)
	c.startSession(sess)
}
