package view

import (
	"strings"

	appErrors "github.com/Darlington720/library-module/pkg/errors"
)

// Toast variants.
const (
	ToastDefault     = "default"
	ToastDestructive = "destructive"
)

// Toast is a transient notification.
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

// SuccessToast builds a default toast.
func SuccessToast(title, description string) *Toast {
	return &Toast{Title: title, Description: description, Variant: ToastDefault}
}

// ErrorToast builds a destructive toast titled by the error kind.
func ErrorToast(err error) *Toast {
	if err == nil {
		return nil
	}
	title := "Error"
	switch appErrors.KindOf(err) {
	case appErrors.KindValidation:
		title = "Validation Error"
	case appErrors.KindNetwork:
		title = "Network Error"
	case appErrors.KindAuth:
		title = "Authentication Error"
	case appErrors.KindConflict:
		title = "Please Wait"
	}
	return &Toast{Title: title, Description: appErrors.FromError(err).Message, Variant: ToastDestructive}
}

// ActionDialog is the state of a reject or override dialog.
type ActionDialog struct {
	Action string
	Open   bool
	Reason string
	Busy   bool
	Error  string
}

// OpenDialog shows an empty dialog for action.
func OpenDialog(action string) ActionDialog {
	return ActionDialog{Action: action, Open: true}
}

// Submit marks the dialog busy. It reports false while a submission is in flight.
func (d *ActionDialog) Submit(reason string) bool {
	if d.Busy {
		return false
	}
	d.Reason = reason
	d.Busy = true
	d.Error = ""
	return true
}

// Resolve applies the outcome of a submission. Success closes the dialog and
// clears the reason; failure keeps it open with the reason preserved.
func (d *ActionDialog) Resolve(err error) {
	d.Busy = false
	if err != nil {
		d.Open = true
		d.Error = appErrors.FromError(err).Message
		return
	}
	d.Open = false
	d.Reason = ""
	d.Error = ""
}

// CanSubmit reports whether the confirm button is enabled.
func (d ActionDialog) CanSubmit() bool {
	return !d.Busy && strings.TrimSpace(d.Reason) != ""
}
