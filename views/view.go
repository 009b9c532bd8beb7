// Package views renders the app's screens.
//
// A View is a typed identifier for one screen. Router.Navigate resolves a
// view name to its render function, renders it against the current state
// and returns a Page describing the content and the bottom navigation.
package views

import (
	"fmt"

	"github.com/pkg/errors"
)

// View identifies a screen.
type View int

const (
	ViewLogin View = iota
	ViewOTP
	ViewDashboard
	ViewReports
	ViewHospitals
	ViewDiseases
	ViewBills
)

var viewNames = [...]string{
	ViewLogin:     "login",
	ViewOTP:       "otp",
	ViewDashboard: "dashboard",
	ViewReports:   "reports",
	ViewHospitals: "hospitals",
	ViewDiseases:  "diseases",
	ViewBills:     "bills",
}

// ErrUnknownView is returned for names that map to no screen.
var ErrUnknownView = errors.New("unknown view")

func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return fmt.Sprintf("View(%d)", int(v))
	}
	return viewNames[v]
}

// ParseView maps a view name to its View.
func ParseView(name string) (View, error) {
	for i, n := range viewNames {
		if n == name {
			return View(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownView, "%q", name)
}

// Names lists every view name in declaration order.
func Names() []string {
	return append([]string(nil), viewNames[:]...)
}

// ShowsNav reports whether the bottom navigation is visible on v.
func (v View) ShowsNav() bool {
	return v != ViewLogin && v != ViewOTP
}
