package views

import (
	"fmt"
	"html/template"
)

// Page is a rendered screen plus the chrome around it.
type Page struct {
	View       View
	Content    template.HTML
	NavVisible bool
	Nav        []NavItem
	// OTP is set on the verification screen.
	OTP     *OTPForm
	Overlay *Overlay
	// Alert is shown once when the page loads.
	Alert    string
	NotFound bool
}

// Overlay is the fallback scanner screen shown over the current view.
type Overlay struct {
	// From is the view the scanner was opened on.
	From      View
	CaptureID string
	// Preview is a data URL of the selected document.
	Preview string
	Confirm string
	Error   string
	// Processing is shown while the capture is processed. The page
	// reloads the capture after RefreshAfter seconds.
	Processing   string
	RefreshAfter int
}

// StatusURL is where the overlay reloads the capture from.
func (o *Overlay) StatusURL() string {
	return fmt.Sprintf("/scanner/%s?from=%s", o.CaptureID, o.From)
}

// Refresh is the content of the meta refresh tag for a processing capture.
func (o *Overlay) Refresh() string {
	return fmt.Sprintf("%d;url=%s", o.RefreshAfter, o.StatusURL())
}

// Marker names the screen in the markup. The not found page has its own.
func (p *Page) Marker() string {
	if p.NotFound {
		return "notfound"
	}
	return p.View.String()
}

// Title is the document title.
func (p *Page) Title() string {
	if p.NotFound {
		return "HealthTrack · not found"
	}
	return "HealthTrack · " + p.Marker()
}
