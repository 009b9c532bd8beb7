package views

// NavItem is one button of the bottom navigation. Items with an Action
// trigger it instead of navigating.
type NavItem struct {
	Label  string
	Icon   string
	View   View
	Action string
	Active bool
}

// ActionScan opens the document scanner.
const ActionScan = "scan"

var navItems = []NavItem{
	{Label: "Home", Icon: "fa-home", View: ViewDashboard},
	{Label: "Reports", Icon: "fa-file-medical-alt", View: ViewReports},
	{Label: "Scan", Icon: "fa-camera", Action: ActionScan},
	{Label: "Hospitals", Icon: "fa-hospital-alt", View: ViewHospitals},
}

// navFor returns the navigation with the item targeting current marked active.
func navFor(current View) []NavItem {
	items := make([]NavItem, len(navItems))
	copy(items, navItems)
	for i := range items {
		items[i].Active = items[i].Action == "" && items[i].View == current
	}
	return items
}

// Href is the navigation target of a view item.
func (n NavItem) Href() string {
	return "/views/" + n.View.String()
}
