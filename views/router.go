package views

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/techagentng/healthtrack/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// State is the read side of the store the views render from.
type State interface {
	User(ctx context.Context) (models.User, error)
	Reports(ctx context.Context) ([]models.Report, error)
	Hospitals(ctx context.Context) ([]models.Hospital, error)
}

// RenderFunc produces the content fragment of a view from the navigation payload.
type RenderFunc func(ctx context.Context, data any) (template.HTML, error)

// LoginData pre-fills the login screen.
type LoginData struct {
	Phone string
	Error string
}

// OTPData describes where the code was sent. Form holds the code fields,
// a fresh empty form when nil.
type OTPData struct {
	Message string
	Form    *OTPForm
}

// RecentReportCount is how many reports the dashboard lists.
const RecentReportCount = 2

// Router maps views to render functions.
type Router struct {
	state   State
	tmpl    *template.Template
	renders map[View]RenderFunc
	hooks   map[View]func(p *Page, data any)
}

// NewRouter parses the embedded templates and registers every view.
func NewRouter(state State) (*Router, error) {
	tmpl, err := template.New("views").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}
	r := &Router{state: state, tmpl: tmpl}
	r.renders = map[View]RenderFunc{
		ViewLogin:     r.login,
		ViewOTP:       r.otp,
		ViewDashboard: r.dashboard,
		ViewReports:   r.reports,
		ViewHospitals: r.hospitals,
		ViewDiseases:  r.static("diseases"),
		ViewBills:     r.static("bills"),
	}
	r.hooks = map[View]func(*Page, any){
		ViewOTP: func(p *Page, data any) { p.OTP = data.(OTPData).Form },
	}
	return r, nil
}

// Templates exposes the parsed templates, including the page layout.
func (r *Router) Templates() *template.Template {
	return r.tmpl
}

// Navigate renders the view called name with data.
func (r *Router) Navigate(ctx context.Context, name string, data any) (*Page, error) {
	v, err := ParseView(name)
	if err != nil {
		return nil, err
	}
	return r.NavigateTo(ctx, v, data)
}

// NavigateTo renders v with data.
func (r *Router) NavigateTo(ctx context.Context, v View, data any) (*Page, error) {
	render, ok := r.renders[v]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownView, "%s", v)
	}
	if v == ViewOTP {
		data = otpData(data)
	}
	content, err := render(ctx, data)
	if err != nil {
		return nil, errors.Wrapf(err, "render %s", v)
	}

	page := &Page{
		View:       v,
		Content:    content,
		NavVisible: v.ShowsNav(),
	}
	if page.NavVisible {
		page.Nav = navFor(v)
	}
	if hook, ok := r.hooks[v]; ok {
		hook(page, data)
	}
	return page, nil
}

// NotFound renders the page answered for unknown view names. The bottom
// navigation stays hidden.
func (r *Router) NotFound(message string) (*Page, error) {
	content, err := r.execute("notfound", message)
	if err != nil {
		return nil, err
	}
	return &Page{View: ViewLogin, Content: content, NotFound: true}, nil
}

// WritePage renders the full document for p.
func (r *Router) WritePage(w io.Writer, p *Page) error {
	return r.tmpl.ExecuteTemplate(w, "layout", p)
}

func (r *Router) execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	// content comes from html/template and is already escaped
	return template.HTML(buf.String()), nil //nolint:gosec
}

func (r *Router) static(name string) RenderFunc {
	return func(ctx context.Context, data any) (template.HTML, error) {
		return r.execute(name, nil)
	}
}

func (r *Router) login(ctx context.Context, data any) (template.HTML, error) {
	d, _ := data.(LoginData)
	return r.execute("login", d)
}

// otpData makes sure the otp render and its hook share one form.
func otpData(data any) OTPData {
	d, _ := data.(OTPData)
	if d.Form == nil {
		d.Form = &OTPForm{}
	}
	return d
}

func (r *Router) otp(ctx context.Context, data any) (template.HTML, error) {
	return r.execute("otp", otpData(data))
}

func (r *Router) dashboard(ctx context.Context, data any) (template.HTML, error) {
	user, err := r.state.User(ctx)
	if err != nil {
		return "", err
	}
	reports, err := r.state.Reports(ctx)
	if err != nil {
		return "", err
	}
	if len(reports) > RecentReportCount {
		reports = reports[:RecentReportCount]
	}
	return r.execute("dashboard", struct {
		User    models.User
		Reports []models.Report
	}{user, reports})
}

func (r *Router) reports(ctx context.Context, data any) (template.HTML, error) {
	reports, err := r.state.Reports(ctx)
	if err != nil {
		return "", err
	}
	return r.execute("reports", struct {
		Reports []models.Report
	}{reports})
}

func (r *Router) hospitals(ctx context.Context, data any) (template.HTML, error) {
	hospitals, err := r.state.Hospitals(ctx)
	if err != nil {
		return "", err
	}
	return r.execute("hospitals", struct {
		Hospitals []models.Hospital
	}{hospitals})
}

var funcs = template.FuncMap{
	// preview only lets embedded images through as URLs
	"preview": func(r models.Report) template.URL {
		if !r.HasPreview() {
			return ""
		}
		return template.URL(r.Preview) //nolint:gosec
	},
	"dataURL": func(s string) template.URL {
		if !strings.HasPrefix(s, "data:image/") {
			return ""
		}
		return template.URL(s) //nolint:gosec
	},
}
