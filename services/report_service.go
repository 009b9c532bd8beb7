package services

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/leebenson/conform"
	"github.com/nao1215/markdown"
	"github.com/pkg/errors"
	"github.com/techagentng/healthtrack/config"
	"github.com/techagentng/healthtrack/db"
	apiError "github.com/techagentng/healthtrack/errors"
	"github.com/techagentng/healthtrack/models"
)

// ReportService reads and writes the report list.
type ReportService interface {
	ListReports(ctx context.Context) ([]models.Report, error)
	GetReport(ctx context.Context, id int) (*models.Report, error)
	CreateReport(ctx context.Context, req *models.ReportRequest) (*models.Report, error)
	ListHospitals(ctx context.Context) ([]models.Hospital, error)
	GetProfile(ctx context.Context) (*models.User, error)
	ExportReport(ctx context.Context, id int, w io.Writer) error
}

type reportService struct {
	Config *config.Config
	store  db.Store
	now    func() time.Time
}

// NewReportService instantiates a reportService
func NewReportService(store db.Store, conf *config.Config) ReportService {
	return &reportService{
		Config: conf,
		store:  store,
		now:    time.Now,
	}
}

func (s *reportService) ListReports(ctx context.Context) ([]models.Report, error) {
	return s.store.Reports(ctx)
}

func (s *reportService) GetReport(ctx context.Context, id int) (*models.Report, error) {
	r, err := s.store.Report(ctx, id)
	if errors.Is(err, db.ErrReportNotFound) {
		return nil, apiError.New("report not found", http.StatusNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *reportService) CreateReport(ctx context.Context, req *models.ReportRequest) (*models.Report, error) {
	if err := conform.Strings(req); err != nil {
		return nil, apiError.ErrBadRequest
	}
	if err := models.ValidateStruct(req); err != nil {
		return nil, apiError.New(err.Error(), http.StatusBadRequest)
	}
	report, err := req.ToReport(s.now())
	if err != nil {
		return nil, apiError.New(err.Error(), http.StatusBadRequest)
	}
	if err := s.store.AddReport(ctx, report); err != nil {
		log.Printf("CreateReport error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return report, nil
}

func (s *reportService) ListHospitals(ctx context.Context) ([]models.Hospital, error) {
	return s.store.Hospitals(ctx)
}

func (s *reportService) GetProfile(ctx context.Context) (*models.User, error) {
	u, err := s.store.User(ctx)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ExportReport writes report id as a Markdown document.
func (s *reportService) ExportReport(ctx context.Context, id int, w io.Writer) error {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return err
	}
	user, err := s.store.User(ctx)
	if err != nil {
		return err
	}
	return WriteReportMarkdown(w, *report, user)
}

// WriteReportMarkdown renders report as a Markdown summary for patient.
func WriteReportMarkdown(w io.Writer, report models.Report, patient models.User) error {
	attached := "No"
	if report.HasPreview() {
		attached = "Yes"
	}
	phone := patient.Phone
	if phone == "" {
		phone = "-"
	}

	md := markdown.NewMarkdown(w)
	md.H1(report.Title)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows: [][]string{
			{"Patient", patient.Name},
			{"Phone", phone},
			{"Date", report.Date},
			{"Hospital", report.Hospital},
			{"Type", string(report.Type)},
			{"Scanned image", attached},
		},
	})
	md.PlainText("")
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Exported from HealthTrack*")
	return md.Build()
}
