package services

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/techagentng/healthtrack/config"
	"github.com/techagentng/healthtrack/db"
	"github.com/techagentng/healthtrack/i18n"
	"github.com/techagentng/healthtrack/models"
)

const (
	SmartScanTitle   = "Smart Scanned Report"
	FallbackTitle    = "New Scanned Document"
	FallbackHospital = "Unknown Source"

	// captureTTL bounds how long an unconfirmed capture is kept.
	captureTTL = 30 * time.Minute
)

var (
	ErrCaptureNotFound   = errors.New("capture not found")
	ErrCaptureProcessing = errors.New("capture is still processing")
	ErrInvalidImage      = errors.New("file is not a readable image")
)

// Translator localizes user-facing messages.
type Translator interface {
	T(id string, data map[string]interface{}) string
}

// ScanOutcome is what opening the scanner led to.
type ScanOutcome struct {
	// Report is set when a document was added.
	Report *models.Report
	// Fallback is set when the camera overlay should be shown.
	Fallback bool
	Alert    string
}

// Capture is a fallback capture awaiting confirmation. A new capture is
// processing for Config.ScanDelay before the prompt applies.
type Capture struct {
	ID       string
	Filename string
	Preview  string
	Prompt   string
	// Processing and Wait describe the capture when it was looked up.
	Processing bool
	Wait       time.Duration

	raw     []byte
	created time.Time
	ready   time.Time
}

// ScanService adds scanned documents to the store, natively when a
// Scanner is available and through the upload overlay otherwise.
type ScanService interface {
	Open(ctx context.Context) (ScanOutcome, error)
	Capture(ctx context.Context, filename string, r io.Reader) (*Capture, error)
	Confirm(ctx context.Context, id string, accept bool) (*models.Report, error)
	Close(id string)
	Pending(id string) (*Capture, bool)
}

type scanService struct {
	Config   *config.Config
	store    db.Store
	scanner  Scanner
	archiver Archiver
	msg      Translator

	now func() time.Time

	mu       sync.Mutex
	captures map[string]*Capture
}

// NewScanService instantiates a scanService. scanner and archiver may be nil.
func NewScanService(store db.Store, scanner Scanner, archiver Archiver, msg Translator, conf *config.Config) ScanService {
	return &scanService{
		Config:   conf,
		store:    store,
		scanner:  scanner,
		archiver: archiver,
		msg:      msg,
		now:      time.Now,
		captures: make(map[string]*Capture),
	}
}

// Open runs the native scanner. Without one, or when it fails, the outcome
// asks for the fallback overlay. A scan that returns no pages changes nothing.
func (s *scanService) Open(ctx context.Context) (ScanOutcome, error) {
	if s.scanner == nil {
		return ScanOutcome{Fallback: true}, nil
	}

	result, err := s.scanner.Scan(ctx, DefaultScanOptions)
	if err != nil {
		log.Printf("Document scan failed: %v", err)
		return ScanOutcome{Fallback: true, Alert: s.msg.T(i18n.ScanFailed, nil)}, nil
	}
	if result == nil || len(result.Images) == 0 {
		return ScanOutcome{}, nil
	}

	report := &models.Report{
		Title:    SmartScanTitle,
		Date:     s.now().Format(models.DateLayout),
		Hospital: models.SmartScanSource,
		Type:     models.ReportTypeScan,
		Preview:  JPEGDataURL(result.Images[0]),
	}
	if err := s.store.AddReport(ctx, report); err != nil {
		return ScanOutcome{}, err
	}
	log.Printf("Smart scan added report %d", report.ID)

	if raw, err := base64.StdEncoding.DecodeString(result.Images[0]); err == nil {
		s.archive(ctx, raw)
	}
	return ScanOutcome{Report: report, Alert: s.msg.T(i18n.ScanCaptured, nil)}, nil
}

// Capture reads an uploaded photo and holds it until Confirm or Close. It
// returns at once; the capture stays processing for Config.ScanDelay.
func (s *scanService) Capture(ctx context.Context, filename string, r io.Reader) (*Capture, error) {
	if ok, _ := CheckSupportedFile(filename); !ok {
		return nil, ErrInvalidImage
	}
	data, err := readLimited(r, s.maxUploadSize())
	if err != nil {
		return nil, err
	}
	img, err := decodeImage(data)
	if err != nil {
		log.Printf("Capture %s: %v", filename, err)
		return nil, ErrInvalidImage
	}
	preview, err := previewDataURL(img)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	c := &Capture{
		ID:       uuid.NewString(),
		Filename: filename,
		Preview:  preview,
		Prompt:   s.msg.T(i18n.ConfirmSave, nil),
		raw:      data,
		created:  now,
		// stands in for document processing
		ready: now.Add(s.Config.ScanDelay),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.expire()
	s.captures[c.ID] = c
	return s.snapshot(c), nil
}

// Confirm saves the capture as a report when accept is true. Declining
// leaves the capture pending and returns a nil report. Neither is allowed
// while the capture is processing.
func (s *scanService) Confirm(ctx context.Context, id string, accept bool) (*models.Report, error) {
	s.mu.Lock()
	c, ok := s.captures[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrCaptureNotFound
	}
	if s.now().Before(c.ready) {
		s.mu.Unlock()
		return nil, ErrCaptureProcessing
	}
	if accept {
		delete(s.captures, id)
	}
	s.mu.Unlock()
	if !accept {
		return nil, nil
	}

	report := &models.Report{
		Title:    FallbackTitle,
		Date:     s.now().Format(models.DateLayout),
		Hospital: FallbackHospital,
		Type:     models.ReportTypeScan,
	}
	if err := s.store.AddReport(ctx, report); err != nil {
		s.mu.Lock()
		s.captures[id] = c
		s.mu.Unlock()
		return nil, err
	}
	s.archive(ctx, c.raw)
	return report, nil
}

// Close drops the capture. Unknown ids are ignored.
func (s *scanService) Close(id string) {
	s.mu.Lock()
	delete(s.captures, id)
	s.mu.Unlock()
}

// Pending looks up a capture. The copy returned tells whether it is still
// processing.
func (s *scanService) Pending(id string) (*Capture, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.captures[id]
	if !ok {
		return nil, false
	}
	return s.snapshot(c), true
}

// snapshot must be called with s.mu held.
func (s *scanService) snapshot(c *Capture) *Capture {
	cp := *c
	cp.Wait = c.ready.Sub(s.now())
	cp.Processing = cp.Wait > 0
	if !cp.Processing {
		cp.Wait = 0
	}
	return &cp
}

// expire must be called with s.mu held.
func (s *scanService) expire() {
	cutoff := s.now().Add(-captureTTL)
	for id, c := range s.captures {
		if c.created.Before(cutoff) {
			delete(s.captures, id)
		}
	}
}

func (s *scanService) archive(ctx context.Context, data []byte) {
	if s.archiver == nil {
		return
	}
	if _, err := s.archiver.Archive(ctx, generateScanKey(), data); err != nil {
		log.Printf("Error archiving scan: %v", err)
	}
}

func (s *scanService) maxUploadSize() int64 {
	if s.Config.MaxUploadSize > 0 {
		return s.Config.MaxUploadSize
	}
	return 10 << 20
}
