package models

import (
	"strings"
	"time"
)

// DateLayout is the display format used for report dates.
const DateLayout = "Jan 2, 2006"

// SmartScanSource is the hospital label of natively scanned reports.
const SmartScanSource = "Smart Scan Processed"

// Report is a health record entry shown in the reports list.
type Report struct {
	ID       int        `json:"id" gorm:"index"`
	Title    string     `json:"title" gorm:"not null"`
	Date     string     `json:"date"`
	Hospital string     `json:"hospital"`
	Type     ReportType `json:"type" gorm:"type:varchar(20)"`
	Preview  string     `json:"preview,omitempty" gorm:"type:text"`
	// Seq is the insertion order in the SQL stores; newest is highest.
	Seq int64 `json:"-" gorm:"primaryKey;autoIncrement"`
}

// Smart reports whether the report came from the native scanner.
func (r Report) Smart() bool {
	return r.Hospital == SmartScanSource
}

// HasPreview reports whether the report carries an embedded image.
func (r Report) HasPreview() bool {
	return strings.HasPrefix(r.Preview, "data:image/")
}

// ReportRequest is the payload for creating a report through the API.
type ReportRequest struct {
	Title    string `json:"title" conform:"trim" validate:"required,max=200"`
	Date     string `json:"date" conform:"trim" validate:"max=40"`
	Hospital string `json:"hospital" conform:"trim" validate:"max=200"`
	Type     string `json:"type" conform:"trim" validate:"required,reporttype"`
}

// ToReport converts the request, defaulting the date to now.
func (r ReportRequest) ToReport(now time.Time) (*Report, error) {
	t, err := ParseReportType(r.Type)
	if err != nil {
		return nil, err
	}
	date := r.Date
	if date == "" {
		date = now.Format(DateLayout)
	}
	return &Report{
		Title:    r.Title,
		Date:     date,
		Hospital: r.Hospital,
		Type:     t,
	}, nil
}
