package models

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ReportType selects the icon and colour of a report.
type ReportType string

const (
	ReportTypeLab       ReportType = "Lab"
	ReportTypeRadiology ReportType = "Radiology"
	ReportTypeGeneral   ReportType = "General"
	ReportTypeScan      ReportType = "Scan"
)

var reportTypes = []ReportType{ReportTypeLab, ReportTypeRadiology, ReportTypeGeneral, ReportTypeScan}

var titleCaser = cases.Title(language.English)

// ParseReportType accepts any casing of a known type.
func ParseReportType(s string) (ReportType, error) {
	t := ReportType(titleCaser.String(strings.TrimSpace(s)))
	for _, known := range reportTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown report type %q", s)
}

// Tint returns the background and text colour classes for the type badge.
func (t ReportType) Tint() string {
	switch t {
	case ReportTypeLab:
		return "bg-blue-100 text-blue-600"
	case ReportTypeRadiology:
		return "bg-orange-100 text-orange-600"
	default:
		return "bg-teal-100 text-teal-600"
	}
}

// Icon returns the font-awesome icon for reports without a preview.
func (t ReportType) Icon() string {
	if t == ReportTypeScan {
		return "fa-camera"
	}
	return "fa-file-medical"
}
