package models

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Seed is the initial content of a store.
type Seed struct {
	User      User       `yaml:"user"`
	Reports   []Report   `yaml:"reports"`
	Hospitals []Hospital `yaml:"hospitals"`
}

// DefaultSeed returns the demo profile, reports and hospitals.
func DefaultSeed() Seed {
	return Seed{
		User: User{
			ID:     1,
			Name:   "Alex Johnson",
			Avatar: "https://ui-avatars.com/api/?name=Alex+Johnson&background=0ca5b0&color=fff",
		},
		Reports: []Report{
			{ID: 1, Title: "Blood Test Results", Date: "Oct 24, 2023", Hospital: "City General", Type: ReportTypeLab},
			{ID: 2, Title: "Dental X-Ray", Date: "Sep 12, 2023", Hospital: "Smile Clinic", Type: ReportTypeRadiology},
			{ID: 3, Title: "Annual Checkup", Date: "Aug 05, 2023", Hospital: "Dr. Smith", Type: ReportTypeGeneral},
		},
		Hospitals: []Hospital{
			{ID: 1, Name: "City General Hospital", Address: "123 Main St", Rating: 4.8},
			{ID: 2, Name: "Valley Medical Center", Address: "456 Oak Ave", Rating: 4.5},
		},
	}
}

type seedFile struct {
	User *struct {
		Name   string `yaml:"name"`
		Avatar string `yaml:"avatar"`
	} `yaml:"user"`
	Reports []struct {
		ID       int    `yaml:"id"`
		Title    string `yaml:"title"`
		Date     string `yaml:"date"`
		Hospital string `yaml:"hospital"`
		Type     string `yaml:"type"`
	} `yaml:"reports"`
	Hospitals []Hospital `yaml:"hospitals"`
}

// LoadSeed reads a YAML seed file. Sections missing from the file keep
// their DefaultSeed values. Reports are listed newest first.
func LoadSeed(path string) (Seed, error) {
	seed := DefaultSeed()
	if path == "" {
		return seed, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // operator-provided seed path
	if err != nil {
		return Seed{}, errors.Wrap(err, "read seed file")
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Seed{}, errors.Wrap(err, "parse seed file")
	}

	if f.User != nil {
		if f.User.Name != "" {
			seed.User.Name = f.User.Name
		}
		if f.User.Avatar != "" {
			seed.User.Avatar = f.User.Avatar
		}
	}
	if f.Reports != nil {
		seed.Reports = make([]Report, 0, len(f.Reports))
		for _, r := range f.Reports {
			t, err := ParseReportType(r.Type)
			if err != nil {
				return Seed{}, errors.Wrapf(err, "seed report %d", r.ID)
			}
			seed.Reports = append(seed.Reports, Report{
				ID:       r.ID,
				Title:    r.Title,
				Date:     r.Date,
				Hospital: r.Hospital,
				Type:     t,
			})
		}
	}
	if f.Hospitals != nil {
		seed.Hospitals = f.Hospitals
	}
	return seed, nil
}
