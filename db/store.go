package db

import (
	"context"
	"fmt"
	"log"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	"github.com/techagentng/healthtrack/config"
	"github.com/techagentng/healthtrack/models"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrUserNotFound   = errors.New("user not found")
)

// Store holds the profile, reports and hospitals the views render.
// Reports are returned newest first.
type Store interface {
	User(ctx context.Context) (models.User, error)
	SetPhone(ctx context.Context, phone string) error
	Reports(ctx context.Context) ([]models.Report, error)
	Report(ctx context.Context, id int) (models.Report, error)
	// AddReport prepends r. A zero ID is replaced with one above the
	// current maximum and written back to r.
	AddReport(ctx context.Context, r *models.Report) error
	Hospitals(ctx context.Context) ([]models.Hospital, error)
	Close() error
}

// Open returns the store selected by c.StoreDriver, seeded with seed when empty.
func Open(c *config.Config, seed models.Seed) (Store, error) {
	switch c.StoreDriver {
	case "", config.StoreMemory:
		return NewMemoryStore(seed), nil
	case config.StoreSQLite:
		path := c.SQLitePath
		if path == "" {
			p, err := xdg.DataFile("healthtrack/healthtrack.db")
			if err != nil {
				return nil, errors.Wrap(err, "resolve sqlite path")
			}
			path = p
		}
		log.Printf("Opening sqlite store at %s", path)
		return NewSQLiteStore("file:"+path+"?_pragma=busy_timeout(5000)", seed)
	case config.StorePostgres:
		return NewGormStore(GetDB(c), seed)
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
}

func nextID(reports []models.Report) int {
	max := 0
	for _, r := range reports {
		if r.ID > max {
			max = r.ID
		}
	}
	return max + 1
}
