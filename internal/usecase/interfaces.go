package usecase

import (
	"context"
	"time"

	"github.com/campuskul/crm-console-api/internal/model"
)

// TokenIssuer signs console tokens after a successful login.
type TokenIssuer interface {
	Issue(user *model.User) (string, time.Time, error)
}

// ImportRow is one CSV data row with its 1-based position.
type ImportRow struct {
	Number int
	Record map[string]string
}

// ImportRef is the lookup data import workers validate rows against.
type ImportRef struct {
	StageNames     map[string]struct{}
	OwnersByEmail  map[string]uint
	DefaultStatus  string
	DefaultOwnerID uint
}

// ILeadImporter validates and converts import rows concurrently.
type ILeadImporter interface {
	ProcessRows(ctx context.Context, rows []ImportRow, ref ImportRef) ([]model.Lead, []model.ImportRowError)
	Close()
}
