// Package ops implements the checklist session and template operations on
// top of the record store. Every shell (CLI, web, MCP) goes through here.
package ops

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/tratativa/internal/config"
	"github.com/hpungsan/tratativa/internal/errors"
	"github.com/hpungsan/tratativa/internal/logging"
)

// Record keys in the store.
const (
	FormDataKey  = "checklist-form-data"
	TemplatesKey = "checklist-templates"
)

// Input limits.
const (
	MaxAnswerChars  = 1000
	MaxRawTextBytes = 1 << 20
	MaxTemplates    = 500
)

// Env carries the collaborators shared by every operation.
type Env struct {
	DB     *sql.DB
	Config *config.Config
	Logger *zap.Logger

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

func (e Env) logger() *zap.Logger {
	return logging.OrNop(e.Logger)
}

// now returns the current instant in the configured timezone.
func (e Env) now() (time.Time, error) {
	clock := e.Now
	if clock == nil {
		clock = time.Now
	}
	loc, err := e.Config.Location()
	if err != nil {
		return time.Time{}, errors.NewInternal(err)
	}
	return clock().In(loc), nil
}
