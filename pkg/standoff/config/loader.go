package config

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cognicore/standoff/pkg/standoff/align"
	"github.com/cognicore/standoff/pkg/standoff/indices"
	"github.com/cognicore/standoff/pkg/standoff/store"
	"github.com/cognicore/standoff/pkg/standoff/store/sqlite"
)

// Loader loads the configuration file and constructs components
type Loader struct {
	ConfigPath string
	// DBPath overrides store.path from the configuration file.
	DBPath string
	Logger logrus.FieldLogger
}

// Components holds all loaded configuration components
type Components struct {
	Config     *Config
	Rules      []align.Rule
	TagIndices []int
	Store      store.Store // nil when no database is configured
}

// Load reads the configuration and returns initialized components
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	cfg, err := Load(l.ConfigPath)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	tagIndices, err := indices.Parse(cfg.TagIndices)
	if err != nil {
		return nil, errors.Wrap(err, "tag indices")
	}

	comp := &Components{
		Config:     cfg,
		Rules:      cfg.Rules(),
		TagIndices: tagIndices,
	}

	dbPath := l.DBPath
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	if dbPath != "" {
		st, err := sqlite.OpenSQLite(ctx, dbPath)
		if err != nil {
			return nil, errors.Wrapf(err, "open store %s", dbPath)
		}
		if l.Logger != nil {
			l.Logger.WithField("db", dbPath).Debug("Recording annotations")
		}
		comp.Store = st
	}
	return comp, nil
}

// Close releases the store, if one was opened.
func (c *Components) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}
