package config

import (
	"context"
	"fmt"

	"github.com/veracitylab/veracity/pkg/veracity"
	"github.com/veracitylab/veracity/pkg/veracity/model"
	"github.com/veracitylab/veracity/pkg/veracity/store"
	"github.com/veracitylab/veracity/pkg/veracity/store/memstore"
	"github.com/veracitylab/veracity/pkg/veracity/store/sqlite"
)

// Loader loads the configuration file and constructs components. ModelPath
// and DBPath, when set, override the file: they serve commands that take
// direct flags instead of a config file.
type Loader struct {
	ConfigPath string
	ModelPath  string
	DBPath     string
}

// Components holds the loaded configuration and everything built from it.
// Bundle and Detector stay nil when the configuration names no model;
// Store stays nil when the driver is empty.
type Components struct {
	Config   Config
	Bundle   *model.Bundle
	Store    store.Store
	Detector *veracity.Detector
}

// Load reads the configuration and returns initialized components
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	comp := &Components{Config: Default()}

	if l.ConfigPath != "" {
		cfg, err := Load(l.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		comp.Config = cfg
	}
	if l.ModelPath != "" {
		comp.Config.Model.Path = l.ModelPath
	}
	if l.DBPath != "" {
		comp.Config.Store.Driver = "sqlite"
		comp.Config.Store.Path = l.DBPath
	}

	// Load model bundle
	if comp.Config.Model.Path != "" {
		bundle, err := model.LoadFile(comp.Config.Model.Path)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		comp.Bundle = bundle
	}

	// Open verdict store
	switch comp.Config.Store.Driver {
	case "sqlite":
		st, err := sqlite.OpenSQLite(ctx, comp.Config.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		comp.Store = st
	case "memory":
		comp.Store = memstore.New()
	}

	// Load stopwords
	var stops []string
	if comp.Config.Stopwords.Path != "" {
		loaded, err := LoadStopwords(comp.Config.Stopwords.Path)
		if err != nil {
			if comp.Store != nil {
				comp.Store.Close()
			}
			return nil, fmt.Errorf("load stopwords: %w", err)
		}
		stops = loaded
	}

	// Construct the detector when a model is configured
	if comp.Bundle != nil {
		detector, err := veracity.New(veracity.Options{
			Bundle:    comp.Bundle,
			Stopwords: stops,
			Store:     comp.Store,
			TopTerms:  comp.Config.TopTerms,
		})
		if err != nil {
			if comp.Store != nil {
				comp.Store.Close()
			}
			return nil, fmt.Errorf("build detector: %w", err)
		}
		comp.Detector = detector
	}

	return comp, nil
}
