// Package store opens the blob store selected on the command line.
package store

import (
	"context"
	"flag"
	"fmt"
	"strings"

	impl "github.com/SchnorcherSepp/blobbench/defaultimpl"
	"github.com/SchnorcherSepp/blobbench/gdrive"
	interf "github.com/SchnorcherSepp/blobbench/interfaces"
	"github.com/SchnorcherSepp/blobbench/mongofs"
)

// Kinds of blob stores.
const (
	KindGridFS = "gridfs"
	KindGDrive = "gdrive"
	KindRAM    = "ram"
)

// Config selects and configures the blob store.
type Config struct {
	Kind     string
	MongoURI string
	Database string // GridFS database or Google Drive folder name

	GDriveCredentials string // client_credentials.json
	GDriveToken       string // oauth token file (created on first use)
	GDriveIndexCache  string // optional index cache file
}

// Defaults returns the hard coded defaults: local MongoDB, database gridfs_perf_tests.
func Defaults() Config {
	return Config{
		Kind:              KindGridFS,
		MongoURI:          mongofs.DefaultURI,
		Database:          interf.DefaultDatabase,
		GDriveCredentials: "client_credentials.json",
		GDriveToken:       "token.json",
	}
}

// RegisterFlags binds the store flags to cfg. The current values of cfg are the defaults.
func RegisterFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Kind, "store", cfg.Kind, "blob store: gridfs, gdrive or ram")
	fs.StringVar(&cfg.MongoURI, "mongo-uri", cfg.MongoURI, "MongoDB connection string (store=gridfs)")
	fs.StringVar(&cfg.Database, "database", cfg.Database, "GridFS database or Google Drive folder name")
	fs.StringVar(&cfg.GDriveCredentials, "gdrive-credentials", cfg.GDriveCredentials, "Google OAuth client credentials (store=gdrive)")
	fs.StringVar(&cfg.GDriveToken, "gdrive-token", cfg.GDriveToken, "Google OAuth token file (store=gdrive)")
	fs.StringVar(&cfg.GDriveIndexCache, "gdrive-index-cache", cfg.GDriveIndexCache, "optional index cache file (store=gdrive)")
}

// Validate checks the config without opening a connection.
func (c Config) Validate() error {
	switch c.Kind {
	case KindGridFS:
		if strings.TrimSpace(c.MongoURI) == "" {
			return fmt.Errorf("store %s: empty mongo uri", c.Kind)
		}
	case KindGDrive:
		if c.GDriveCredentials == "" || c.GDriveToken == "" {
			return fmt.Errorf("store %s: credentials and token file are required", c.Kind)
		}
	case KindRAM:
		return nil
	default:
		return fmt.Errorf("unknown store %q (gridfs, gdrive or ram)", c.Kind)
	}
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("store %s: empty database name", c.Kind)
	}
	return nil
}

// Open validates the config and connects to the blob store.
// The returned store must be closed by the caller.
func Open(ctx context.Context, c Config) (interf.Service, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch c.Kind {
	case KindGridFS:
		return mongofs.Connect(ctx, c.MongoURI, c.Database)

	case KindGDrive:
		oauth, err := gdrive.OAuth(c.GDriveCredentials, c.GDriveToken, false)
		if err != nil {
			return nil, err
		}
		folder, err := gdrive.EnsureFolder(oauth, c.Database)
		if err != nil {
			return nil, err
		}
		s := gdrive.NewGService(folder, c.GDriveIndexCache, true, oauth)
		if err := s.Update(); err != nil {
			return nil, err
		}
		return s, nil

	default: // KindRAM
		return impl.NewRamService(), nil
	}
}
