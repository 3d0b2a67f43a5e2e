// Package database - Handles all interaction with ArangoDB
package database

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"
	"github.com/cenkalti/backoff"
	"github.com/qeme/sentinel-lite/util"
	"go.uber.org/zap"
)

// Collection names.
const (
	FingerprintCollection = "fingerprint"
	CacheCollection       = "regulatory_cache"
)

// DBConnection is the structure that defined the database engine and collections
type DBConnection struct {
	Collections map[string]arangodb.Collection
	Database    arangodb.Database
}

// Config holds the connection settings of the ArangoDB backend.
type Config struct {
	URL         string
	User        string
	Password    string
	Database    string
	MaxElapsed  time.Duration
	InitialWait time.Duration
}

// LoadConfig reads the ARANGO_* environment variables.
func LoadConfig() Config {
	dbhost := util.GetEnvDefault("ARANGO_HOST", "localhost")
	dbport := util.GetEnvDefault("ARANGO_PORT", "8529")

	return Config{
		URL:         util.GetEnvDefault("ARANGO_URL", "http://"+dbhost+":"+dbport),
		User:        util.GetEnvDefault("ARANGO_USER", "root"),
		Password:    util.GetEnvDefault("ARANGO_PASS", "mypassword"),
		Database:    util.GetEnvDefault("ARANGO_DATABASE", "sentinel"),
		MaxElapsed:  5 * time.Minute,
		InitialWait: 2 * time.Second,
	}
}

func dbConnectionConfig(endpoint connection.Endpoint, dbuser string, dbpass string) connection.HttpConfiguration {
	return connection.HttpConfiguration{
		Authentication: connection.NewBasicAuth(dbuser, dbpass),
		Endpoint:       endpoint,
		ContentType:    connection.ApplicationJSON,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402
			},
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 90 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// InitializeDatabase connects to the db engine with exponential backoff, then
// creates the database and the regulatory collections when missing.
func InitializeDatabase(ctx context.Context, cfg Config, logger *zap.Logger) (DBConnection, error) {
	var client arangodb.Client

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialWait
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = cfg.MaxElapsed

	err := backoff.RetryNotify(func() error {
		endpoint := connection.NewRoundRobinEndpoints([]string{cfg.URL})
		conn := connection.NewHttpConnection(dbConnectionConfig(endpoint, cfg.User, cfg.Password))

		client = arangodb.NewClient(conn)

		versionInfo, err := client.Version(ctx)
		if err != nil {
			return err
		}

		logger.Sugar().Infof("Database has version '%s' and license '%s'", versionInfo.Version, versionInfo.License)
		return nil
	}, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
		logger.Sugar().Warnf("Retrying connection to ArangoDB in %s: %v", wait, err)
	})
	if err != nil {
		return DBConnection{}, fmt.Errorf("connect to ArangoDB at %s: %w", cfg.URL, err)
	}

	db, err := ensureDatabase(ctx, client, cfg.Database)
	if err != nil {
		return DBConnection{}, err
	}

	collections := make(map[string]arangodb.Collection)
	for _, name := range []string{FingerprintCollection, CacheCollection} {
		col, err := ensureCollection(ctx, db, name)
		if err != nil {
			return DBConnection{}, err
		}
		collections[name] = col
	}

	logger.Sugar().Infof("Database %s initialized", cfg.Database)

	return DBConnection{Database: db, Collections: collections}, nil
}

func ensureDatabase(ctx context.Context, client arangodb.Client, name string) (arangodb.Database, error) {
	exists := false
	dblist, _ := client.Databases(ctx)
	for _, dbinfo := range dblist {
		if dbinfo.Name() == name {
			exists = true
			break
		}
	}

	if exists {
		var options arangodb.GetDatabaseOptions
		db, err := client.GetDatabase(ctx, name, &options)
		if err != nil {
			return nil, fmt.Errorf("failed to get database %s: %w", name, err)
		}
		return db, nil
	}

	db, err := client.CreateDatabase(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return db, nil
}

func ensureCollection(ctx context.Context, db arangodb.Database, name string) (arangodb.Collection, error) {
	exists, _ := db.CollectionExists(ctx, name)
	if exists {
		var options arangodb.GetCollectionOptions
		col, err := db.GetCollection(ctx, name, &options)
		if err != nil {
			return nil, fmt.Errorf("failed to use collection %s: %w", name, err)
		}
		return col, nil
	}

	col, err := db.CreateCollectionV2(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return col, nil
}
