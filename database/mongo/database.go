// Package mongo implements the comment repository on MongoDB. Comments live
// in one collection keyed by their uuid string, with an index on
// (created_at, _id) serving the paginated listing.
package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sagarc03/wally"
	"github.com/sagarc03/wally/database/internal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultDatabase is used when the connection URI names no database.
const DefaultDatabase = "wally"

// DB is a MongoDB comment store.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
	tables wally.Tables
}

// Connect creates a client for uri. The database is taken from the URI path.
// Tables should be validated before calling Connect.
func Connect(ctx context.Context, uri string, tables wally.Tables) (*DB, error) {
	name, err := databaseName(uri)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	return &DB{
		client: client,
		db:     client.Database(name),
		tables: tables,
	}, nil
}

func databaseName(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse uri: %w", err)
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return DefaultDatabase, nil
	}
	return name, nil
}

// Ping verifies the server is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, nil)
}

// Migrate creates the comments collection and its listing index.
func (d *DB) Migrate(ctx context.Context) error {
	if err := d.tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	exists, err := d.collectionExists(ctx, d.tables.Comments)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if !exists {
		if err := d.db.CreateCollection(ctx, d.tables.Comments); err != nil {
			return fmt.Errorf("migrate: create collection: %w", err)
		}
	}

	_, err = d.db.Collection(d.tables.Comments).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
		Options: options.Index().SetName(internal.ListIndexName(d.tables.Comments)),
	})
	if err != nil {
		return fmt.Errorf("migrate: create index: %w", err)
	}
	return nil
}

// Validate checks that the collection and its listing index exist.
func (d *DB) Validate(ctx context.Context) error {
	if err := d.tables.Validate(); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}

	exists, err := d.collectionExists(ctx, d.tables.Comments)
	if err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}
	if !exists {
		return fmt.Errorf("validate schema: collection %s does not exist", d.tables.Comments)
	}

	specs, err := d.db.Collection(d.tables.Comments).Indexes().ListSpecifications(ctx)
	if err != nil {
		return fmt.Errorf("validate schema: list indexes: %w", err)
	}
	want := internal.ListIndexName(d.tables.Comments)
	for _, s := range specs {
		if s.Name == want {
			return nil
		}
	}
	return fmt.Errorf("validate schema: collection %s: missing index %s", d.tables.Comments, want)
}

// DropTables drops the comments collection.
func (d *DB) DropTables(ctx context.Context) error {
	if err := d.db.Collection(d.tables.Comments).Drop(ctx); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}

// GetRepo returns the CommentRepo for database operations.
func (d *DB) GetRepo() wally.CommentRepo {
	return &repo{coll: d.db.Collection(d.tables.Comments)}
}

// Close disconnects the client.
func (d *DB) Close() error {
	return d.client.Disconnect(context.Background())
}

func (d *DB) collectionExists(ctx context.Context, name string) (bool, error) {
	names, err := d.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, fmt.Errorf("check collection exists: %w", err)
	}
	return len(names) > 0, nil
}

