package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/lox/mahjongdojo/internal/round"
)

const (
	defaultMongoDatabase   = "mahjongdojo"
	defaultMongoCollection = "snapshots"
	defaultMongoID         = "current"
)

// MongoOptions configures the MongoDB store
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
	// ID is the document id holding the record
	ID string
}

// snapshotDoc is the stored document. The payload is the encoded record so
// the layout matches every other backend.
type snapshotDoc struct {
	ID       string    `bson:"_id"`
	Revision int       `bson:"revision"`
	Session  string    `bson:"session"`
	Seed     string    `bson:"seed"`
	Payload  string    `bson:"payload"`
	Updated  time.Time `bson:"updated_at"`
}

// Mongo keeps the record in a single document
type Mongo struct {
	cli    *mongo.Client
	coll   *mongo.Collection
	id     string
	logger *log.Logger
}

// NewMongo connects to MongoDB and checks the connection
func NewMongo(ctx context.Context, opts MongoOptions, logger *log.Logger) (*Mongo, error) {
	if opts.URI == "" {
		return nil, errors.New("mongo uri is required")
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db, coll, id := opts.Database, opts.Collection, opts.ID
	if db == "" {
		db = defaultMongoDatabase
	}
	if coll == "" {
		coll = defaultMongoCollection
	}
	if id == "" {
		id = defaultMongoID
	}
	logger.Info("Connected to mongo", "database", db, "collection", coll)
	return &Mongo{
		cli:    cli,
		coll:   cli.Database(db).Collection(coll),
		id:     id,
		logger: logger,
	}, nil
}

func (m *Mongo) Save(ctx context.Context, rec round.Record) error {
	data, err := round.Encode(rec)
	if err != nil {
		return err
	}
	doc := snapshotDoc{
		ID:       m.id,
		Revision: rec.Revision,
		Payload:  string(data),
		Updated:  time.Now().UTC(),
	}
	if rec.Store != nil {
		doc.Session = rec.Store.Session
		doc.Seed = rec.Store.Seed
	}
	_, err = m.coll.ReplaceOne(ctx, bson.M{"_id": m.id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save snapshot document: %w", err)
	}
	return nil
}

func (m *Mongo) Load(ctx context.Context) (round.Record, error) {
	var doc snapshotDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": m.id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return round.Record{}, round.ErrNotFound
	}
	if err != nil {
		return round.Record{}, fmt.Errorf("load snapshot document: %w", err)
	}
	return round.Decode([]byte(doc.Payload))
}

// Delete removes the document
func (m *Mongo) Delete(ctx context.Context) error {
	_, err := m.coll.DeleteOne(ctx, bson.M{"_id": m.id})
	return err
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return m.cli.Disconnect(ctx)
}
