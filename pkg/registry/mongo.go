package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/netscore/pkg/version"
)

// DefaultMongoCollection is the collection used by NewMongoStore.
const DefaultMongoCollection = "packages"

const mongoConnectTimeout = 10 * time.Second

// MongoStore is a Store backed by a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// packageDoc is the stored form of a Package. Dependencies are kept as a
// list because npm names may contain dots.
type packageDoc struct {
	ID           string          `bson:"_id"`
	Name         string          `bson:"name"`
	Version      string          `bson:"version"`
	Dependencies []dependencyDoc `bson:"dependencies,omitempty"`
	Repository   string          `bson:"repository,omitempty"`
	UnpackedSize int64           `bson:"unpacked_size,omitempty"`
}

type dependencyDoc struct {
	Name       string `bson:"name"`
	Constraint string `bson:"constraint"`
}

// NewMongoStore connects to uri and uses the packages collection of
// database. The connection is verified with a ping.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &MongoStore{client: client, coll: client.Database(database).Collection(DefaultMongoCollection)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromCollection wraps an existing collection. Close is a
// no-op for stores created this way.
func NewMongoStoreFromCollection(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}, {Key: "version", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create mongo index: %w", err)
	}
	return nil
}

// Put inserts or replaces pkg and returns its ID. pkg.ID is ignored and
// recomputed.
func (s *MongoStore) Put(ctx context.Context, pkg Package) (ID, error) {
	id := NewID(pkg.Name, pkg.Version)
	doc := toDoc(id, pkg)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return id, fmt.Errorf("put package %s@%s: %w", pkg.Name, pkg.Version, err)
	}
	return id, nil
}

// Lookup returns the package with the given ID.
func (s *MongoStore) Lookup(ctx context.Context, id ID) (*Package, error) {
	var doc packageDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: package %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup package %s: %w", id, err)
	}
	return fromDoc(doc)
}

// Versions lists the stored versions of name in ascending order.
func (s *MongoStore) Versions(ctx context.Context, name string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"version": 1})
	cur, err := s.coll.Find(ctx, bson.M{"name": canonicalName(name)}, opts)
	if err != nil {
		return nil, fmt.Errorf("list versions of %s: %w", name, err)
	}
	var docs []struct {
		Version string `bson:"version"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list versions of %s: %w", name, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: package %s", ErrNotFound, name)
	}

	versions := make([]string, len(docs))
	for i, d := range docs {
		versions[i] = d.Version
	}
	slices.SortFunc(versions, version.Compare)
	return versions, nil
}

// Close disconnects the client if this store owns it.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func toDoc(id ID, pkg Package) packageDoc {
	doc := packageDoc{
		ID:           id.String(),
		Name:         canonicalName(pkg.Name),
		Version:      pkg.Version,
		Repository:   pkg.Repository,
		UnpackedSize: pkg.UnpackedSize,
	}
	for name, constraint := range pkg.Dependencies {
		doc.Dependencies = append(doc.Dependencies, dependencyDoc{Name: name, Constraint: constraint})
	}
	slices.SortFunc(doc.Dependencies, func(a, b dependencyDoc) int {
		return strings.Compare(a.Name, b.Name)
	})
	return doc
}

func fromDoc(doc packageDoc) (*Package, error) {
	id, err := ParseID(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("stored package id %q: %w", doc.ID, err)
	}
	pkg := &Package{
		ID:           id,
		Name:         doc.Name,
		Version:      doc.Version,
		Repository:   doc.Repository,
		UnpackedSize: doc.UnpackedSize,
	}
	if len(doc.Dependencies) > 0 {
		pkg.Dependencies = make(map[string]string, len(doc.Dependencies))
		for _, d := range doc.Dependencies {
			pkg.Dependencies[d.Name] = d.Constraint
		}
	}
	return pkg, nil
}
