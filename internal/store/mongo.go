// internal/store/mongo.go
package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore backs the document store with MongoDB: the first path
// segment selects the collection, the remainder is the _id.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(uri string, dbName string) (*MongoStore, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Ping the database to verify connection
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	log.Println("Successfully connected to MongoDB!")

	return &MongoStore{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, path string) (map[string]interface{}, error) {
	collection, id, err := SplitPath(path)
	if err != nil {
		return nil, err
	}

	var doc bson.M
	err = s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	delete(doc, "_id")
	return normalizeDoc(doc), nil
}

func (s *MongoStore) Set(ctx context.Context, path string, doc map[string]interface{}) error {
	collection, id, err := SplitPath(path)
	if err != nil {
		return err
	}

	opts := options.Replace().SetUpsert(true)
	_, err = s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, bson.M(doc), opts)
	return err
}

func (s *MongoStore) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	collection, id, err := SplitPath(path)
	if err != nil {
		return err
	}

	opts := options.Update().SetUpsert(true)
	_, err = s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M(fields)},
		opts,
	)
	return err
}

func (s *MongoStore) List(ctx context.Context, collection string) (map[string]map[string]interface{}, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := make(map[string]map[string]interface{})
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("Error decoding document in %s: %v", collection, err)
			continue
		}
		id, _ := doc["_id"].(string)
		if id == "" {
			continue
		}
		delete(doc, "_id")
		result[id] = normalizeDoc(doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration failed: %v", err)
	}
	return result, nil
}

// Subscribe watches the collection with a change stream. A full path
// narrows the stream to one document ID.
func (s *MongoStore) Subscribe(path string, onChange func(path string, doc map[string]interface{})) (func(), error) {
	collection := path
	docID := ""
	if col, id, err := SplitPath(path); err == nil {
		collection, docID = col, id
	}

	pipeline := mongo.Pipeline{}
	if docID != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"documentKey._id": docID}}})
	}

	ctx, cancel := context.WithCancel(context.Background())
	streamOpts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := s.db.Collection(collection).Watch(ctx, pipeline, streamOpts)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open change stream on %s: %v", collection, err)
	}

	go func() {
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			var event bson.M
			if err := stream.Decode(&event); err != nil {
				log.Printf("Change stream decode error on %s: %v", collection, err)
				continue
			}
			full, ok := event["fullDocument"].(bson.M)
			if !ok {
				continue
			}
			id, _ := full["_id"].(string)
			delete(full, "_id")
			onChange(Path(collection, id), normalizeDoc(full))
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			log.Printf("Change stream on %s closed with error: %v", collection, err)
		}
	}()

	return cancel, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// normalizeDoc converts BSON container and temporal types into the
// plain map/slice/int64 shapes the model converters expect.
func normalizeDoc(doc bson.M) map[string]interface{} {
	normalized := make(map[string]interface{}, len(doc))
	for key, value := range doc {
		normalized[key] = normalizeValue(value)
	}
	return normalized
}

func normalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case bson.M:
		return normalizeDoc(v)
	case bson.D:
		m := make(map[string]interface{}, len(v))
		for _, elem := range v {
			m[elem.Key] = normalizeValue(elem.Value)
		}
		return m
	case bson.A:
		items := make([]interface{}, len(v))
		for i, item := range v {
			items[i] = normalizeValue(item)
		}
		return items
	case primitive.DateTime:
		return v.Time().UnixMilli()
	case primitive.Decimal128:
		return v.String()
	default:
		return v
	}
}
