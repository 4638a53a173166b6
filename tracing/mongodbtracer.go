package tracing

import (
	"context"
	"sync"
	"time"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sarchlab/greenwave/sim"
)

// MongoDBTracer dumps finished tasks into a MongoDB database.
type MongoDBTracer struct {
	timeTeller sim.TimeTeller
	client     *mongo.Client
	collect    *mongo.Collection
	uri        string

	lock          sync.Mutex
	inflightTasks map[string]Task
}

// NewMongoDBTracer returns a new MongoDBTracer. Call Init to connect before
// tracing.
func NewMongoDBTracer(timeTeller sim.TimeTeller) *MongoDBTracer {
	t := &MongoDBTracer{
		timeTeller:    timeTeller,
		uri:           "mongodb://localhost:27017",
		inflightTasks: make(map[string]Task),
	}
	return t
}

// SetURI sets the server and the port to connect to.
func (t *MongoDBTracer) SetURI(uri string) {
	t.uri = uri
}

// Init connects to the MongoDB database.
func (t *MongoDBTracer) Init() {
	var err error

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	t.client, err = mongo.Connect(ctx, options.Client().ApplyURI(t.uri))
	if err != nil {
		panic(err)
	}

	dbName := "greenwave_trace_" + xid.New().String()
	log.Infof("tracing to database %s", dbName)

	t.collect = t.client.Database(dbName).Collection("trace")

	t.createIndexes()
}

func (t *MongoDBTracer) createIndexes() {
	t.createIndex("id", true)
	t.createIndex("parentid", true)
	t.createIndex("kind", true)
	t.createIndex("what", true)
	t.createIndex("where", true)
	t.createIndex("starttime", false)
	t.createIndex("endtime", false)
}

func (t *MongoDBTracer) createIndex(key string, useHash bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var value interface{}
	if useHash {
		value = "hashed"
	} else {
		value = 1
	}

	_, err := t.collect.Indexes().CreateOne(ctx,
		mongo.IndexModel{
			Keys: bson.D{bson.E{Key: key, Value: value}},
		},
	)
	if err != nil {
		panic(err)
	}
}

// StartTask records the task start time.
func (t *MongoDBTracer) StartTask(task Task) {
	task.StartTime = t.timeTeller.CurrentTime()

	t.lock.Lock()
	t.inflightTasks[task.ID] = task
	t.lock.Unlock()
}

// StepTask does nothing.
func (t *MongoDBTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask writes the finished task into the database.
func (t *MongoDBTracer) EndTask(task Task) {
	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	originalTask, ok := t.inflightTasks[task.ID]
	if !ok {
		t.lock.Unlock()
		return
	}
	originalTask.EndTime = now
	originalTask.Detail = nil
	delete(t.inflightTasks, task.ID)
	t.lock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := t.collect.InsertOne(ctx, originalTask)
	if err != nil {
		panic(err)
	}
}
