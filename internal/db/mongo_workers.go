package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ukydev/detailing-desk/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoWorkerCollection implements WorkerCollection for MongoDB.
type MongoWorkerCollection struct {
	Collection *mongo.Collection
}

// InsertWorker stores a new worker and returns its id.
func (c *MongoWorkerCollection) InsertWorker(ctx context.Context, worker models.Worker) (string, error) {
	if c.Collection == nil {
		return "", fmt.Errorf("mongo collection is nil")
	}
	if worker.ID == "" {
		worker.ID = uuid.NewString()
	}
	if worker.AssignedJobs == nil {
		worker.AssignedJobs = []string{}
	}
	if _, err := c.Collection.InsertOne(ctx, worker); err != nil {
		return "", err
	}
	return worker.ID, nil
}

// FindWorkers returns the whole collection.
func (c *MongoWorkerCollection) FindWorkers(ctx context.Context) ([]models.Worker, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workers := make([]models.Worker, 0)
	if err := cursor.All(ctx, &workers); err != nil {
		return nil, err
	}
	return workers, nil
}

// FindWorkerByID finds a worker by its ID.
func (c *MongoWorkerCollection) FindWorkerByID(ctx context.Context, id string) (*models.Worker, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	var worker models.Worker
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&worker)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &worker, nil
}

// UpdateWorker replaces the editable contact and status fields.
func (c *MongoWorkerCollection) UpdateWorker(ctx context.Context, id string, input models.WorkerInput) error {
	return c.set(ctx, id, bson.M{
		"name":          input.Name,
		"email":         input.Email,
		"phone":         input.Phone,
		"currentStatus": input.CurrentStatus,
	})
}

// UpdateAssignment replaces assignedJobs and currentStatus.
func (c *MongoWorkerCollection) UpdateAssignment(ctx context.Context, id string, assignment models.Assignment) error {
	if assignment.AssignedJobs == nil {
		assignment.AssignedJobs = []string{}
	}
	return c.set(ctx, id, assignment)
}

// DeleteWorker deletes a worker by its ID.
func (c *MongoWorkerCollection) DeleteWorker(ctx context.Context, id string) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoWorkerCollection) set(ctx context.Context, id string, fields interface{}) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
