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

// MongoAppointmentCollection implements AppointmentCollection for MongoDB.
type MongoAppointmentCollection struct {
	Collection *mongo.Collection
}

// InsertAppointment stores a new appointment and returns its id.
func (c *MongoAppointmentCollection) InsertAppointment(ctx context.Context, appointment models.Appointment) (string, error) {
	if c.Collection == nil {
		return "", fmt.Errorf("mongo collection is nil")
	}
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	if _, err := c.Collection.InsertOne(ctx, appointment); err != nil {
		return "", err
	}
	return appointment.ID, nil
}

// FindAppointments returns the whole collection.
func (c *MongoAppointmentCollection) FindAppointments(ctx context.Context) ([]models.Appointment, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	appointments := make([]models.Appointment, 0)
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindAppointmentByID finds an appointment by its ID.
func (c *MongoAppointmentCollection) FindAppointmentByID(ctx context.Context, id string) (*models.Appointment, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	var appointment models.Appointment
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&appointment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &appointment, nil
}

// UpdateAppointment replaces the fields the edit workflow owns.
func (c *MongoAppointmentCollection) UpdateAppointment(ctx context.Context, id string, update models.AppointmentUpdate) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
