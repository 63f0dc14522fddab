package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Sharky83/CarRental/internal/core/domain"
)

const collectionBookings = "bookings"

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(collectionBookings)}
}

type mongoBooking struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Car        string             `bson:"car"`
	User       string             `bson:"user"`
	Owner      string             `bson:"owner"`
	PickupDate time.Time          `bson:"pickupDate"`
	ReturnDate time.Time          `bson:"returnDate"`
	Price      float64            `bson:"price"`
	Status     string             `bson:"status"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoBooking{
		Car:        b.Car,
		User:       b.User,
		Owner:      b.Owner,
		PickupDate: b.PickupDate,
		ReturnDate: b.ReturnDate,
		Price:      b.Price,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	created := *b
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrBookingNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mb mongoBooking
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mb); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return mb.toDomain(), nil
}

// FindActiveByCar returns all non-cancelled bookings for a car. The query is
// served by the (car, status) compound index.
func (r *BookingRepository) FindActiveByCar(ctx context.Context, carID string) ([]*domain.Booking, error) {
	return r.findMany(ctx, bson.M{
		"car":    carID,
		"status": bson.M{"$ne": string(domain.StatusCancelled)},
	})
}

func (r *BookingRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	return r.findMany(ctx, bson.M{"user": userID})
}

func (r *BookingRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Booking, error) {
	return r.findMany(ctx, bson.M{"owner": ownerID})
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrBookingNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) FindStalePending(ctx context.Context, pickupBefore time.Time) ([]*domain.Booking, error) {
	return r.findMany(ctx, bson.M{
		"status":     string(domain.StatusPending),
		"pickupDate": bson.M{"$lt": pickupBefore},
	})
}

// EnsureIndexes creates the query indexes for the bookings collection. The
// (car, status) compound index backs the availability conflict check.
func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "car", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *BookingRepository) findMany(ctx context.Context, query bson.M) ([]*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Booking
	for cur.Next(ctx) {
		var mb mongoBooking
		if err := cur.Decode(&mb); err != nil {
			return nil, fmt.Errorf("decode booking: %w", err)
		}
		out = append(out, mb.toDomain())
	}
	return out, cur.Err()
}

func (mb *mongoBooking) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:         mb.ID.Hex(),
		Car:        mb.Car,
		User:       mb.User,
		Owner:      mb.Owner,
		PickupDate: mb.PickupDate,
		ReturnDate: mb.ReturnDate,
		Price:      mb.Price,
		Status:     domain.BookingStatus(mb.Status),
		CreatedAt:  mb.CreatedAt,
	}
}
