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
	"github.com/Sharky83/CarRental/internal/core/ports"
)

const collectionCars = "cars"

type CarRepository struct {
	col *mongo.Collection
}

func NewCarRepository(db *mongo.Database) *CarRepository {
	return &CarRepository{col: db.Collection(collectionCars)}
}

// mongoCar keeps the document _id typed; references to other collections are
// stored as hex strings.
type mongoCar struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Owner           string             `bson:"owner"`
	Brand           string             `bson:"brand"`
	Model           string             `bson:"model"`
	Image           string             `bson:"image,omitempty"`
	Year            int                `bson:"year"`
	Category        string             `bson:"category"`
	SeatingCapacity int                `bson:"seating_capacity"`
	FuelType        string             `bson:"fuel_type"`
	Transmission    string             `bson:"transmission"`
	PricePerDay     float64            `bson:"pricePerDay"`
	Location        string             `bson:"location"`
	Description     string             `bson:"description"`
	IsAvailable     bool               `bson:"isAvailable"`
	Features        []string           `bson:"features,omitempty"`
	Rating          float64            `bson:"rating"`
	TotalBookings   int                `bson:"totalBookings"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func (r *CarRepository) Create(ctx context.Context, car *domain.Car) (*domain.Car, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := fromDomainCar(car)
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert car: %w", err)
	}

	created := *car
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *CarRepository) FindByID(ctx context.Context, id string) (*domain.Car, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCarNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoCar
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCarNotFound
		}
		return nil, fmt.Errorf("find car: %w", err)
	}
	return mc.toDomain(), nil
}

func (r *CarRepository) FindAvailable(ctx context.Context, filter ports.CarFilter) ([]*domain.Car, error) {
	query := bson.M{"isAvailable": true}
	if filter.Location != "" {
		query["location"] = filter.Location
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	return r.findMany(ctx, query)
}

func (r *CarRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Car, error) {
	return r.findMany(ctx, bson.M{"owner": ownerID})
}

func (r *CarRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Car, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return map[string]*domain.Car{}, nil
	}

	cars, err := r.findMany(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}

	out := make(map[string]*domain.Car, len(cars))
	for _, c := range cars {
		out[c.ID] = c
	}
	return out, nil
}

func (r *CarRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"isAvailable": available, "updatedAt": time.Now().UTC()}})
}

func (r *CarRepository) IncrementTotalBookings(ctx context.Context, id string, delta int) error {
	return r.update(ctx, id, bson.M{"$inc": bson.M{"totalBookings": delta}})
}

func (r *CarRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrCarNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCarNotFound
	}
	return nil
}

func (r *CarRepository) update(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrCarNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("update car: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCarNotFound
	}
	return nil
}

// EnsureIndexes creates the query indexes for the cars collection.
func (r *CarRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: 1}, {Key: "isAvailable", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "isAvailable", Value: 1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *CarRepository) findMany(ctx context.Context, query bson.M) ([]*domain.Car, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find cars: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Car
	for cur.Next(ctx) {
		var mc mongoCar
		if err := cur.Decode(&mc); err != nil {
			return nil, fmt.Errorf("decode car: %w", err)
		}
		out = append(out, mc.toDomain())
	}
	return out, cur.Err()
}

func fromDomainCar(c *domain.Car) mongoCar {
	return mongoCar{
		Owner:           c.Owner,
		Brand:           c.Brand,
		Model:           c.Model,
		Image:           c.Image,
		Year:            c.Year,
		Category:        c.Category,
		SeatingCapacity: c.SeatingCapacity,
		FuelType:        c.FuelType,
		Transmission:    c.Transmission,
		PricePerDay:     c.PricePerDay,
		Location:        c.Location,
		Description:     c.Description,
		IsAvailable:     c.IsAvailable,
		Features:        c.Features,
		Rating:          c.Rating,
		TotalBookings:   c.TotalBookings,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (mc *mongoCar) toDomain() *domain.Car {
	return &domain.Car{
		ID:              mc.ID.Hex(),
		Owner:           mc.Owner,
		Brand:           mc.Brand,
		Model:           mc.Model,
		Image:           mc.Image,
		Year:            mc.Year,
		Category:        mc.Category,
		SeatingCapacity: mc.SeatingCapacity,
		FuelType:        mc.FuelType,
		Transmission:    mc.Transmission,
		PricePerDay:     mc.PricePerDay,
		Location:        mc.Location,
		Description:     mc.Description,
		IsAvailable:     mc.IsAvailable,
		Features:        mc.Features,
		Rating:          mc.Rating,
		TotalBookings:   mc.TotalBookings,
		CreatedAt:       mc.CreatedAt,
		UpdatedAt:       mc.UpdatedAt,
	}
}
