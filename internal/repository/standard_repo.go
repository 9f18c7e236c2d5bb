package repository

import (
	"complyflow/internal/model"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StandardRepo handles MongoDB operations for compliance standards and
// their question catalogs
type StandardRepo interface {
	Create(ctx context.Context, standard *model.Standard) error
	GetByID(ctx context.Context, id string) (*model.Standard, error)
	List(ctx context.Context) ([]*model.Standard, error)
	Update(ctx context.Context, standard *model.Standard) error
	Delete(ctx context.Context, id string) error
}

type standardRepo struct {
	collection *mongo.Collection
}

// NewStandardRepo creates a new standard repository
func NewStandardRepo(db *mongo.Database) StandardRepo {
	return &standardRepo{
		collection: db.Collection("standards"),
	}
}

func (r *standardRepo) Create(ctx context.Context, standard *model.Standard) error {
	standard.CreatedAt = time.Now()
	standard.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, standard)
	return err
}

func (r *standardRepo) GetByID(ctx context.Context, id string) (*model.Standard, error) {
	var standard model.Standard
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&standard)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &standard, nil
}

func (r *standardRepo) List(ctx context.Context) ([]*model.Standard, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var standards []*model.Standard
	if err := cursor.All(ctx, &standards); err != nil {
		return nil, err
	}
	return standards, nil
}

func (r *standardRepo) Update(ctx context.Context, standard *model.Standard) error {
	standard.UpdatedAt = time.Now()

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": standard.ID}, standard, opts)
	return err
}

func (r *standardRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
