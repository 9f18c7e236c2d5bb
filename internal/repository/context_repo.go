package repository

import (
	"complyflow/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ContextRepo persists assessment contexts, one document per session
type ContextRepo interface {
	Save(ctx context.Context, assessment *model.AssessmentContext) error
	GetBySessionID(ctx context.Context, sessionID string) (*model.AssessmentContext, error)
	GetByUserID(ctx context.Context, userID string) ([]*model.AssessmentContext, error)
	GetByStandardID(ctx context.Context, standardID string) ([]*model.AssessmentContext, error)
}

type contextRepo struct {
	collection *mongo.Collection
}

// NewContextRepo creates a new assessment context repository
func NewContextRepo(db *mongo.Database) ContextRepo {
	return &contextRepo{
		collection: db.Collection("assessment_contexts"),
	}
}

func (r *contextRepo) Save(ctx context.Context, assessment *model.AssessmentContext) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": assessment.SessionID}, assessment, opts)
	return err
}

func (r *contextRepo) GetBySessionID(ctx context.Context, sessionID string) (*model.AssessmentContext, error) {
	var assessment model.AssessmentContext
	err := r.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&assessment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *contextRepo) GetByUserID(ctx context.Context, userID string) ([]*model.AssessmentContext, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *contextRepo) GetByStandardID(ctx context.Context, standardID string) ([]*model.AssessmentContext, error) {
	return r.find(ctx, bson.M{"standardId": standardID})
}

func (r *contextRepo) find(ctx context.Context, filter bson.M) ([]*model.AssessmentContext, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assessments []*model.AssessmentContext
	if err := cursor.All(ctx, &assessments); err != nil {
		return nil, err
	}
	return assessments, nil
}
