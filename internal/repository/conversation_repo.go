package repository

import (
	"complyflow/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConversationRepo persists conversational wrapper state, one document per
// session. The embedded assessment context rides along so a chat session
// restores in a single read.
type ConversationRepo interface {
	Save(ctx context.Context, state *model.ConversationState) error
	GetBySessionID(ctx context.Context, sessionID string) (*model.ConversationState, error)
}

type conversationRepo struct {
	collection *mongo.Collection
}

// NewConversationRepo creates a new conversation repository
func NewConversationRepo(db *mongo.Database) ConversationRepo {
	return &conversationRepo{
		collection: db.Collection("conversations"),
	}
}

func (r *conversationRepo) Save(ctx context.Context, state *model.ConversationState) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": state.SessionID}, state, opts)
	return err
}

func (r *conversationRepo) GetBySessionID(ctx context.Context, sessionID string) (*model.ConversationState, error) {
	var state model.ConversationState
	err := r.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&state)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}
