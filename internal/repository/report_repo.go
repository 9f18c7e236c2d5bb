package repository

import (
	"complyflow/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReportRepo handles MongoDB operations for generated gap reports
type ReportRepo interface {
	Save(ctx context.Context, report *model.GapReport) error
	GetByStandardID(ctx context.Context, standardID string) (*model.GapReport, error)
}

type reportRepo struct {
	collection *mongo.Collection
}

// NewReportRepo creates a new report repository
func NewReportRepo(db *mongo.Database) ReportRepo {
	return &reportRepo{
		collection: db.Collection("gap_reports"),
	}
}

func (r *reportRepo) Save(ctx context.Context, report *model.GapReport) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"standardId": report.StandardID}, report, opts)
	return err
}

func (r *reportRepo) GetByStandardID(ctx context.Context, standardID string) (*model.GapReport, error) {
	var report model.GapReport
	err := r.collection.FindOne(ctx, bson.M{"standardId": standardID}).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
