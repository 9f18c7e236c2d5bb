package main

import (
	"complyflow/internal/flow"
	"complyflow/internal/model"
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database("complyflow")
	standardColl := db.Collection("standards")

	standard := model.Standard{
		ID:          "std_baseline",
		Name:        "Security Baseline Assessment",
		Version:     "1.0.0",
		Description: "General security posture questionnaire covering access control, data protection, incident response, and vendor management.",
		Questions: []model.QuestionNode{
			{
				ID:       "ac_policy",
				Prompt:   "Do you have a documented access control policy?",
				Category: "access-control",
				Priority: model.PriorityHigh,
				Format:   model.FormatYesNo,
			},
			{
				ID:        "ac_mfa",
				Prompt:    "Is multi-factor authentication enforced for all privileged accounts?",
				Category:  "access-control",
				Priority:  model.PriorityHigh,
				Format:    model.FormatYesNo,
				DependsOn: []string{"ac_policy"},
			},
			{
				ID:        "ac_review_freq",
				Prompt:    "How often are user access rights reviewed?",
				Category:  "access-control",
				Priority:  model.PriorityMedium,
				Format:    model.FormatMultipleChoice,
				Options:   []string{"Monthly", "Quarterly", "Annually", "Never"},
				DependsOn: []string{"ac_policy"},
				SkipRules: []model.SkipCondition{
					{QuestionID: "ac_policy", Operator: model.OpEquals, Value: model.BoolValue(false), Action: model.ActionSkip},
				},
			},
			{
				ID:       "dp_encrypt_rest",
				Prompt:   "Is sensitive data encrypted at rest?",
				Category: "data-protection",
				Priority: model.PriorityHigh,
				Format:   model.FormatYesNo,
			},
			{
				ID:        "dp_key_mgmt",
				Prompt:    "Describe your encryption key management process.",
				Category:  "data-protection",
				Priority:  model.PriorityMedium,
				Format:    model.FormatOpenEnded,
				DependsOn: []string{"dp_encrypt_rest"},
				SkipRules: []model.SkipCondition{
					{QuestionID: "dp_encrypt_rest", Operator: model.OpEquals, Value: model.BoolValue(true), Action: model.ActionRequire},
				},
			},
			{
				ID:       "ir_plan",
				Prompt:   "Do you have a written incident response plan?",
				Category: "incident-response",
				Priority: model.PriorityHigh,
				Format:   model.FormatYesNo,
				BranchRules: []model.BranchCondition{
					{QuestionID: "ir_plan", Operator: model.OpEquals, Value: model.BoolValue(true), TargetID: "ir_tested"},
				},
			},
			{
				ID:        "ir_tested",
				Prompt:    "When was the incident response plan last tested?",
				Category:  "incident-response",
				Priority:  model.PriorityMedium,
				Format:    model.FormatMultipleChoice,
				Options:   []string{"Within 6 months", "Within a year", "Over a year ago", "Never"},
				DependsOn: []string{"ir_plan"},
			},
			{
				ID:       "ir_maturity",
				Prompt:   "Rate the maturity of your incident response capability.",
				Category: "incident-response",
				Priority: model.PriorityLow,
				Format:   model.FormatScale,
				ScaleMin: 1,
				ScaleMax: 5,
			},
			{
				ID:       "vm_inventory",
				Prompt:   "Which categories of third-party vendors handle your data?",
				Category: "vendor-management",
				Priority: model.PriorityMedium,
				Format:   model.FormatMultiSelect,
				Options:  []string{"Cloud hosting", "Payment processing", "Analytics", "Support tooling"},
			},
			{
				ID:        "vm_assessments",
				Prompt:    "Are security assessments required before onboarding a vendor?",
				Category:  "vendor-management-detail",
				Priority:  model.PriorityLow,
				Format:    model.FormatYesNo,
				DependsOn: []string{"vm_inventory"},
			},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// Validate the catalog before writing anything
	if _, err := flow.NewCatalog(standard.Questions); err != nil {
		log.Fatalf("Invalid catalog: %v", err)
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := standardColl.ReplaceOne(ctx, bson.M{"_id": standard.ID}, standard, opts); err != nil {
		log.Fatalf("Failed to seed standard: %v", err)
	}

	log.Printf("Seeded standard %s (%d questions)", standard.ID, len(standard.Questions))
}
