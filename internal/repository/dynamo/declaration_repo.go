// Package dynamo contains a DynamoDB implementation of the declaration repository.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/gofrs/uuid/v5"

	"github.com/and161185/lovepage/internal/errs"
	"github.com/and161185/lovepage/internal/model"
)

// ErrDuplicateID is returned when an insert reuses an existing identifier.
var ErrDuplicateID = errors.New("duplicate declaration id")

// API is the subset of *dynamodb.Client the repository needs.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// item is the stored shape: flat snake_case attributes, keyed by id.
type item struct {
	ID              string    `dynamodbav:"id"`
	Title           string    `dynamodbav:"title"`
	Subtitle        string    `dynamodbav:"subtitle"`
	Message         string    `dynamodbav:"message"`
	Footer          string    `dynamodbav:"footer"`
	Images          []string  `dynamodbav:"images"`
	MusicEnabled    bool      `dynamodbav:"music_enabled"`
	MusicURL        string    `dynamodbav:"music_url"`
	MusicStartTime  float64   `dynamodbav:"music_start_time"`
	MusicDuration   float64   `dynamodbav:"music_duration"`
	BackgroundColor string    `dynamodbav:"background_color"`
	TextColor       string    `dynamodbav:"text_color"`
	Animation       string    `dynamodbav:"animation"`
	Occasion        string    `dynamodbav:"occasion"`
	ButtonTextYes   string    `dynamodbav:"button_text_yes"`
	ButtonTextNo    string    `dynamodbav:"button_text_no"`
	StartDate       string    `dynamodbav:"start_date"`
	ShowCountdown   bool      `dynamodbav:"show_countdown"`
	CreatedAt       time.Time `dynamodbav:"created_at"`
}

func toItem(rec *model.Record) item {
	d := rec.Document
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return item{
		ID:              rec.ID.String(),
		Title:           d.Title,
		Subtitle:        d.Subtitle,
		Message:         d.Message,
		Footer:          d.Footer,
		Images:          images,
		MusicEnabled:    d.MusicEnabled,
		MusicURL:        d.MusicURL,
		MusicStartTime:  d.MusicStartTime,
		MusicDuration:   d.MusicDuration,
		BackgroundColor: d.BackgroundColor,
		TextColor:       d.TextColor,
		Animation:       string(d.Animation),
		Occasion:        string(d.Occasion),
		ButtonTextYes:   d.ButtonTextYes,
		ButtonTextNo:    d.ButtonTextNo,
		StartDate:       d.StartDate,
		ShowCountdown:   d.ShowCountdown,
		CreatedAt:       rec.CreatedAt,
	}
}

func (it item) record() (*model.Record, error) {
	id, err := uuid.FromString(it.ID)
	if err != nil {
		return nil, fmt.Errorf("stored id %q: %w", it.ID, err)
	}
	images := it.Images
	if images == nil {
		images = []string{}
	}
	return &model.Record{
		ID:        id,
		CreatedAt: it.CreatedAt,
		Document: model.Document{
			Occasion:        model.Occasion(it.Occasion),
			Title:           it.Title,
			Subtitle:        it.Subtitle,
			Message:         it.Message,
			Footer:          it.Footer,
			Images:          images,
			BackgroundColor: it.BackgroundColor,
			TextColor:       it.TextColor,
			Animation:       model.Animation(it.Animation),
			ButtonTextYes:   it.ButtonTextYes,
			ButtonTextNo:    it.ButtonTextNo,
			ShowCountdown:   it.ShowCountdown,
			StartDate:       it.StartDate,
			MusicURL:        it.MusicURL,
			MusicEnabled:    it.MusicEnabled,
			MusicStartTime:  it.MusicStartTime,
			MusicDuration:   it.MusicDuration,
		},
	}, nil
}

// DeclarationRepo implements DeclarationRepository on a DynamoDB table keyed by "id".
type DeclarationRepo struct {
	client API
	table  string
	now    func() time.Time
}

// NewDeclarationRepo constructs a repository for the given table.
func NewDeclarationRepo(client API, table string) *DeclarationRepo {
	return &DeclarationRepo{client: client, table: table, now: time.Now}
}

// Create puts a new item; an existing id is never overwritten.
func (r *DeclarationRepo) Create(ctx context.Context, rec *model.Record) error {
	rec.CreatedAt = r.now().UTC()
	av, err := attributevalue.MarshalMap(toItem(rec))
	if err != nil {
		return fmt.Errorf("marshal declaration: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}
		return fmt.Errorf("put declaration: %w", err)
	}
	return nil
}

// Get reads a declaration by id with a consistent read.
func (r *DeclarationRepo) Get(ctx context.Context, id uuid.UUID) (*model.Record, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id.String()},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get declaration: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, errs.ErrNotFound
	}
	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal declaration: %w", err)
	}
	return it.record()
}
