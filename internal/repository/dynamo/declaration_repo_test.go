package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/lovepage/internal/errs"
	"github.com/and161185/lovepage/internal/model"
)

type fakeDynamo struct {
	items  map[string]map[string]types.AttributeValue
	putErr error
	getErr error
	lastIn *dynamodb.PutItemInput
}

func newFake() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastIn = in
	if f.putErr != nil {
		return nil, f.putErr
	}
	id := in.Item["id"].(*types.AttributeValueMemberS).Value
	if _, ok := f.items[id]; ok {
		return nil, &types.ConditionalCheckFailedException{Message: new(string)}
	}
	f.items[id] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	id := in.Key["id"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[id]}, nil
}

func sampleDoc() model.Document {
	d := model.Defaults(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
	d.Images = []string{"data:image/jpeg;base64,AAAA"}
	d.Animation = model.AnimationFloat
	d.MusicStartTime = 3.25
	return d
}

func TestDeclarationRepo_CreateGet_RoundTrip(t *testing.T) {
	t.Parallel()

	fake := newFake()
	r := NewDeclarationRepo(fake, "declarations")
	fixed := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	id := uuid.Must(uuid.NewV4())
	rec := &model.Record{ID: id, Document: sampleDoc()}
	require.NoError(t, r.Create(context.Background(), rec))
	require.Equal(t, fixed, rec.CreatedAt)

	require.Equal(t, "declarations", *fake.lastIn.TableName)
	require.Equal(t, "attribute_not_exists(id)", *fake.lastIn.ConditionExpression)
	require.Contains(t, fake.lastIn.Item, "background_color")
	require.Contains(t, fake.lastIn.Item, "show_countdown")

	got, err := r.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, id, got.ID)
	require.True(t, fixed.Equal(got.CreatedAt))
	require.Equal(t, rec.Document, got.Document)
}

func TestDeclarationRepo_EmptyImages(t *testing.T) {
	t.Parallel()

	r := NewDeclarationRepo(newFake(), "t")
	d := sampleDoc()
	d.Images = nil
	id := uuid.Must(uuid.NewV4())
	require.NoError(t, r.Create(context.Background(), &model.Record{ID: id, Document: d}))

	got, err := r.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, []string{}, got.Document.Images)
}

func TestDeclarationRepo_DuplicateID(t *testing.T) {
	t.Parallel()

	r := NewDeclarationRepo(newFake(), "t")
	id := uuid.Must(uuid.NewV4())
	require.NoError(t, r.Create(context.Background(), &model.Record{ID: id, Document: sampleDoc()}))

	err := r.Create(context.Background(), &model.Record{ID: id, Document: sampleDoc()})
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestDeclarationRepo_NotFound(t *testing.T) {
	t.Parallel()

	r := NewDeclarationRepo(newFake(), "t")
	_, err := r.Get(context.Background(), uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDeclarationRepo_ClientErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("throttled")
	fake := newFake()
	fake.putErr, fake.getErr = boom, boom
	r := NewDeclarationRepo(fake, "t")

	require.ErrorIs(t, r.Create(context.Background(), &model.Record{ID: uuid.Must(uuid.NewV4()), Document: sampleDoc()}), boom)

	_, err := r.Get(context.Background(), uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, errs.ErrNotFound)
}
