package repo

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamotypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northstar-insurance/server/internal/agent/model"
)

// fakeDynamo records the inputs it receives and plays back scripted items.
type fakeDynamo struct {
	items []map[string]dynamotypes.AttributeValue

	putInputs    []*dynamodb.PutItemInput
	queryInputs  []*dynamodb.QueryInput
	deleteInputs []*dynamodb.DeleteItemInput
}

func (f *fakeDynamo) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putInputs = append(f.putInputs, params)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queryInputs = append(f.queryInputs, params)
	return &dynamodb.QueryOutput{Items: f.items}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.deleteInputs = append(f.deleteInputs, params)
	return &dynamodb.DeleteItemOutput{}, nil
}

func marshalTurn(t *testing.T, turn model.ConversationTurn) map[string]dynamotypes.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(turn)
	require.NoError(t, err)
	return item
}

func TestDynamoAppendTurn(t *testing.T) {
	db := &fakeDynamo{}
	r := NewDynamoConversationRepository(db, "conversations")

	turn := model.ConversationTurn{
		SessionID:     "sess-1",
		Timestamp:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		UserText:      "q",
		AssistantText: "a",
	}
	require.NoError(t, r.AppendTurn(context.Background(), turn))

	require.Len(t, db.putInputs, 1)
	assert.Equal(t, "conversations", aws.ToString(db.putInputs[0].TableName))

	var stored model.ConversationTurn
	require.NoError(t, attributevalue.UnmarshalMap(db.putInputs[0].Item, &stored))
	assert.Equal(t, turn.SessionID, stored.SessionID)
	assert.Equal(t, turn.UserText, stored.UserText)
}

func TestDynamoRecentTurns(t *testing.T) {
	db := &fakeDynamo{items: []map[string]dynamotypes.AttributeValue{
		marshalTurn(t, model.ConversationTurn{SessionID: "sess-1", UserText: "newest"}),
		marshalTurn(t, model.ConversationTurn{SessionID: "sess-1", UserText: "older"}),
	}}
	r := NewDynamoConversationRepository(db, "conversations")

	turns, err := r.RecentTurns(context.Background(), "sess-1", 5)
	require.NoError(t, err)

	require.Len(t, turns, 2)
	assert.Equal(t, "newest", turns[0].UserText)

	require.Len(t, db.queryInputs, 1)
	q := db.queryInputs[0]
	assert.Equal(t, "session_id = :sid", aws.ToString(q.KeyConditionExpression))
	assert.False(t, aws.ToBool(q.ScanIndexForward))
	assert.EqualValues(t, 5, aws.ToInt32(q.Limit))
}

func TestDynamoRecentTurnsZeroLimit(t *testing.T) {
	db := &fakeDynamo{}
	r := NewDynamoConversationRepository(db, "conversations")

	turns, err := r.RecentTurns(context.Background(), "sess-1", 0)
	require.NoError(t, err)
	assert.Empty(t, turns)
	assert.Empty(t, db.queryInputs)
}

func TestDynamoClearHistory(t *testing.T) {
	db := &fakeDynamo{items: []map[string]dynamotypes.AttributeValue{
		marshalTurn(t, model.ConversationTurn{SessionID: "sess-1", Timestamp: time.Now().UTC()}),
		marshalTurn(t, model.ConversationTurn{SessionID: "sess-1", Timestamp: time.Now().UTC().Add(time.Minute)}),
	}}
	r := NewDynamoConversationRepository(db, "conversations")

	require.NoError(t, r.ClearHistory(context.Background(), "sess-1"))
	assert.Len(t, db.deleteInputs, 2)
}
