package repo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamotypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/northstar-insurance/server/internal/agent/model"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

// DynamoAPI is the slice of the DynamoDB client the repository uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoConversationRepository stores turns in a table partitioned by
// session_id with timestamp as the sort key. Most-recent-first reads query
// with ScanIndexForward disabled.
type DynamoConversationRepository struct {
	db    DynamoAPI
	table string
}

func NewDynamoConversationRepository(db DynamoAPI, table string) *DynamoConversationRepository {
	return &DynamoConversationRepository{db: db, table: table}
}

func (r *DynamoConversationRepository) AppendTurn(ctx context.Context, turn model.ConversationTurn) error {
	item, err := attributevalue.MarshalMap(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}

	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		logx.Error().Err(err).Str("table", r.table).Str("session_id", turn.SessionID).Msg("failed to append turn to dynamodb")
		return fmt.Errorf("put turn: %w", err)
	}
	return nil
}

func (r *DynamoConversationRepository) RecentTurns(ctx context.Context, sessionID string, limit int) ([]model.ConversationTurn, error) {
	if limit <= 0 {
		return []model.ConversationTurn{}, nil
	}

	out, err := r.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("session_id = :sid"),
		ExpressionAttributeValues: map[string]dynamotypes.AttributeValue{
			":sid": &dynamotypes.AttributeValueMemberS{Value: sessionID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		logx.Error().Err(err).Str("table", r.table).Str("session_id", sessionID).Msg("failed to query session history")
		return nil, fmt.Errorf("query turns: %w", err)
	}

	turns := make([]model.ConversationTurn, 0, len(out.Items))
	for i, item := range out.Items {
		var t model.ConversationTurn
		if err := attributevalue.UnmarshalMap(item, &t); err != nil {
			return nil, fmt.Errorf("unmarshal turn at index %d: %w", i, err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (r *DynamoConversationRepository) ClearHistory(ctx context.Context, sessionID string) error {
	// fetch sort keys first; DynamoDB deletes are per-item
	out, err := r.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("session_id = :sid"),
		ExpressionAttributeValues: map[string]dynamotypes.AttributeValue{
			":sid": &dynamotypes.AttributeValueMemberS{Value: sessionID},
		},
		ProjectionExpression: aws.String("session_id, #ts"),
		ExpressionAttributeNames: map[string]string{
			"#ts": "timestamp",
		},
	})
	if err != nil {
		return fmt.Errorf("query turns for delete: %w", err)
	}

	for _, item := range out.Items {
		if _, err := r.db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.table),
			Key: map[string]dynamotypes.AttributeValue{
				"session_id": item["session_id"],
				"timestamp":  item["timestamp"],
			},
		}); err != nil {
			return fmt.Errorf("delete turn: %w", err)
		}
	}
	return nil
}

var _ model.ConversationRepository = (*DynamoConversationRepository)(nil)
