package dynamo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/quotehub/quotehub/internal/domain/draft"
)

// API is the slice of the DynamoDB client the draft store uses.
type API interface {
	GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error)
	PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error)
}

type record struct {
	AccountID string `dynamodbav:"account_id"`
	Payload   string `dynamodbav:"payload"`
	SavedAt   string `dynamodbav:"saved_at"`
}

// DraftStore implements draft.Store on a DynamoDB table keyed by
// account_id. Expiry is enforced twice: an expires_at TTL attribute for
// the table's background sweep, and a saved_at check on load because
// the sweep may lag well behind the retention window.
type DraftStore struct {
	client    API
	tableName string
	nowFunc   func() time.Time
}

// NewDraftStore returns a store bound to tableName.
func NewDraftStore(client API, tableName string) *DraftStore {
	return &DraftStore{
		client:    client,
		tableName: tableName,
		nowFunc:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *DraftStore) Save(ctx context.Context, accountID string, payload json.RawMessage) error {
	now := s.nowFunc()
	item, err := attributevalue.MarshalMap(record{
		AccountID: accountID,
		Payload:   string(payload),
		SavedAt:   now.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	expires := now.Add(draft.RetentionWindow).Unix()
	item["expires_at"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expires, 10)}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return wrapAPIErr("put draft", err)
	}
	return nil
}

func (s *DraftStore) Load(ctx context.Context, accountID string) (*draft.Draft, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"account_id": &types.AttributeValueMemberS{Value: accountID},
		},
	})
	if err != nil {
		return nil, wrapAPIErr("get draft", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}
	savedAt, err := time.Parse(time.RFC3339Nano, rec.SavedAt)
	if err != nil {
		return nil, fmt.Errorf("parse draft timestamp: %w", err)
	}
	if s.nowFunc().Sub(savedAt) > draft.RetentionWindow {
		return nil, nil
	}
	return &draft.Draft{
		AccountID: rec.AccountID,
		Payload:   json.RawMessage(rec.Payload),
		SavedAt:   savedAt,
	}, nil
}

func (s *DraftStore) Delete(ctx context.Context, accountID string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"account_id": &types.AttributeValueMemberS{Value: accountID},
		},
	})
	if err != nil {
		return wrapAPIErr("delete draft", err)
	}
	return nil
}

// wrapAPIErr surfaces the DynamoDB error code so callers can log
// something more useful than the SDK's operation wrapper.
func wrapAPIErr(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s: %w", op, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
