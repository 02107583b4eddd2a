package newsfeedddb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

const (
	// DefaultMaxAttempts bounds how many times a store request is issued
	// before the failure is surfaced.
	DefaultMaxAttempts = 2

	// DefaultRetryInterval is the pause between attempts.
	DefaultRetryInterval = 30 * time.Millisecond

	batchWriteMaxItems = 25
)

type retryPolicy struct {
	maxAttempts int
	interval    time.Duration
}

func (rp retryPolicy) wait(ctx context.Context) error {
	timer := time.NewTimer(rp.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isRetryable reports whether the store asked us to try the request again,
// e.g. throttling or a transient internal error.
func isRetryable(err error) bool {
	return request.IsErrorRetryable(err) || request.IsErrorThrottle(err)
}

// isConditionFailed reports whether the request was rejected by its
// condition expression. Condition failures are never retried; the caller
// decides whether they are benign.
func isConditionFailed(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException
	}
	return false
}

// getItem reads a single row, retrying transient failures. found is false
// when the row does not exist.
func getItem(ctx context.Context, api dynamodbiface.DynamoDBAPI, rp retryPolicy, label string, input *dynamodb.GetItemInput) (item map[string]*dynamodb.AttributeValue, found bool, err error) {
	var lastErr error
	for attempt := 0; attempt < rp.maxAttempts; attempt++ {
		out, err := api.GetItemWithContext(ctx, input)
		if err != nil {
			lastErr = err
			if !isRetryable(err) {
				break
			}
			if err := rp.wait(ctx); err != nil {
				return nil, false, err
			}
			continue
		}
		if len(out.Item) == 0 {
			return nil, false, nil
		}
		return out.Item, true, nil
	}
	return nil, false, fmt.Errorf("failed to %v: %w", label, lastErr)
}

// putItem writes a single row, retrying transient failures. applied is
// false when the write was rejected by its condition expression.
func putItem(ctx context.Context, api dynamodbiface.DynamoDBAPI, rp retryPolicy, label string, input *dynamodb.PutItemInput) (applied bool, err error) {
	var lastErr error
	for attempt := 0; attempt < rp.maxAttempts; attempt++ {
		if _, err := api.PutItemWithContext(ctx, input); err != nil {
			if isConditionFailed(err) {
				return false, nil
			}
			lastErr = err
			if !isRetryable(err) {
				break
			}
			if err := rp.wait(ctx); err != nil {
				return false, err
			}
			continue
		}
		return true, nil
	}
	return false, fmt.Errorf("failed to %v: %w", label, lastErr)
}

// updateItem updates a single row, retrying transient failures. old holds
// the previous values of the updated attributes when the input requested
// them; applied is false when the update was rejected by its condition
// expression.
func updateItem(ctx context.Context, api dynamodbiface.DynamoDBAPI, rp retryPolicy, label string, input *dynamodb.UpdateItemInput) (old map[string]*dynamodb.AttributeValue, applied bool, err error) {
	var lastErr error
	for attempt := 0; attempt < rp.maxAttempts; attempt++ {
		out, err := api.UpdateItemWithContext(ctx, input)
		if err != nil {
			if isConditionFailed(err) {
				return nil, false, nil
			}
			lastErr = err
			if !isRetryable(err) {
				break
			}
			if err := rp.wait(ctx); err != nil {
				return nil, false, err
			}
			continue
		}
		return out.Attributes, true, nil
	}
	return nil, false, fmt.Errorf("failed to %v: %w", label, lastErr)
}

// queryItems runs a query, retrying transient failures. An empty result is
// not an error.
func queryItems(ctx context.Context, api dynamodbiface.DynamoDBAPI, rp retryPolicy, label string, input *dynamodb.QueryInput) ([]map[string]*dynamodb.AttributeValue, error) {
	var lastErr error
	for attempt := 0; attempt < rp.maxAttempts; attempt++ {
		out, err := api.QueryWithContext(ctx, input)
		if err != nil {
			lastErr = err
			if !isRetryable(err) {
				break
			}
			if err := rp.wait(ctx); err != nil {
				return nil, err
			}
			continue
		}
		return out.Items, nil
	}
	return nil, fmt.Errorf("failed to %v: %w", label, lastErr)
}

// batchWrite submits requests against table in chunks of 25, resubmitting
// whatever the store reports as unprocessed. Items still unprocessed after
// the retry budget count as a failure.
func batchWrite(ctx context.Context, api dynamodbiface.DynamoDBAPI, rp retryPolicy, label, table string, requests []*dynamodb.WriteRequest) error {
	var unprocessed int
	for len(requests) > 0 {
		chunk := requests
		if len(chunk) > batchWriteMaxItems {
			chunk = chunk[:batchWriteMaxItems]
		}
		requests = requests[len(chunk):]

		var lastErr error
		for attempt := 0; attempt < rp.maxAttempts; attempt++ {
			out, err := api.BatchWriteItemWithContext(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]*dynamodb.WriteRequest{table: chunk},
			})
			if err != nil {
				lastErr = err
				if !isRetryable(err) {
					break
				}
			} else {
				lastErr = nil
				chunk = out.UnprocessedItems[table]
				if len(chunk) == 0 {
					break
				}
			}
			if attempt+1 < rp.maxAttempts {
				if err := rp.wait(ctx); err != nil {
					return err
				}
			}
		}
		if lastErr != nil {
			return fmt.Errorf("failed to %v: %w", label, lastErr)
		}
		unprocessed += len(chunk)
	}
	if unprocessed > 0 {
		return fmt.Errorf("failed to %v: %v items unprocessed", label, unprocessed)
	}
	return nil
}
