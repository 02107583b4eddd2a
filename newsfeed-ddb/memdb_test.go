package newsfeedddb

import (
	"bytes"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

// memDB is an in-memory stand-in for the two newsfeed tables. It understands
// exactly the expressions the access layer emits; anything else panics so a
// drifting query shows up loudly in tests.
type memDB struct {
	dynamodbiface.DynamoDBAPI

	usersTable string
	newsTable  string

	mu    sync.Mutex
	users map[string]map[string]*dynamodb.AttributeValue
	news  map[string][]map[string]*dynamodb.AttributeValue

	// scripted one-shot failures, popped per call
	getErrs    []error
	putErrs    []error
	updateErrs []error
	queryErrs  []error
	batchErrs  []error
}

func newMemDB(usersTable, newsTable string) *memDB {
	return &memDB{
		usersTable: usersTable,
		newsTable:  newsTable,
		users:      map[string]map[string]*dynamodb.AttributeValue{},
		news:       map[string][]map[string]*dynamodb.AttributeValue{},
	}
}

func conditionFailedErr() error {
	return awserr.New(dynamodb.ErrCodeConditionalCheckFailedException, "the conditional request failed", nil)
}

func throttleErr() error {
	return awserr.New(dynamodb.ErrCodeProvisionedThroughputExceededException, "slow down", nil)
}

func pop(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

func (m *memDB) GetItemWithContext(_ aws.Context, input *dynamodb.GetItemInput, _ ...request.Option) (*dynamodb.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := pop(&m.getErrs); err != nil {
		return nil, err
	}
	if *input.TableName != m.usersTable {
		panic("unexpected table " + *input.TableName)
	}
	row, ok := m.users[*input.Key[usersAttrUserID].S]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyRow(row)}, nil
}

func (m *memDB) PutItemWithContext(_ aws.Context, input *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := pop(&m.putErrs); err != nil {
		return nil, err
	}
	switch *input.TableName {
	case m.usersTable:
		userID := *input.Item[usersAttrUserID].S
		if input.ConditionExpression != nil {
			if _, exists := m.users[userID]; exists {
				return nil, conditionFailedErr()
			}
		}
		m.users[userID] = copyRow(input.Item)

	case m.newsTable:
		topic := *input.Item[newsAttrTopic].S
		key := input.Item[newsAttrRangeKey].B
		rows := m.news[topic]
		idx := sort.Search(len(rows), func(i int) bool {
			return bytes.Compare(rows[i][newsAttrRangeKey].B, key) >= 0
		})
		if idx < len(rows) && bytes.Equal(rows[idx][newsAttrRangeKey].B, key) {
			if input.ConditionExpression != nil {
				return nil, conditionFailedErr()
			}
			rows[idx] = copyRow(input.Item)
			break
		}
		rows = append(rows, nil)
		copy(rows[idx+1:], rows[idx:])
		rows[idx] = copyRow(input.Item)
		m.news[topic] = rows

	default:
		panic("unexpected table " + *input.TableName)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *memDB) UpdateItemWithContext(_ aws.Context, input *dynamodb.UpdateItemInput, _ ...request.Option) (*dynamodb.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := pop(&m.updateErrs); err != nil {
		return nil, err
	}
	if *input.TableName != m.usersTable {
		panic("unexpected table " + *input.TableName)
	}

	userID := *input.Key[usersAttrUserID].S
	row, exists := m.users[userID]
	if !exists {
		row = map[string]*dynamodb.AttributeValue{
			usersAttrUserID: {S: aws.String(userID)},
		}
	}

	if input.ConditionExpression != nil {
		name, placeholder := parseEquality(*input.ConditionExpression)
		want := input.ExpressionAttributeValues[placeholder]
		have := row[name]
		if !exists || have == nil || have.S == nil || want.S == nil || *have.S != *want.S {
			return nil, conditionFailedErr()
		}
	}

	old := map[string]*dynamodb.AttributeValue{}
	expr := strings.TrimPrefix(*input.UpdateExpression, "SET ")
	for _, clause := range strings.Split(expr, ", ") {
		name, placeholder := parseEquality(clause)
		if prev, ok := row[name]; ok {
			old[name] = prev
		}
		row[name] = input.ExpressionAttributeValues[placeholder]
	}
	m.users[userID] = row

	out := &dynamodb.UpdateItemOutput{}
	if input.ReturnValues != nil && *input.ReturnValues == dynamodb.ReturnValueUpdatedOld {
		out.Attributes = old
	}
	return out, nil
}

func (m *memDB) QueryWithContext(_ aws.Context, input *dynamodb.QueryInput, _ ...request.Option) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := pop(&m.queryErrs); err != nil {
		return nil, err
	}
	if *input.TableName != m.newsTable {
		panic("unexpected table " + *input.TableName)
	}

	topic := *input.ExpressionAttributeValues[":topic"].S
	bound := input.ExpressionAttributeValues[":sk"].B
	before := strings.Contains(*input.KeyConditionExpression, "< :sk")

	out := &dynamodb.QueryOutput{}
	for _, row := range m.news[topic] {
		cmp := bytes.Compare(row[newsAttrRangeKey].B, bound)
		if (before && cmp < 0) || (!before && cmp >= 0) {
			out.Items = append(out.Items, copyRow(row))
		}
	}
	return out, nil
}

func (m *memDB) BatchWriteItemWithContext(_ aws.Context, input *dynamodb.BatchWriteItemInput, _ ...request.Option) (*dynamodb.BatchWriteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := pop(&m.batchErrs); err != nil {
		return nil, err
	}
	requests, ok := input.RequestItems[m.newsTable]
	if !ok {
		panic("unexpected batch target")
	}
	if len(requests) > batchWriteMaxItems {
		panic("oversized batch")
	}
	for _, req := range requests {
		if req.DeleteRequest == nil {
			panic("unexpected batch request type")
		}
		topic := *req.DeleteRequest.Key[newsAttrTopic].S
		key := req.DeleteRequest.Key[newsAttrRangeKey].B
		rows := m.news[topic]
		for i, row := range rows {
			if bytes.Equal(row[newsAttrRangeKey].B, key) {
				m.news[topic] = append(rows[:i], rows[i+1:]...)
				break
			}
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func (m *memDB) newsCount(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.news[topic])
}

// parseEquality splits "name = :placeholder" into its halves.
func parseEquality(clause string) (name, placeholder string) {
	parts := strings.SplitN(clause, " = ", 2)
	if len(parts) != 2 {
		panic("unexpected expression " + clause)
	}
	return parts[0], parts[1]
}

func copyRow(row map[string]*dynamodb.AttributeValue) map[string]*dynamodb.AttributeValue {
	dup := make(map[string]*dynamodb.AttributeValue, len(row))
	for k, v := range row {
		dup[k] = v
	}
	return dup
}
