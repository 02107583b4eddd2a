package newsfeedddb

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/rs/zerolog"
)

// Config carries the table names and request tuning for an Access.
type Config struct {
	UsersTable    string
	NewsTable     string
	MaxAttempts   int
	RetryInterval time.Duration
	PurgeAge      time.Duration
}

// Access is the data-layer facade for the newsfeed tables. All operations
// lease a client from the pool for the duration of a single call, so an
// Access is safe for concurrent use by many sessions.
type Access struct {
	pool  *Pool
	cfg   Config
	retry retryPolicy
	now   func() time.Time
}

// NewAccess wraps a pool with the newsfeed table operations. Zero tuning
// values fall back to defaults.
func NewAccess(pool *Pool, cfg Config) *Access {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	if cfg.PurgeAge <= 0 {
		cfg.PurgeAge = time.Minute
	}
	return &Access{
		pool:  pool,
		cfg:   cfg,
		retry: retryPolicy{maxAttempts: cfg.MaxAttempts, interval: cfg.RetryInterval},
		now:   time.Now,
	}
}

// PoolStats reports the sizing counters of the underlying pool.
func (a *Access) PoolStats() Stats {
	return a.pool.Stats()
}

// GetOrCreateUser returns the user's current topic, creating the user row
// with no subscription on first contact. An empty topic means the user is
// not subscribed.
func (a *Access) GetOrCreateUser(ctx context.Context, userID string) (string, error) {
	conn, err := a.pool.Get()
	if err != nil {
		return "", err
	}
	defer conn.Close()

	item, found, err := getItem(ctx, conn.API(), a.retry, "get user "+userID, &dynamodb.GetItemInput{
		TableName:            aws.String(a.cfg.UsersTable),
		Key:                  userKey(userID),
		ProjectionExpression: aws.String(usersAttrTopic),
	})
	if err != nil {
		return "", err
	}
	if found {
		topic, ok := stringAttr(item, usersAttrTopic)
		if !ok {
			return "", fmt.Errorf("failed to get user %v: unrecognized row shape", userID)
		}
		return topic, nil
	}

	applied, err := putItem(ctx, conn.API(), a.retry, "create user "+userID, &dynamodb.PutItemInput{
		TableName: aws.String(a.cfg.UsersTable),
		Item: map[string]*dynamodb.AttributeValue{
			usersAttrUserID:       {S: aws.String(userID)},
			usersAttrTopic:        {NULL: aws.Bool(true)},
			usersAttrLastFeedTime: {NULL: aws.Bool(true)},
		},
		ConditionExpression: aws.String("attribute_not_exists(" + usersAttrUserID + ")"),
	})
	if err != nil {
		return "", err
	}
	if !applied {
		return "", fmt.Errorf("failed to create user %v: row already exists", userID)
	}
	return "", nil
}

// SetUserTopic records the user's subscription. An empty topic unsubscribes
// the user and purges news older than the purge age from the topic they are
// leaving. Either way the user's feed position resets to now.
func (a *Access) SetUserTopic(ctx context.Context, userID, topic string) error {
	conn, err := a.pool.Get()
	if err != nil {
		return err
	}
	defer conn.Close()

	now := a.now().Unix()

	topicValue := &dynamodb.AttributeValue{NULL: aws.Bool(true)}
	if topic != "" {
		topicValue = &dynamodb.AttributeValue{S: aws.String(topic)}
	}

	old, applied, err := updateItem(ctx, conn.API(), a.retry, "update user "+userID, &dynamodb.UpdateItemInput{
		TableName:        aws.String(a.cfg.UsersTable),
		Key:              userKey(userID),
		UpdateExpression: aws.String("SET " + usersAttrTopic + " = :topic, " + usersAttrLastFeedTime + " = :lftime"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":topic":  topicValue,
			":lftime": {N: aws.String(strconv.FormatInt(now, 10))},
		},
		ReturnValues: aws.String(dynamodb.ReturnValueUpdatedOld),
	})
	if err != nil || !applied {
		return err
	}
	if topic != "" {
		return nil
	}

	// Unsubscribe doubles as garbage collection for the topic left behind.
	prevTopic, _ := stringAttr(old, usersAttrTopic)
	if prevTopic == "" {
		return nil
	}
	return a.purgeOldNews(ctx, conn, prevTopic, now)
}

func (a *Access) purgeOldNews(ctx context.Context, conn *Conn, topic string, now int64) error {
	items, err := queryItems(ctx, conn.API(), a.retry, "query old news for "+topic, &dynamodb.QueryInput{
		TableName:              aws.String(a.cfg.NewsTable),
		KeyConditionExpression: aws.String(newsAttrTopic + " = :topic AND " + newsAttrRangeKey + " < :sk"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":topic": {S: aws.String(topic)},
			":sk":    {B: RangeKey(now-int64(a.cfg.PurgeAge/time.Second), "")},
		},
		ProjectionExpression: aws.String(newsAttrRangeKey),
	})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	requests := make([]*dynamodb.WriteRequest, 0, len(items))
	for _, item := range items {
		rk, ok := item[newsAttrRangeKey]
		if !ok || rk.B == nil {
			continue
		}
		requests = append(requests, &dynamodb.WriteRequest{
			DeleteRequest: &dynamodb.DeleteRequest{
				Key: map[string]*dynamodb.AttributeValue{
					newsAttrTopic:    {S: aws.String(topic)},
					newsAttrRangeKey: {B: rk.B},
				},
			},
		})
	}

	if err := batchWrite(ctx, conn.API(), a.retry, "purge old news for "+topic, a.cfg.NewsTable, requests); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().
		Str("topic", topic).
		Int("count", len(requests)).
		Msg("purged expired news")
	return nil
}

// PostNews appends a news item to the topic, stamped with the current time
// and the posting user. A key collision is surfaced as an error rather than
// silently overwriting another poster's item.
func (a *Access) PostNews(ctx context.Context, topic, userID, news string) error {
	conn, err := a.pool.Get()
	if err != nil {
		return err
	}
	defer conn.Close()

	applied, err := putItem(ctx, conn.API(), a.retry, "post news to "+topic, &dynamodb.PutItemInput{
		TableName: aws.String(a.cfg.NewsTable),
		Item: map[string]*dynamodb.AttributeValue{
			newsAttrTopic:    {S: aws.String(topic)},
			newsAttrRangeKey: {B: RangeKey(a.now().Unix(), userID)},
			newsAttrNews:     {S: aws.String(news)},
		},
		ConditionExpression: aws.String("attribute_not_exists(" + newsAttrTopic + ")"),
	})
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("failed to post news to %v: row already exists", topic)
	}
	return nil
}

// FetchNewsSince returns, in posting order, the news the user has not seen
// yet on their subscribed topic, and advances the user's feed position past
// the returned items. A user with no subscription gets an empty result.
func (a *Access) FetchNewsSince(ctx context.Context, userID string) ([]string, error) {
	conn, err := a.pool.Get()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	item, found, err := getItem(ctx, conn.API(), a.retry, "get user "+userID, &dynamodb.GetItemInput{
		TableName:            aws.String(a.cfg.UsersTable),
		Key:                  userKey(userID),
		ProjectionExpression: aws.String(usersAttrTopic + ", " + usersAttrLastFeedTime),
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("failed to fetch news: user %v not found", userID)
	}
	topic, ok := stringAttr(item, usersAttrTopic)
	if !ok {
		return nil, fmt.Errorf("failed to fetch news for %v: unrecognized row shape", userID)
	}
	if topic == "" {
		return nil, nil
	}

	lastFeedTime := int64(math.MinInt64)
	if n, ok := numberAttr(item, usersAttrLastFeedTime); ok {
		lastFeedTime = n
	}

	items, err := queryItems(ctx, conn.API(), a.retry, "query news for "+topic, &dynamodb.QueryInput{
		TableName:              aws.String(a.cfg.NewsTable),
		KeyConditionExpression: aws.String(newsAttrTopic + " = :topic AND " + newsAttrRangeKey + " >= :sk"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":topic": {S: aws.String(topic)},
			":sk":    {B: RangeKey(lastFeedTime+1, "")},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	news := make([]string, 0, len(items))
	for _, row := range items {
		rk, ok := row[newsAttrRangeKey]
		if !ok || rk.B == nil {
			return nil, fmt.Errorf("failed to fetch news for %v: unrecognized row shape", topic)
		}
		if t := TimeFromRangeKey(rk.B); t > lastFeedTime {
			lastFeedTime = t
		}
		data, ok := stringAttr(row, newsAttrNews)
		if !ok {
			return nil, fmt.Errorf("failed to fetch news for %v: unrecognized row shape", topic)
		}
		news = append(news, data)
	}

	// The position update is conditional on the subscription being unchanged;
	// losing that race to an unsubscribe is harmless, so log and move on.
	_, applied, err := updateItem(ctx, conn.API(), a.retry, "advance feed position for "+userID, &dynamodb.UpdateItemInput{
		TableName:           aws.String(a.cfg.UsersTable),
		Key:                 userKey(userID),
		UpdateExpression:    aws.String("SET " + usersAttrLastFeedTime + " = :lftime"),
		ConditionExpression: aws.String(usersAttrTopic + " = :topic"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":lftime": {N: aws.String(strconv.FormatInt(lastFeedTime, 10))},
			":topic":  {S: aws.String(topic)},
		},
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		zerolog.Ctx(ctx).Warn().
			Str("user_id", userID).
			Str("topic", topic).
			Msg("subscription changed mid-fetch; feed position not advanced")
	}
	return news, nil
}

func userKey(userID string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		usersAttrUserID: {S: aws.String(userID)},
	}
}

// stringAttr reads a string attribute; a NULL attribute reads as "". ok is
// false when the attribute is absent entirely.
func stringAttr(item map[string]*dynamodb.AttributeValue, name string) (string, bool) {
	attr, ok := item[name]
	if !ok {
		return "", false
	}
	if attr.S != nil {
		return *attr.S, true
	}
	return "", true
}

// numberAttr reads an integer attribute; NULL or absent attributes read as
// not ok.
func numberAttr(item map[string]*dynamodb.AttributeValue, name string) (int64, bool) {
	attr, ok := item[name]
	if !ok || attr.N == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(*attr.N, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
