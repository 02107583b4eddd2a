package newsfeedddb

// Attribute names are fixed by the store schema and shared with every other
// deployment of the service, so they are not configurable.
const (
	usersAttrUserID       = "user_id"
	usersAttrTopic        = "topic"
	usersAttrLastFeedTime = "last_feed_time"

	newsAttrTopic    = "topic"
	newsAttrRangeKey = "bin_time_based_sk"
	newsAttrNews     = "news"
)

// UserRecord models a row of the topic-by-user table. Topic and
// LastFeedTime are nil until the user subscribes for the first time.
type UserRecord struct {
	UserID       string  `dynamodbav:"user_id" ddb:"hash"`
	Topic        *string `dynamodbav:"topic"`
	LastFeedTime *int64  `dynamodbav:"last_feed_time"`
}

// NewsRecord models a row of the news-by-topic table.
type NewsRecord struct {
	Topic    string `dynamodbav:"topic" ddb:"hash"`
	RangeKey []byte `dynamodbav:"bin_time_based_sk" ddb:"range"`
	News     string `dynamodbav:"news"`
}

// UsersTableName returns the topic-by-user table name for the given
// environment.
func UsersTableName(env string) string {
	return env + "-newsfeed--topic-by-user"
}

// NewsTableName returns the news-by-topic table name for the given
// environment.
func NewsTableName(env string) string {
	return env + "-newsfeed--news-by-topic"
}
