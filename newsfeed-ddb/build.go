package newsfeedddb

import (
	"context"
	"fmt"
	"time"

	newsfeedcli "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-cli"
	newsfeedsecret "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-secret"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/savaki/ddb"
)

// storeCredentials is the shape of the access-key secret held in Secrets
// Manager.
type storeCredentials struct {
	AccessKeyID string `json:"accessKeyId"`
	SecretKey   string `json:"secretKey"`
}

// AWSSession builds a session from the common flags. Credentials resolve in
// order: Secrets Manager secret, static access key from flags, then the
// default provider chain.
func AWSSession() (*session.Session, error) {
	config := aws.NewConfig().WithRegion(newsfeedcli.Opts.AWSRegion)

	switch {
	case newsfeedcli.Opts.AWSSecretName != "":
		base, err := session.NewSession(aws.NewConfig().WithRegion(newsfeedcli.Opts.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to build aws session: %w", err)
		}
		var creds storeCredentials
		if err := newsfeedsecret.LoadSecret(base, newsfeedcli.Opts.AWSSecretName, &creds); err != nil {
			return nil, err
		}
		config = config.WithCredentials(credentials.NewStaticCredentials(creds.AccessKeyID, creds.SecretKey, ""))

	case newsfeedcli.Opts.AWSAccessKeyID != "":
		config = config.WithCredentials(credentials.NewStaticCredentials(newsfeedcli.Opts.AWSAccessKeyID, newsfeedcli.Opts.AWSSecretKey, ""))
	}

	s, err := session.NewSession(config)
	if err != nil {
		return nil, fmt.Errorf("failed to build aws session: %w", err)
	}
	return s, nil
}

// Build wires the full data layer from the common flags: a pooled store
// client plus the access facade over the two newsfeed tables.
func Build() (*Access, error) {
	s, err := AWSSession()
	if err != nil {
		return nil, err
	}

	pool := NewPool(func() (dynamodbiface.DynamoDBAPI, error) {
		return DynamoDBAPI(s)
	})

	return NewAccess(pool, Config{
		UsersTable:    UsersTableName(newsfeedcli.Opts.Env),
		NewsTable:     NewsTableName(newsfeedcli.Opts.Env),
		MaxAttempts:   newsfeedcli.Opts.DBReqMaxRetryCount,
		RetryInterval: time.Duration(newsfeedcli.Opts.DBReqRetryIntervalMs) * time.Millisecond,
		PurgeAge:      time.Duration(newsfeedcli.Opts.DBOldNewsPurgeAgeSecs) * time.Second,
	}), nil
}

// EnsureTables creates the newsfeed tables when they do not exist yet.
// Intended for dev and test environments; production tables are managed by
// infrastructure.
func EnsureTables(ctx context.Context, a *Access) error {
	conn, err := a.pool.Get()
	if err != nil {
		return err
	}
	defer conn.Close()

	client := ddb.New(conn.API())
	tables := []*ddb.Table{
		client.MustTable(a.cfg.UsersTable, UserRecord{}),
		client.MustTable(a.cfg.NewsTable, NewsRecord{}),
	}
	for _, table := range tables {
		if err := table.CreateTableIfNotExists(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}
