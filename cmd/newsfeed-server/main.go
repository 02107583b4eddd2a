package main

import (
	"log"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	newsfeedcli "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-cli"
	newsfeedddb "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-ddb"
	newsfeedrest "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-rest"
	newsfeedserver "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-server"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var service = newsfeedcli.NewService("newsfeed-server")

func main() {
	app := newsfeedcli.App(
		service,
		action,
		slices.Concat(
			newsfeedcli.CommonFlags,
			newsfeedcli.ServerFlags,
		)...,
	)
	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func action(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newsfeedcli.Logger(service)
	logger.Info().Str("commit", newsfeedcli.CommitHash()).Str("env", newsfeedcli.Opts.Env).Msg("starting")

	access, err := newsfeedddb.Build()
	if err != nil {
		return err
	}

	if newsfeedcli.Opts.EnsureTables {
		if err := newsfeedddb.EnsureTables(ctx, access); err != nil {
			return err
		}
	}

	var cw cloudwatchiface.CloudWatchAPI
	if newsfeedcli.Opts.Metrics {
		s, err := newsfeedddb.AWSSession()
		if err != nil {
			return err
		}
		cw = cloudwatch.New(s)
	}
	metrics := newsfeedcli.NewMetrics(service, cw)

	svc := newsfeedserver.New(
		access,
		logger,
		metrics,
		time.Duration(newsfeedcli.Opts.NewsPollingIntervalSecs)*time.Second,
	)
	server := newsfeedserver.NewServer(newsfeedcli.Opts.ServiceEndpoint, svc, logger)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.ListenAndServe(ctx)
	})
	if newsfeedcli.Opts.OpsPort > 0 {
		group.Go(func() error {
			return newsfeedrest.Webserver(ctx, service, newsfeedcli.Opts.OpsPort, newsfeedrest.Routes(service, access))
		})
	}
	return group.Wait()
}
