package main

import (
	"fmt"
	"log"
	"os"
	"time"

	newsfeedcli "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-cli"
	newsfeedclient "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-client"
	"github.com/urfave/cli/v2"
)

var service = newsfeedcli.NewService("newsfeed-client")

var opts struct {
	endpoint string
	userID   string
}

func main() {
	app := newsfeedcli.App(
		service,
		action,
		newsfeedcli.StringFlag("host", "service endpoint to connect to", &opts.endpoint, "localhost:8080"),
		newsfeedcli.StringFlag("user-id", "identity to register under", &opts.userID, ""),
	)
	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func action(c *cli.Context) error {
	if opts.userID == "" {
		return fmt.Errorf("a user id is required (--user-id)")
	}

	console := newsfeedclient.NewConsole(os.Stdin, os.Stdout)
	console.Print("connecting to %v as '%v'", opts.endpoint, opts.userID)

	logger := newsfeedcli.Logger(service)
	client, err := newsfeedclient.Dial(opts.endpoint, console, logger)
	if err != nil {
		return err
	}

	onNews := func(news string) {
		console.Enqueue("NEWS @(%v): %v", time.Now().Format("2006-Jan-02 15:04:05"), news)
	}
	if err := client.StartTalk(c.Context, onNews); err != nil {
		return err
	}

	replErr := newsfeedclient.RunREPL(client, console, opts.userID)

	console.FlushFor(time.Second)
	console.Print("client application is closing")

	if err := client.Stop(); replErr == nil {
		return err
	}
	return replErr
}
