package newsfeedclient

import (
	"strconv"
	"strings"
	"time"
)

type command struct {
	verb string
	arg  string
}

// parseCommand splits a REPL line into a lowercase verb and its argument.
// The argument keeps its case: topics and news payloads are user data.
func parseCommand(line string) command {
	line = strings.TrimSpace(line)
	verb, arg, _ := strings.Cut(line, " ")
	return command{
		verb: strings.ToLower(verb),
		arg:  strings.TrimSpace(arg),
	}
}

const replHelp = "Available commands are:\n\n" +
	"\tsubscribe new_topic_name\n" +
	"\tunsubscribe\n" +
	"\tpost news_content\n" +
	"\treceive for_seconds\n" +
	"\thelp\n" +
	"\tquit"

// RunREPL registers userID and then serves console commands until quit, end
// of input, or a broken conversation.
func RunREPL(client *Client, console *Console, userID string) error {
	if err := client.Register(userID); err != nil {
		return err
	}

	for client.IsOkay() {
		line, ok := console.ReadLine()
		if !ok {
			break
		}

		cmd := parseCommand(line)
		switch cmd.verb {
		case "":
			// blank line

		case "subscribe":
			if cmd.arg == "" {
				console.Print("subscribe needs a topic name")
				continue
			}
			if err := client.ChangeTopic(cmd.arg); err != nil {
				return err
			}

		case "unsubscribe":
			if err := client.ChangeTopic(""); err != nil {
				return err
			}

		case "post":
			if cmd.arg == "" {
				console.Print("post needs some news content")
				continue
			}
			if err := client.PostNews(cmd.arg); err != nil {
				return err
			}

		case "receive":
			secs, err := strconv.Atoi(cmd.arg)
			if err != nil || secs <= 0 {
				console.Print("receive needs a positive number of seconds")
				continue
			}
			console.FlushFor(time.Duration(secs) * time.Second)

		case "help":
			console.Print(replHelp)

		case "quit":
			return nil

		default:
			console.Print("unknown action (or wrong syntax)!")
			console.Print(replHelp)
		}
	}
	return nil
}
