package newsfeedclient

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	newsfeedproto "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-proto"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client drives one Talk stream: requests go out from the REPL goroutine,
// responses and pushed news are handled on a receiver goroutine that prints
// through the console.
type Client struct {
	conn    *grpc.ClientConn
	console *Console
	logger  zerolog.Logger
	onNews  func(news string)

	sendMu sync.Mutex
	stream newsfeedproto.Newsfeed_TalkClient

	cancel   context.CancelFunc
	recvDone chan struct{}
	recvErr  error
}

// Dial connects to the service endpoint. The stream is not opened until
// StartTalk.
func Dial(endpoint string, console *Console, logger zerolog.Logger, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %v: %w", endpoint, err)
	}
	return &Client{
		conn:    conn,
		console: console,
		logger:  logger,
	}, nil
}

// StartTalk opens the stream and launches the receiver. onNews runs on the
// receiver goroutine for every pushed news payload.
func (c *Client) StartTalk(ctx context.Context, onNews func(news string)) error {
	ctx, cancel := context.WithCancel(ctx)
	stream, err := newsfeedproto.NewNewsfeedClient(c.conn).Talk(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to open stream: %w", err)
	}

	c.stream = stream
	c.cancel = cancel
	c.onNews = onNews
	c.recvDone = make(chan struct{})
	go c.receive()
	return nil
}

// IsOkay reports whether the conversation is still alive.
func (c *Client) IsOkay() bool {
	if c.recvDone == nil {
		return false
	}
	select {
	case <-c.recvDone:
		return false
	default:
		return true
	}
}

// Register sends the registration request for userID.
func (c *Client) Register(userID string) error {
	return c.send(&newsfeedproto.Envelope{
		Type:            newsfeedproto.MsgType_REGISTER_REQUEST,
		RegisterRequest: &newsfeedproto.RegisterRequest{UserId: userID},
	})
}

// ChangeTopic subscribes to topic, or unsubscribes when topic is empty.
func (c *Client) ChangeTopic(topic string) error {
	action := newsfeedproto.TopicAction_UNSUBSCRIBE
	if topic != "" {
		action = newsfeedproto.TopicAction_SUBSCRIBE
	}
	return c.send(&newsfeedproto.Envelope{
		Type:         newsfeedproto.MsgType_TOPIC_REQUEST,
		TopicRequest: &newsfeedproto.TopicRequest{Action: action, Topic: topic},
	})
}

// PostNews publishes news to the currently subscribed topic.
func (c *Client) PostNews(news string) error {
	return c.send(&newsfeedproto.Envelope{
		Type:            newsfeedproto.MsgType_POST_NEWS_REQUEST,
		PostNewsRequest: &newsfeedproto.PostNewsRequest{News: news},
	})
}

// Stop closes the sending half, waits for the server to finish the stream,
// and tears the connection down.
func (c *Client) Stop() error {
	var err error
	if c.stream != nil {
		c.sendMu.Lock()
		err = c.stream.CloseSend()
		c.sendMu.Unlock()

		select {
		case <-c.recvDone:
		case <-time.After(5 * time.Second):
			c.logger.Warn().Msg("server did not finish the stream; dropping it")
			c.cancel()
			<-c.recvDone
		}
		if err == nil && c.recvErr != nil && c.recvErr != io.EOF {
			err = c.recvErr
		}
	}
	if c.cancel != nil {
		c.cancel()
	}
	if closeErr := c.conn.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (c *Client) send(env *newsfeedproto.Envelope) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.stream == nil {
		return fmt.Errorf("conversation not started")
	}
	if err := c.stream.Send(env); err != nil {
		return fmt.Errorf("failed to send %v: %w", env.GetType(), err)
	}
	return nil
}

func (c *Client) receive() {
	defer close(c.recvDone)

	for {
		env, err := c.stream.Recv()
		if err != nil {
			c.recvErr = err
			if err != io.EOF {
				c.console.Enqueue("error! connection ended: %v", err)
			}
			return
		}
		c.handle(env)
	}
}

func (c *Client) handle(env *newsfeedproto.Envelope) {
	switch env.GetType() {
	case newsfeedproto.MsgType_REGISTER_RESPONSE:
		resp := env.GetRegisterResponse()
		if resp == nil {
			c.console.Enqueue("error! response payload missing for %v", env.GetType())
			return
		}
		if resp.GetError() != newsfeedproto.ErrorCode_OK {
			c.console.Enqueue("error! registration failed: %v", errorMessage(resp.GetError()))
			return
		}
		c.console.Enqueue("registration successful: user is currently subscribing to '%v'", resp.GetTopic())

	case newsfeedproto.MsgType_TOPIC_RESPONSE:
		resp := env.GetTopicResponse()
		if resp == nil {
			c.console.Enqueue("error! response payload missing for %v", env.GetType())
			return
		}
		switch {
		case resp.GetError() != newsfeedproto.ErrorCode_OK:
			c.console.Enqueue("error! topic change failed: %v", errorMessage(resp.GetError()))
		case resp.GetAction() == newsfeedproto.TopicAction_SUBSCRIBE:
			c.console.Enqueue("subscribed successfully to new topic")
		default:
			c.console.Enqueue("unsubscribed successfully from topic\nyou are currently subscribing to NO topics and will NOT receive any news")
		}

	case newsfeedproto.MsgType_POST_NEWS_RESPONSE:
		resp := env.GetPostNewsResponse()
		if resp == nil {
			c.console.Enqueue("error! response payload missing for %v", env.GetType())
			return
		}
		if resp.GetError() != newsfeedproto.ErrorCode_OK {
			c.console.Enqueue("error! post failed: %v", errorMessage(resp.GetError()))
		}

	case newsfeedproto.MsgType_NEWS:
		news := env.GetNews()
		if news == nil {
			c.console.Enqueue("error! response payload missing for %v", env.GetType())
			return
		}
		if c.onNews != nil {
			c.onNews(news.GetData())
		}

	default:
		c.console.Enqueue("error! received an unexpected envelope: %v", env.GetType())
	}
}

func errorMessage(code newsfeedproto.ErrorCode) string {
	switch code {
	case newsfeedproto.ErrorCode_NOT_REGISTERED:
		return "server refused request because the user is not registered"
	case newsfeedproto.ErrorCode_INTERNAL:
		return "server internal error"
	default:
		return fmt.Sprintf("server replied with unknown error code %v", code)
	}
}
