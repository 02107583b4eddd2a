package newsfeedserver

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	newsfeedcli "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-cli"
	newsfeedproto "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-proto"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Store is the slice of the data layer a session needs.
type Store interface {
	GetOrCreateUser(ctx context.Context, userID string) (string, error)
	SetUserTopic(ctx context.Context, userID, topic string) error
	PostNews(ctx context.Context, topic, userID, news string) error
	FetchNewsSince(ctx context.Context, userID string) ([]string, error)
}

// session owns one bidirectional stream: a reader loop that drives the
// request state machine, and a writer loop, started after the first
// successful registration, that polls the store and pushes news envelopes.
// The two loops run concurrently; sendMu serializes their envelope writes
// because the stream forbids concurrent sends.
type session struct {
	stream  newsfeedproto.Newsfeed_TalkServer
	store   Store
	logger  zerolog.Logger
	metrics newsfeedcli.Metrics
	poll    time.Duration

	sendMu sync.Mutex

	// userID transitions empty -> set exactly once, before the writer loop
	// starts; the writer reads it without further synchronization.
	userID string
	topic  string

	endOfConnection atomic.Bool
	writerDone      chan struct{}
	writerStatus    *status.Status
}

func newSession(stream newsfeedproto.Newsfeed_TalkServer, store Store, logger zerolog.Logger, metrics newsfeedcli.Metrics, poll time.Duration) *session {
	return &session{
		stream:  stream,
		store:   store,
		logger:  logger,
		metrics: metrics,
		poll:    poll,
	}
}

// run is the reader loop. It returns the session's terminal status: the
// reader's own error when the reader failed, otherwise whatever the writer
// loop ended with.
func (s *session) run(ctx context.Context) error {
	readerStatus := status.New(codes.OK, "")

	for {
		if st, exited := s.writerExited(); exited {
			readerStatus = st
			break
		}

		env, err := s.stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			readerStatus = status.Convert(err)
			break
		}

		if st := s.dispatch(ctx, env); st != nil {
			readerStatus = st
			break
		}
	}

	return s.terminate(readerStatus)
}

func (s *session) terminate(readerStatus *status.Status) error {
	s.endOfConnection.Store(true)

	writerStatus := status.New(codes.OK, "")
	if s.writerDone != nil {
		<-s.writerDone
		writerStatus = s.writerStatus
	}

	if readerStatus.Code() != codes.OK {
		return readerStatus.Err()
	}
	return writerStatus.Err()
}

// writerExited reports, without blocking, whether the writer loop has ended
// on its own. A self-terminated writer means the stream is broken, so the
// reader stops too.
func (s *session) writerExited() (*status.Status, bool) {
	if s.writerDone == nil {
		return nil, false
	}
	select {
	case <-s.writerDone:
		return s.writerStatus, true
	default:
		return nil, false
	}
}

// dispatch handles one inbound envelope. A nil return keeps the session
// alive; a non-nil status terminates it.
func (s *session) dispatch(ctx context.Context, env *newsfeedproto.Envelope) *status.Status {
	defer s.metrics.Timing(ctx, newsfeedcli.ResponseTimeMetric, time.Now(), map[newsfeedcli.DimensionName]string{
		newsfeedcli.OperationNameDimension: env.GetType().String(),
	})

	switch env.GetType() {
	case newsfeedproto.MsgType_REGISTER_REQUEST:
		req := env.GetRegisterRequest()
		if req == nil {
			return status.New(codes.InvalidArgument, "register_request envelope without payload")
		}
		return s.handleRegister(ctx, req)

	case newsfeedproto.MsgType_TOPIC_REQUEST:
		req := env.GetTopicRequest()
		if req == nil {
			return status.New(codes.InvalidArgument, "topic_request envelope without payload")
		}
		return s.handleTopic(ctx, req)

	case newsfeedproto.MsgType_POST_NEWS_REQUEST:
		req := env.GetPostNewsRequest()
		if req == nil {
			return status.New(codes.InvalidArgument, "post_news_request envelope without payload")
		}
		return s.handlePostNews(ctx, req)

	case newsfeedproto.MsgType_REGISTER_RESPONSE,
		newsfeedproto.MsgType_TOPIC_RESPONSE,
		newsfeedproto.MsgType_POST_NEWS_RESPONSE,
		newsfeedproto.MsgType_NEWS:
		return status.New(codes.InvalidArgument, fmt.Sprintf("%v is a server-to-client envelope", env.GetType()))

	default:
		return status.New(codes.Unimplemented, fmt.Sprintf("unknown envelope type %v", env.GetType()))
	}
}

func (s *session) handleRegister(ctx context.Context, req *newsfeedproto.RegisterRequest) *status.Status {
	if s.userID != "" {
		s.logger.Warn().Str("user_id", s.userID).Msg("repeated registration on one session")
		return s.sendRegisterResponse(newsfeedproto.ErrorCode_INTERNAL, "")
	}

	topic, err := s.store.GetOrCreateUser(ctx, req.GetUserId())
	if err != nil {
		s.logger.Err(err).Str("user_id", req.GetUserId()).Msg("registration failed")
		return s.sendRegisterResponse(newsfeedproto.ErrorCode_INTERNAL, "")
	}

	s.userID = req.GetUserId()
	s.topic = topic
	s.logger.Info().Str("user_id", s.userID).Str("topic", topic).Msg("registered")

	if st := s.sendRegisterResponse(newsfeedproto.ErrorCode_OK, topic); st != nil {
		return st
	}
	s.startWriter(ctx)
	return nil
}

func (s *session) handleTopic(ctx context.Context, req *newsfeedproto.TopicRequest) *status.Status {
	if s.userID == "" {
		return s.sendTopicResponse(newsfeedproto.ErrorCode_NOT_REGISTERED, req.GetAction())
	}

	// subscribe carries the topic; unsubscribe must not
	subscribe := req.GetAction() == newsfeedproto.TopicAction_SUBSCRIBE
	if subscribe == (req.GetTopic() == "") {
		return s.sendTopicResponse(newsfeedproto.ErrorCode_INTERNAL, req.GetAction())
	}

	topic := ""
	if subscribe {
		topic = req.GetTopic()
	}
	if err := s.store.SetUserTopic(ctx, s.userID, topic); err != nil {
		s.logger.Err(err).Str("user_id", s.userID).Str("topic", topic).Msg("topic change failed")
		return s.sendTopicResponse(newsfeedproto.ErrorCode_INTERNAL, req.GetAction())
	}

	s.topic = topic
	return s.sendTopicResponse(newsfeedproto.ErrorCode_OK, req.GetAction())
}

func (s *session) handlePostNews(ctx context.Context, req *newsfeedproto.PostNewsRequest) *status.Status {
	if s.userID == "" {
		return s.sendPostNewsResponse(newsfeedproto.ErrorCode_NOT_REGISTERED)
	}
	if s.topic == "" {
		return s.sendPostNewsResponse(newsfeedproto.ErrorCode_INTERNAL)
	}

	if err := s.store.PostNews(ctx, s.topic, s.userID, req.GetNews()); err != nil {
		s.logger.Err(err).Str("user_id", s.userID).Str("topic", s.topic).Msg("post failed")
		return s.sendPostNewsResponse(newsfeedproto.ErrorCode_INTERNAL)
	}
	return s.sendPostNewsResponse(newsfeedproto.ErrorCode_OK)
}

// startWriter launches the news-delivery loop. Called at most once per
// session, immediately after the first successful registration response.
func (s *session) startWriter(ctx context.Context) {
	s.writerDone = make(chan struct{})
	s.writerStatus = status.New(codes.OK, "")

	go func() {
		defer close(s.writerDone)

		for !s.endOfConnection.Load() {
			news, err := s.store.FetchNewsSince(ctx, s.userID)
			if err != nil {
				// store hiccups must not disconnect a healthy reader
				s.logger.Err(err).Str("user_id", s.userID).Msg("news fetch failed")
			}
			for _, item := range news {
				if st := s.send(&newsfeedproto.Envelope{
					Type: newsfeedproto.MsgType_NEWS,
					News: &newsfeedproto.News{Data: item},
				}); st != nil {
					s.writerStatus = st
					return
				}
				s.metrics.Event(ctx, newsfeedcli.NewsDeliveredMetric)
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(s.poll):
			}
		}
	}()
}

func (s *session) sendRegisterResponse(code newsfeedproto.ErrorCode, topic string) *status.Status {
	return s.send(&newsfeedproto.Envelope{
		Type:             newsfeedproto.MsgType_REGISTER_RESPONSE,
		RegisterResponse: &newsfeedproto.RegisterResponse{Error: code, Topic: topic},
	})
}

func (s *session) sendTopicResponse(code newsfeedproto.ErrorCode, action newsfeedproto.TopicAction) *status.Status {
	return s.send(&newsfeedproto.Envelope{
		Type:          newsfeedproto.MsgType_TOPIC_RESPONSE,
		TopicResponse: &newsfeedproto.TopicResponse{Error: code, Action: action},
	})
}

func (s *session) sendPostNewsResponse(code newsfeedproto.ErrorCode) *status.Status {
	return s.send(&newsfeedproto.Envelope{
		Type:             newsfeedproto.MsgType_POST_NEWS_RESPONSE,
		PostNewsResponse: &newsfeedproto.PostNewsResponse{Error: code},
	})
}

// send writes one envelope under the stream mutex. A failed write is
// terminal for the whole session.
func (s *session) send(env *newsfeedproto.Envelope) *status.Status {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if err := s.stream.Send(env); err != nil {
		return status.New(codes.Unknown, fmt.Sprintf("stream write failed: %v", err))
	}
	return nil
}
