package newsfeedserver

import (
	"time"

	newsfeedcli "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-cli"
	newsfeedproto "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-proto"
	"github.com/rs/zerolog"
)

// Service accepts Talk streams and hands each one to a fresh session.
type Service struct {
	newsfeedproto.UnimplementedNewsfeedServer

	store   Store
	logger  zerolog.Logger
	metrics newsfeedcli.Metrics
	poll    time.Duration
}

// New builds the stream service. poll is the writer-loop delivery period.
func New(store Store, logger zerolog.Logger, metrics newsfeedcli.Metrics, poll time.Duration) *Service {
	if poll <= 0 {
		poll = 5 * time.Second
	}
	return &Service{
		store:   store,
		logger:  logger,
		metrics: metrics,
		poll:    poll,
	}
}

// Talk runs one session for the lifetime of the stream.
func (s *Service) Talk(stream newsfeedproto.Newsfeed_TalkServer) error {
	ctx := s.logger.WithContext(stream.Context())
	s.metrics.Event(ctx, newsfeedcli.SessionsMetric)
	s.logger.Debug().Msg("session opened")

	err := newSession(stream, s.store, s.logger, s.metrics, s.poll).run(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("session closed")
	} else {
		s.logger.Debug().Msg("session closed")
	}
	return err
}
