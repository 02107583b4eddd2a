package newsfeedserver

import (
	"context"
	"fmt"
	"net"
	"time"

	newsfeedproto "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-proto"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
)

// Server binds the stream service to a listening endpoint and manages its
// lifecycle.
type Server struct {
	addr   string
	logger zerolog.Logger
	grpc   *grpc.Server
}

// NewServer registers svc on a fresh gRPC server bound to addr when
// ListenAndServe runs.
func NewServer(addr string, svc *Service, logger zerolog.Logger) *Server {
	g := grpc.NewServer()
	newsfeedproto.RegisterNewsfeedServer(g, svc)
	return &Server{
		addr:   addr,
		logger: logger,
		grpc:   g,
	}
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// streams before returning.
func (s *Server) ListenAndServe(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind %v: %w", s.addr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve is ListenAndServe over a caller-supplied listener.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errs := make(chan error, 1)
	go func() {
		errs <- s.grpc.Serve(lis)
	}()
	s.logger.Info().Str("addr", lis.Addr().String()).Msg("grpc server listening")

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("draining grpc server")
		s.shutdown()
		<-errs
		return nil
	case err := <-errs:
		return err
	}
}

// drainTimeout bounds the graceful drain: Talk streams are long-lived, so a
// connected client would otherwise hold shutdown open indefinitely.
const drainTimeout = 10 * time.Second

func (s *Server) shutdown() {
	drained := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(drained)
	}()

	select {
	case <-drained:
	case <-time.After(drainTimeout):
		s.logger.Warn().Msg("drain timeout; closing remaining streams")
		s.grpc.Stop()
	}
}
