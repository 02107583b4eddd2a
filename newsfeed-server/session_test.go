package newsfeedserver

import (
	"context"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	newsfeedcli "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-cli"
	newsfeedproto "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-proto"
	"github.com/rs/zerolog"
	"github.com/tj/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// fakeStore is an in-memory Store with sequence numbers instead of wall
// time, so delivery order is deterministic in tests.
type fakeStore struct {
	mu    sync.Mutex
	seq   int64
	users map[string]*fakeUser
	news  map[string][]fakeNews

	getOrCreateErr error
	setTopicErr    error
	postErr        error
	fetchErr       error
}

type fakeUser struct {
	topic    string
	lastFeed int64
}

type fakeNews struct {
	seq  int64
	data string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: map[string]*fakeUser{},
		news:  map[string][]fakeNews{},
	}
}

func (f *fakeStore) GetOrCreateUser(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getOrCreateErr != nil {
		return "", f.getOrCreateErr
	}
	user, ok := f.users[userID]
	if !ok {
		user = &fakeUser{}
		f.users[userID] = user
	}
	return user.topic, nil
}

func (f *fakeStore) SetUserTopic(_ context.Context, userID, topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setTopicErr != nil {
		return f.setTopicErr
	}
	f.seq++
	f.users[userID] = &fakeUser{topic: topic, lastFeed: f.seq}
	return nil
}

func (f *fakeStore) PostNews(_ context.Context, topic, _, news string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return f.postErr
	}
	f.seq++
	f.news[topic] = append(f.news[topic], fakeNews{seq: f.seq, data: news})
	return nil
}

func (f *fakeStore) FetchNewsSince(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	user := f.users[userID]
	if user == nil || user.topic == "" {
		return nil, nil
	}
	var out []string
	for _, item := range f.news[user.topic] {
		if item.seq > user.lastFeed {
			out = append(out, item.data)
			user.lastFeed = item.seq
		}
	}
	return out, nil
}

// harness runs the full service over an in-memory gRPC transport.
type harness struct {
	store  *fakeStore
	client newsfeedproto.NewsfeedClient
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := newFakeStore()
	svc := New(store, zerolog.Nop(), newsfeedcli.Metrics{}, 20*time.Millisecond)

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	newsfeedproto.RegisterNewsfeedServer(server, svc)
	go server.Serve(lis)
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.DialContext(context.Background())
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	assert.Nil(t, err)
	t.Cleanup(func() { conn.Close() })

	return &harness{store: store, client: newsfeedproto.NewNewsfeedClient(conn)}
}

func (h *harness) talk(t *testing.T) newsfeedproto.Newsfeed_TalkClient {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	stream, err := h.client.Talk(ctx)
	assert.Nil(t, err)
	return stream
}

func register(t *testing.T, stream newsfeedproto.Newsfeed_TalkClient, userID string) *newsfeedproto.RegisterResponse {
	t.Helper()
	assert.Nil(t, stream.Send(&newsfeedproto.Envelope{
		Type:            newsfeedproto.MsgType_REGISTER_REQUEST,
		RegisterRequest: &newsfeedproto.RegisterRequest{UserId: userID},
	}))
	return recvEnvelope(t, stream, newsfeedproto.MsgType_REGISTER_RESPONSE).GetRegisterResponse()
}

func requestTopic(t *testing.T, stream newsfeedproto.Newsfeed_TalkClient, action newsfeedproto.TopicAction, topic string) *newsfeedproto.TopicResponse {
	t.Helper()
	assert.Nil(t, stream.Send(&newsfeedproto.Envelope{
		Type:         newsfeedproto.MsgType_TOPIC_REQUEST,
		TopicRequest: &newsfeedproto.TopicRequest{Action: action, Topic: topic},
	}))
	return recvEnvelope(t, stream, newsfeedproto.MsgType_TOPIC_RESPONSE).GetTopicResponse()
}

func postNews(t *testing.T, stream newsfeedproto.Newsfeed_TalkClient, news string) *newsfeedproto.PostNewsResponse {
	t.Helper()
	assert.Nil(t, stream.Send(&newsfeedproto.Envelope{
		Type:            newsfeedproto.MsgType_POST_NEWS_REQUEST,
		PostNewsRequest: &newsfeedproto.PostNewsRequest{News: news},
	}))
	return recvEnvelope(t, stream, newsfeedproto.MsgType_POST_NEWS_RESPONSE).GetPostNewsResponse()
}

// recvEnvelope reads until an envelope of the wanted type arrives; pushed
// news may interleave with responses on the same stream.
func recvEnvelope(t *testing.T, stream newsfeedproto.Newsfeed_TalkClient, want newsfeedproto.MsgType) *newsfeedproto.Envelope {
	t.Helper()
	for {
		env, err := stream.Recv()
		assert.Nil(t, err)
		if env.GetType() == want {
			return env
		}
	}
}

func TestRegisterSubscribeReceive(t *testing.T) {
	h := newHarness(t)

	alice := h.talk(t)
	resp := register(t, alice, "alice")
	assert.Equal(t, newsfeedproto.ErrorCode_OK, resp.GetError())
	assert.Equal(t, "", resp.GetTopic())

	topicResp := requestTopic(t, alice, newsfeedproto.TopicAction_SUBSCRIBE, "sports")
	assert.Equal(t, newsfeedproto.ErrorCode_OK, topicResp.GetError())
	assert.Equal(t, newsfeedproto.TopicAction_SUBSCRIBE, topicResp.GetAction())

	bob := h.talk(t)
	assert.Equal(t, newsfeedproto.ErrorCode_OK, register(t, bob, "bob").GetError())
	assert.Equal(t, newsfeedproto.ErrorCode_OK, requestTopic(t, bob, newsfeedproto.TopicAction_SUBSCRIBE, "sports").GetError())
	assert.Equal(t, newsfeedproto.ErrorCode_OK, postNews(t, bob, "hello").GetError())

	news := recvEnvelope(t, alice, newsfeedproto.MsgType_NEWS).GetNews()
	assert.Equal(t, "hello", news.GetData())
}

func TestPostWithoutTopic(t *testing.T) {
	h := newHarness(t)

	stream := h.talk(t)
	assert.Equal(t, newsfeedproto.ErrorCode_OK, register(t, stream, "alice").GetError())
	assert.Equal(t, newsfeedproto.ErrorCode_INTERNAL, postNews(t, stream, "x").GetError())

	// the session is still alive
	assert.Equal(t, newsfeedproto.ErrorCode_OK,
		requestTopic(t, stream, newsfeedproto.TopicAction_SUBSCRIBE, "sports").GetError())
}

func TestDoubleRegistration(t *testing.T) {
	h := newHarness(t)

	stream := h.talk(t)
	assert.Equal(t, newsfeedproto.ErrorCode_OK, register(t, stream, "alice").GetError())
	assert.Equal(t, newsfeedproto.ErrorCode_INTERNAL, register(t, stream, "alice").GetError())

	// the session is still alive
	assert.Equal(t, newsfeedproto.ErrorCode_OK,
		requestTopic(t, stream, newsfeedproto.TopicAction_SUBSCRIBE, "sports").GetError())
}

func TestUnregisteredRequests(t *testing.T) {
	h := newHarness(t)

	stream := h.talk(t)
	assert.Equal(t, newsfeedproto.ErrorCode_NOT_REGISTERED,
		requestTopic(t, stream, newsfeedproto.TopicAction_SUBSCRIBE, "sports").GetError())
	assert.Equal(t, newsfeedproto.ErrorCode_NOT_REGISTERED, postNews(t, stream, "x").GetError())
}

func TestTopicValidation(t *testing.T) {
	h := newHarness(t)

	stream := h.talk(t)
	assert.Equal(t, newsfeedproto.ErrorCode_OK, register(t, stream, "alice").GetError())

	// subscribe needs a topic, unsubscribe must not carry one
	assert.Equal(t, newsfeedproto.ErrorCode_INTERNAL,
		requestTopic(t, stream, newsfeedproto.TopicAction_SUBSCRIBE, "").GetError())
	assert.Equal(t, newsfeedproto.ErrorCode_INTERNAL,
		requestTopic(t, stream, newsfeedproto.TopicAction_UNSUBSCRIBE, "sports").GetError())

	assert.Equal(t, newsfeedproto.ErrorCode_OK,
		requestTopic(t, stream, newsfeedproto.TopicAction_UNSUBSCRIBE, "").GetError())
}

func TestStoreErrorsKeepSessionOpen(t *testing.T) {
	h := newHarness(t)

	stream := h.talk(t)
	h.store.getOrCreateErr = context.DeadlineExceeded
	assert.Equal(t, newsfeedproto.ErrorCode_INTERNAL, register(t, stream, "alice").GetError())

	h.store.getOrCreateErr = nil
	assert.Equal(t, newsfeedproto.ErrorCode_OK, register(t, stream, "alice").GetError())
}

func TestProtocolViolations(t *testing.T) {
	expectStatus := func(t *testing.T, stream newsfeedproto.Newsfeed_TalkClient, code codes.Code) {
		t.Helper()
		_, err := stream.Recv()
		assert.Error(t, err)
		assert.Equal(t, code, status.Code(err))
	}

	t.Run("response-typed envelope from the client", func(t *testing.T) {
		h := newHarness(t)
		stream := h.talk(t)
		assert.Nil(t, stream.Send(&newsfeedproto.Envelope{
			Type:             newsfeedproto.MsgType_REGISTER_RESPONSE,
			RegisterResponse: &newsfeedproto.RegisterResponse{},
		}))
		expectStatus(t, stream, codes.InvalidArgument)
	})

	t.Run("unknown envelope type", func(t *testing.T) {
		h := newHarness(t)
		stream := h.talk(t)
		assert.Nil(t, stream.Send(&newsfeedproto.Envelope{Type: newsfeedproto.MsgType(42)}))
		expectStatus(t, stream, codes.Unimplemented)
	})

	t.Run("missing payload", func(t *testing.T) {
		h := newHarness(t)
		stream := h.talk(t)
		assert.Nil(t, stream.Send(&newsfeedproto.Envelope{Type: newsfeedproto.MsgType_REGISTER_REQUEST}))
		expectStatus(t, stream, codes.InvalidArgument)
	})
}

func TestWriterSurvivesFetchErrors(t *testing.T) {
	h := newHarness(t)

	stream := h.talk(t)
	assert.Equal(t, newsfeedproto.ErrorCode_OK, register(t, stream, "alice").GetError())
	assert.Equal(t, newsfeedproto.ErrorCode_OK,
		requestTopic(t, stream, newsfeedproto.TopicAction_SUBSCRIBE, "sports").GetError())

	h.store.mu.Lock()
	h.store.fetchErr = context.DeadlineExceeded
	h.store.mu.Unlock()
	time.Sleep(60 * time.Millisecond) // a few failed polls

	h.store.mu.Lock()
	h.store.fetchErr = nil
	h.store.mu.Unlock()
	assert.Equal(t, newsfeedproto.ErrorCode_OK, postNews(t, stream, "still here").GetError())

	news := recvEnvelope(t, stream, newsfeedproto.MsgType_NEWS).GetNews()
	assert.Equal(t, "still here", news.GetData())
}

func TestCleanClose(t *testing.T) {
	h := newHarness(t)

	stream := h.talk(t)
	assert.Equal(t, newsfeedproto.ErrorCode_OK, register(t, stream, "alice").GetError())
	assert.Nil(t, stream.CloseSend())

	// an OK server status surfaces as plain EOF on the client side
	_, err := stream.Recv()
	assert.Equal(t, io.EOF, err)
}
