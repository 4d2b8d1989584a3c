package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/duplex/schema"
	"github.com/viant/duplex/transport"
)

// fakeTransport records sends and exposes knobs for scripting failures; tests
// drive lifecycle notifications through the channel's handler methods.
type fakeTransport struct {
	mu      sync.Mutex
	handler transport.Handler
	sent    [][]byte
	sendErr error
	opened  bool
	closed  bool
}

var _ transport.Transport = (*fakeTransport)(nil)

func (t *fakeTransport) Open(ctx context.Context) (transport.Transport, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opened = true
	return t, nil
}

func (t *fakeTransport) Send(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent = append(t.sent, append([]byte(nil), data...))
	return nil
}

func (t *fakeTransport) Subscribe(handler transport.Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = handler
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *fakeTransport) failSends(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendErr = err
}

func (t *fakeTransport) sentCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}

func (t *fakeTransport) sentAt(i int) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sent[i]
}

func newTestChannel(t *testing.T, options ...Option) (*Channel, *fakeTransport) {
	ft := &fakeTransport{}
	ch, err := New(ft, options...)
	require.NoError(t, err)
	return ch, ft
}

func reply(id uint32, value string) []byte {
	return []byte(fmt.Sprintf(`{"id":%d,"value":%q}`, id, value))
}

func TestNew(t *testing.T) {
	ch, ft := newTestChannel(t)
	assert.True(t, ft.opened)
	assert.Equal(t, transport.Handler(ch), ft.handler)
	assert.Equal(t, DefaultTimeout, ch.Timeout())

	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoTransport)
}

func TestIssue_SendsEnvelope(t *testing.T) {
	ch, ft := newTestChannel(t)
	call := ch.Get(map[string]string{"uri": "/hello"}, WithConfig(map[string]int{"depth": 2}))
	require.Equal(t, 1, ft.sentCount())

	request, err := schema.DecodeRequest(ft.sentAt(0))
	require.NoError(t, err)
	assert.Equal(t, schema.MethodGet, request.Method)
	assert.Equal(t, call.Envelope().Id, request.Id)
	assert.NotZero(t, request.Id)
	assert.JSONEq(t, `{"uri":"/hello"}`, string(request.Data))
	assert.JSONEq(t, `{"depth":2}`, string(request.Config))
}

func TestVerbMethods(t *testing.T) {
	ch, ft := newTestChannel(t)
	calls := []struct {
		method string
		issue  func(payload any, options ...CallOption) *Call
	}{
		{schema.MethodGet, ch.Get},
		{schema.MethodHead, ch.Head},
		{schema.MethodPost, ch.Post},
		{schema.MethodPut, ch.Put},
		{schema.MethodPatch, ch.Patch},
		{schema.MethodDelete, ch.Delete},
	}
	for i, testCase := range calls {
		testCase.issue("payload")
		request, err := schema.DecodeRequest(ft.sentAt(i))
		require.NoError(t, err)
		assert.Equal(t, testCase.method, request.Method)
	}
}

func TestIssue_InvalidMethod(t *testing.T) {
	ch, _ := newTestChannel(t)
	_, err := ch.Issue("OPTIONS", nil)
	assert.ErrorIs(t, err, schema.ErrInvalidMethod)
	assert.Zero(t, ch.outstanding())
}

func TestVerb_UnencodablePayload(t *testing.T) {
	ch, ft := newTestChannel(t)
	call := ch.Post(make(chan int))
	// the failure arrives through the call, nothing reaches the transport
	<-call.Done()
	_, err := call.Result()
	assert.Error(t, err)
	assert.Zero(t, ft.sentCount())
	assert.Zero(t, ch.outstanding())
}

func TestRoundTrip(t *testing.T) {
	ch, _ := newTestChannel(t)
	call := ch.Post(map[string]string{"name": "alpha"})
	id := call.Envelope().Id

	ch.OnData(reply(id, "created"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	result, err := call.Await(ctx)
	require.NoError(t, err)

	var out struct {
		Id    uint32 `json:"id"`
		Value string `json:"value"`
	}
	require.NoError(t, json.Unmarshal(result, &out))
	assert.Equal(t, id, out.Id)
	assert.Equal(t, "created", out.Value)
	assert.Zero(t, ch.outstanding())

	// a duplicate reply matches nothing and changes nothing
	ch.OnData(reply(id, "again"))
	result, err = call.Result()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(result, &out))
	assert.Equal(t, "created", out.Value)
}

func TestSettlementIndependence(t *testing.T) {
	ch, _ := newTestChannel(t)
	first := ch.Get("one")
	second := ch.Get("two")

	ch.OnData(reply(first.Envelope().Id, "done"))
	<-first.Done()

	select {
	case <-second.Done():
		t.Fatal("settling one call must not settle another")
	default:
	}
	assert.Equal(t, 1, ch.outstanding())
}

func TestFlush_Idempotent(t *testing.T) {
	ch, ft := newTestChannel(t)
	ft.failSends(errors.New("not connected"))
	ch.Get("queued")
	assert.Zero(t, ft.sentCount())

	ft.failSends(nil)
	ch.OnOpen()
	ch.OnOpen()
	// a second flush with no state change re-sends nothing
	assert.Equal(t, 1, ft.sentCount())
}

func TestFlush_InsertionOrder(t *testing.T) {
	ch, ft := newTestChannel(t)
	ft.failSends(errors.New("not connected"))
	var ids []uint32
	for i := 0; i < 3; i++ {
		ids = append(ids, ch.Get(i).Envelope().Id)
	}
	ft.failSends(nil)
	ch.OnOpen()

	require.Equal(t, 3, ft.sentCount())
	for i, id := range ids {
		request, err := schema.DecodeRequest(ft.sentAt(i))
		require.NoError(t, err)
		assert.Equal(t, id, request.Id)
	}
}

func TestTimeout(t *testing.T) {
	ch, ft := newTestChannel(t)
	ft.failSends(errors.New("never opens"))

	call := ch.Get("expiring", WithCallTimeout(0))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := call.Await(ctx)
	assert.ErrorIs(t, err, schema.ErrTimeout)
	assert.Zero(t, ch.outstanding())
}

func TestTimeout_NeverFiresAfterSettle(t *testing.T) {
	ch, _ := newTestChannel(t)
	call := ch.Get("quick", WithCallTimeout(30*time.Millisecond))
	ch.OnData(reply(call.Envelope().Id, "beat the timer"))
	<-call.Done()

	time.Sleep(60 * time.Millisecond)
	result, err := call.Result()
	require.NoError(t, err)
	assert.Contains(t, string(result), "beat the timer")
}

func TestCloseReopen_SingleResend(t *testing.T) {
	ch, ft := newTestChannel(t)
	call := ch.Get("durable")
	require.Equal(t, 1, ft.sentCount())

	ch.OnClose()
	ch.OnOpen()

	require.Equal(t, 2, ft.sentCount())
	// the re-send carries the original id and payload, byte for byte
	assert.Equal(t, ft.sentAt(0), ft.sentAt(1))

	// still resolvable under its original id
	ch.OnData(reply(call.Envelope().Id, "ok"))
	<-call.Done()
	_, err := call.Result()
	assert.NoError(t, err)
}

func TestErrorBroadcast(t *testing.T) {
	ch, _ := newTestChannel(t)
	calls := []*Call{ch.Get(1), ch.Post(2), ch.Put(3)}

	ch.OnError(errors.New("connection reset"))

	for _, call := range calls {
		<-call.Done()
		_, err := call.Result()
		assert.ErrorIs(t, err, schema.ErrTransport)
	}
	assert.Zero(t, ch.outstanding())
}

func TestMalformedAndUnmatchedData(t *testing.T) {
	ch, _ := newTestChannel(t)
	call := ch.Get("steady")

	ch.OnData([]byte(`not json`))
	ch.OnData([]byte(`{"value":"no id"}`))
	ch.OnData([]byte(`{"id":0,"value":"zero id"}`))
	ch.OnData(reply(call.Envelope().Id+1, "wrong id"))

	select {
	case <-call.Done():
		t.Fatal("noise must not settle a live call")
	default:
	}
	assert.Equal(t, 1, ch.outstanding())
}

func TestSetTransport_SwapsAndDisposes(t *testing.T) {
	ch, first := newTestChannel(t)
	call := ch.Get("migrating")
	require.Equal(t, 1, first.sentCount())

	second := &fakeTransport{}
	require.NoError(t, ch.SetTransport(second))

	assert.True(t, first.closed)
	assert.Nil(t, first.handler)
	assert.True(t, second.opened)

	// the swap reverted the sent entry; the new transport's open re-sends it
	ch.OnOpen()
	require.Equal(t, 1, second.sentCount())
	assert.Equal(t, first.sentAt(0), second.sentAt(0))

	ch.OnData(reply(call.Envelope().Id, "done"))
	<-call.Done()
	_, err := call.Result()
	assert.NoError(t, err)

	err = ch.SetTransport(nil)
	assert.ErrorIs(t, err, ErrNoTransport)
}

func TestClose(t *testing.T) {
	ch, ft := newTestChannel(t)
	require.NoError(t, ch.Close())
	assert.True(t, ft.closed)
	assert.Nil(t, ch.Transport())

	// closing again has no transport to release
	assert.ErrorIs(t, ch.Close(), ErrNoTransport)

	// requests issued after close stay pending and expire on their own
	call := ch.Get("orphan", WithCallTimeout(10*time.Millisecond))
	assert.Zero(t, ft.sentCount())
	assert.Equal(t, 1, ch.outstanding())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := call.Await(ctx)
	assert.ErrorIs(t, err, schema.ErrTimeout)
}

func TestCancel(t *testing.T) {
	ch, _ := newTestChannel(t)
	call := ch.Get("withdrawn")
	id := call.Envelope().Id

	call.Cancel()
	<-call.Done()
	_, err := call.Result()
	assert.ErrorIs(t, err, schema.ErrCancelled)
	assert.Zero(t, ch.outstanding())

	// a late reply for the cancelled id is dropped
	ch.OnData(reply(id, "too late"))
	_, err = call.Result()
	assert.ErrorIs(t, err, schema.ErrCancelled)
}

func TestSetTimeout_NotRetroactive(t *testing.T) {
	ch, ft := newTestChannel(t)
	ft.failSends(errors.New("not connected"))

	slow := ch.Get("armed with the default")
	ch.SetTimeout(10 * time.Millisecond)
	fast := ch.Get("armed with the new timeout")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := fast.Await(ctx)
	assert.ErrorIs(t, err, schema.ErrTimeout)

	select {
	case <-slow.Done():
		t.Fatal("lowering the timeout must not re-arm outstanding requests")
	default:
	}
	assert.Equal(t, 10*time.Millisecond, ch.Timeout())
}

func TestAwait_ContextEndsWait(t *testing.T) {
	ch, _ := newTestChannel(t)
	call := ch.Get("waiting")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := call.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// the request itself is still live and resolvable
	ch.OnData(reply(call.Envelope().Id, "eventually"))
	<-call.Done()
	result, err := call.Result()
	require.NoError(t, err)
	assert.Contains(t, string(result), "eventually")
}
