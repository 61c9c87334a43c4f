package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// recordingMessenger counts transport calls for heartbeat tests.
type recordingMessenger struct {
	mu          sync.Mutex
	sent        []string
	deleted     []int64
	typingCount int
	nextMsgID   int64
}

func (r *recordingMessenger) SendMessage(_ context.Context, _ int64, text string, _ []Button) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, text)
	r.nextMsgID++
	return r.nextMsgID, nil
}

func (r *recordingMessenger) SendPhotoGroup(context.Context, int64, [][]byte) error { return nil }
func (r *recordingMessenger) SendDocumentURL(context.Context, int64, string) error  { return nil }
func (r *recordingMessenger) SendVoice(context.Context, int64, []byte, string) error {
	return nil
}

func (r *recordingMessenger) SendTyping(context.Context, int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.typingCount++
	return nil
}

func (r *recordingMessenger) DeleteMessage(_ context.Context, _ int64, messageID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, messageID)
	return nil
}

func (r *recordingMessenger) AnswerCallback(context.Context, string) error  { return nil }
func (r *recordingMessenger) FileURL(context.Context, string) (string, error) {
	return "", nil
}

func (r *recordingMessenger) Subscribe(context.Context) (<-chan IncomingMessage, error) {
	return nil, nil
}

func (r *recordingMessenger) typings() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.typingCount
}

func TestHeartbeatStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	messenger := &recordingMessenger{}
	factory := NewHeartbeatFactory(messenger, WithHeartbeatInterval(time.Hour))

	ctx := context.Background()
	hb, err := factory.Start(ctx, 42)
	require.NoError(t, err)
	hb.Stop(ctx)

	// One placeholder sent, the matching delete issued, and no periodic
	// emission since the first period never elapsed.
	require.Len(t, messenger.sent, 1)
	assert.Equal(t, placeholderText, messenger.sent[0])
	assert.Equal(t, []int64{1}, messenger.deleted)
	assert.Zero(t, messenger.typings())
}

func TestHeartbeatStopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	messenger := &recordingMessenger{}
	factory := NewHeartbeatFactory(messenger, WithHeartbeatInterval(time.Hour))

	ctx := context.Background()
	hb, err := factory.Start(ctx, 42)
	require.NoError(t, err)

	hb.Stop(ctx)
	hb.Stop(ctx)

	assert.Len(t, messenger.deleted, 1)
}

func TestHeartbeatEmitsPeriodically(t *testing.T) {
	defer goleak.VerifyNone(t)

	messenger := &recordingMessenger{}
	factory := NewHeartbeatFactory(messenger, WithHeartbeatInterval(5*time.Millisecond))

	ctx := context.Background()
	hb, err := factory.Start(ctx, 42)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return messenger.typings() >= 2
	}, time.Second, time.Millisecond)

	hb.Stop(ctx)
}

func TestHeartbeatLifetimeCapStopsEmission(t *testing.T) {
	defer goleak.VerifyNone(t)

	messenger := &recordingMessenger{}
	factory := NewHeartbeatFactory(messenger,
		WithHeartbeatInterval(time.Millisecond),
		WithHeartbeatLifetime(20*time.Millisecond),
	)

	ctx := context.Background()
	hb, err := factory.Start(ctx, 42)
	require.NoError(t, err)

	// Let the cap fire, then confirm emission stopped while the wrapped
	// operation (this test) is still running.
	assert.Eventually(t, func() bool {
		return messenger.typings() > 0
	}, time.Second, time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	after := messenger.typings()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, messenger.typings())

	// Stop still deletes the placeholder after the cap fired.
	hb.Stop(ctx)
	assert.Len(t, messenger.deleted, 1)
}

func TestHeartbeatSurvivesCallerContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	messenger := &recordingMessenger{}
	factory := NewHeartbeatFactory(messenger, WithHeartbeatInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	hb, err := factory.Start(ctx, 42)
	require.NoError(t, err)

	// Canceling the turn context must not orphan the heartbeat; Stop
	// still runs its cleanups.
	cancel()
	hb.Stop(context.Background())
	assert.Len(t, messenger.deleted, 1)
}
