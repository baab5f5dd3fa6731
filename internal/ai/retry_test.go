package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

var errNetwork = errors.New("connection reset by peer")

func fastPolicy(retries int) RetryPolicy {
	return RetryPolicy{MaxRetries: retries, Backoff: time.Millisecond, Timeout: time.Second}
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	stub := &stubTransport{replies: []stubReply{
		{err: errNetwork},
		{err: genai.APIError{Code: 503, Message: "overloaded"}},
		{text: `{"ok":true}`},
	}}

	text, err := WithRetry(stub, fastPolicy(2), zap.NewNop()).Generate(context.Background(), Request{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)
	assert.Equal(t, 3, stub.Calls())
}

func TestRetryGivesUpAfterMaxRetries(t *testing.T) {
	stub := &stubTransport{replies: []stubReply{{err: errNetwork}}}

	_, err := WithRetry(stub, fastPolicy(2), zap.NewNop()).Generate(context.Background(), Request{Model: "m"})
	require.ErrorIs(t, err, errNetwork)
	assert.Equal(t, 3, stub.Calls())
}

func TestRetrySkipsClientErrors(t *testing.T) {
	stub := &stubTransport{replies: []stubReply{{err: genai.APIError{Code: 400, Message: "bad schema"}}}}

	_, err := WithRetry(stub, fastPolicy(3), zap.NewNop()).Generate(context.Background(), Request{Model: "m"})
	require.Error(t, err)
	assert.Equal(t, 1, stub.Calls())
}

func TestRetryStopsWhenContextCancelled(t *testing.T) {
	stub := &stubTransport{replies: []stubReply{{err: errNetwork}}}
	policy := RetryPolicy{MaxRetries: 5, Backoff: time.Hour}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := WithRetry(stub, policy, zap.NewNop()).Generate(ctx, Request{Model: "m"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, stub.Calls())
}

// blockingTransport waits for its context, like a hung remote call
type blockingTransport struct{ calls int }

func (b *blockingTransport) Generate(ctx context.Context, req Request) (string, error) {
	b.calls++
	<-ctx.Done()
	return "", ctx.Err()
}

func TestRetryAppliesAttemptTimeout(t *testing.T) {
	hung := &blockingTransport{}
	policy := RetryPolicy{MaxRetries: 1, Backoff: time.Millisecond, Timeout: 10 * time.Millisecond}

	_, err := WithRetry(hung, policy, zap.NewNop()).Generate(context.Background(), Request{Model: "m"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, hung.calls)
}

func TestRetryable(t *testing.T) {
	assert.False(t, Retryable(nil))
	assert.False(t, Retryable(context.Canceled))
	assert.True(t, Retryable(context.DeadlineExceeded))
	assert.True(t, Retryable(errNetwork))
	assert.True(t, Retryable(genai.APIError{Code: 429}))
	assert.True(t, Retryable(genai.APIError{Code: 500}))
	assert.False(t, Retryable(genai.APIError{Code: 403}))
}
