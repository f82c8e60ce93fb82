package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Run("should treat rate limits as transient", func(t *testing.T) {
		assert.Equal(t, classTransient, classify(errors.New("429 Too Many Requests")))
		assert.Equal(t, classTransient, classify(errors.New("rate limit exceeded, retry later")))
	})

	t.Run("should treat server errors as transient", func(t *testing.T) {
		for _, code := range []string{"500", "502", "503", "504"} {
			assert.Equal(t, classTransient, classify(fmt.Errorf("%s upstream error", code)), code)
		}
	})

	t.Run("should treat network failures as transient", func(t *testing.T) {
		assert.Equal(t, classTransient, classify(errors.New("dial tcp: i/o timeout")))
		assert.Equal(t, classTransient, classify(errors.New("read: connection reset by peer")))
		assert.Equal(t, classTransient, classify(errors.New("unexpected EOF")))
	})

	t.Run("should treat auth and malformed requests as invalid", func(t *testing.T) {
		assert.Equal(t, classInvalid, classify(errors.New("401 Unauthorized")))
		assert.Equal(t, classInvalid, classify(errors.New("incorrect API key provided")))
		assert.Equal(t, classInvalid, classify(errors.New("invalid model identifier")))
	})

	t.Run("should not classify unknown errors", func(t *testing.T) {
		assert.Equal(t, classUnknown, classify(errors.New("something unexpected happened")))
		assert.Equal(t, classUnknown, classify(nil))
	})

	t.Run("should classify SDK errors by status code", func(t *testing.T) {
		assert.Equal(t, classTransient, classify(&openai.Error{StatusCode: 429}))
		assert.Equal(t, classTransient, classify(&openai.Error{StatusCode: 503}))
		assert.Equal(t, classInvalid, classify(&openai.Error{StatusCode: 401}))
		assert.Equal(t, classInvalid, classify(&openai.Error{StatusCode: 422}))
	})

	t.Run("should classify wrapped SDK errors", func(t *testing.T) {
		wrapped := fmt.Errorf("call failed: %w", &openai.Error{StatusCode: 500})
		assert.Equal(t, classTransient, classify(wrapped))
	})
}

func TestClassifyStatus(t *testing.T) {
	t.Run("should map status ranges", func(t *testing.T) {
		assert.Equal(t, classTransient, classifyStatus(408))
		assert.Equal(t, classTransient, classifyStatus(429))
		assert.Equal(t, classTransient, classifyStatus(500))
		assert.Equal(t, classTransient, classifyStatus(599))
		assert.Equal(t, classInvalid, classifyStatus(400))
		assert.Equal(t, classInvalid, classifyStatus(404))
		assert.Equal(t, classUnknown, classifyStatus(200))
	})
}
