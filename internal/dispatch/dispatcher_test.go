package dispatch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"chainforge/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedGenerator fails a fixed number of times before succeeding.
type scriptedGenerator struct {
	failures int
	calls    int
	response string
	err      error
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string, opts llm.CallOptions) (string, error) {
	g.calls++
	if g.calls <= g.failures {
		if g.err != nil {
			return "", g.err
		}
		return "", &llm.TransportError{Err: fmt.Errorf("attempt %d failed", g.calls)}
	}
	return g.response, nil
}

// newRecordingDispatcher returns a dispatcher whose backoff sleeps are
// recorded instead of slept.
func newRecordingDispatcher(gen llm.ContentGenerator) (*Dispatcher, *[]time.Duration) {
	delays := &[]time.Duration{}
	d := NewDispatcher(gen, nil)
	d.sleep = func(ctx context.Context, dur time.Duration) error {
		*delays = append(*delays, dur)
		return nil
	}
	return d, delays
}

func TestDispatch(t *testing.T) {
	t.Run("succeeds after two failures with three attempts", func(t *testing.T) {
		gen := &scriptedGenerator{failures: 2, response: "generated text"}
		d, _ := newRecordingDispatcher(gen)

		text, err := d.Dispatch(context.Background(), Request{
			Prompt:     "make a token",
			MaxRetries: 3,
			RetryDelay: time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, "generated text", text)
		assert.Equal(t, 3, gen.calls)
	})

	t.Run("backoff doubles per attempt", func(t *testing.T) {
		gen := &scriptedGenerator{failures: 3, response: "ok"}
		d, delays := newRecordingDispatcher(gen)

		_, err := d.Dispatch(context.Background(), Request{
			Prompt:     "p",
			MaxRetries: 3,
			RetryDelay: time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, []time.Duration{
			1 * time.Second,
			2 * time.Second,
			4 * time.Second,
		}, *delays)
	})

	t.Run("exhausted retries wrap the last error", func(t *testing.T) {
		gen := &scriptedGenerator{failures: 10}
		d, _ := newRecordingDispatcher(gen)

		_, err := d.Dispatch(context.Background(), Request{
			Prompt:     "p",
			MaxRetries: 2,
			RetryDelay: time.Millisecond,
		})

		var exhausted *RetriesExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, 3, exhausted.Attempts)
		assert.Equal(t, 3, gen.calls)

		var transport *llm.TransportError
		assert.ErrorAs(t, err, &transport)
	})

	t.Run("empty response is retried", func(t *testing.T) {
		gen := &scriptedGenerator{failures: 1, response: "text", err: &llm.EmptyResponseError{}}
		d, _ := newRecordingDispatcher(gen)

		text, err := d.Dispatch(context.Background(), Request{
			Prompt:     "p",
			MaxRetries: 1,
			RetryDelay: time.Millisecond,
		})
		require.NoError(t, err)
		assert.Equal(t, "text", text)
		assert.Equal(t, 2, gen.calls)
	})

	t.Run("zero retries means a single attempt", func(t *testing.T) {
		gen := &scriptedGenerator{failures: 1}
		d, _ := newRecordingDispatcher(gen)

		_, err := d.Dispatch(context.Background(), Request{Prompt: "p"})
		var exhausted *RetriesExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, 1, exhausted.Attempts)
	})

	t.Run("cancelled context aborts backoff", func(t *testing.T) {
		gen := &scriptedGenerator{failures: 5}
		d := NewDispatcher(gen, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := d.Dispatch(ctx, Request{
			Prompt:     "p",
			MaxRetries: 3,
			RetryDelay: time.Minute,
		})
		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("extracts fenced code when requested", func(t *testing.T) {
		gen := &scriptedGenerator{response: "Here you go:\n```solidity\ncontract A {}\n```\nEnjoy."}
		d, _ := newRecordingDispatcher(gen)

		text, err := d.Dispatch(context.Background(), Request{
			Prompt:      "p",
			ExtractCode: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "contract A {}", text)
	})

	t.Run("window records the exchange", func(t *testing.T) {
		gen := &scriptedGenerator{response: "answer"}
		d, _ := newRecordingDispatcher(gen)
		window := NewConversationWindow()

		_, err := d.Dispatch(context.Background(), Request{Prompt: "question", Window: window})
		require.NoError(t, err)

		msgs := window.Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, "question", msgs[0].Content)
		assert.Equal(t, "answer", msgs[1].Content)
	})
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single tagged block",
			in:   "intro\n```go\npackage main\n```\noutro",
			want: "package main",
		},
		{
			name: "multiple blocks are concatenated",
			in:   "```js\nconst a = 1;\n```\ntext\n```js\nconst b = 2;\n```",
			want: "const a = 1;\n\nconst b = 2;",
		},
		{
			name: "untagged block",
			in:   "```\nplain\n```",
			want: "plain",
		},
		{
			name: "no block returns raw text",
			in:   "just prose, no code",
			want: "just prose, no code",
		},
		{
			name: "unterminated block takes the remainder",
			in:   "```go\nfunc main() {}",
			want: "func main() {}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCode(tt.in))
		})
	}
}

func TestConversationWindow(t *testing.T) {
	t.Run("caps at five exchanges FIFO", func(t *testing.T) {
		w := NewConversationWindow()
		for i := 1; i <= 7; i++ {
			w.AddExchange(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
		}

		msgs := w.Messages()
		require.Len(t, msgs, 10)
		assert.Equal(t, "q3", msgs[0].Content)
		assert.Equal(t, "a7", msgs[9].Content)
	})

	t.Run("render prepends history", func(t *testing.T) {
		w := NewConversationWindow()
		w.AddExchange("first", "reply")

		rendered := w.Render("second")
		assert.Contains(t, rendered, "user: first")
		assert.Contains(t, rendered, "assistant: reply")
		assert.Contains(t, rendered, "second")
	})

	t.Run("empty window renders prompt unchanged", func(t *testing.T) {
		w := NewConversationWindow()
		assert.Equal(t, "prompt", w.Render("prompt"))
	})
}

func TestPromptBuilder(t *testing.T) {
	t.Run("evm chain gets reentrancy guidance", func(t *testing.T) {
		b := NewPromptBuilder(CapabilityFlags{})
		prompt := b.Build(Facts{
			Description: "a staking pool",
			ProjectType: "defi",
			Blockchain:  "ethereum",
			Network:     "mainnet",
		})
		assert.Contains(t, prompt, "expert Solidity developer")
		assert.Contains(t, prompt, "reentrancy protection")
		assert.Contains(t, prompt, "- Description: a staking pool")
	})

	t.Run("solana gets account-model guidance", func(t *testing.T) {
		b := NewPromptBuilder(CapabilityFlags{})
		prompt := b.Build(Facts{Blockchain: "solana", ProjectType: "nft", Network: "devnet"})
		assert.Contains(t, prompt, "Anchor framework")
		assert.Contains(t, prompt, "account model")
	})

	t.Run("unknown chain falls back to generic preamble", func(t *testing.T) {
		b := NewPromptBuilder(CapabilityFlags{})
		prompt := b.Build(Facts{Blockchain: "nearprotocol"})
		assert.Contains(t, prompt, "expert blockchain developer")
	})

	t.Run("frameworks produce an integration notice", func(t *testing.T) {
		b := NewPromptBuilder(CapabilityFlags{Frameworks: []string{"hardhat", "openzeppelin"}})
		prompt := b.Build(Facts{Blockchain: "ethereum"})
		assert.Contains(t, prompt, "hardhat, openzeppelin")
	})

	t.Run("additional requirements are optional", func(t *testing.T) {
		b := NewPromptBuilder(CapabilityFlags{})
		prompt := b.Build(Facts{Blockchain: "ethereum"})
		assert.NotContains(t, prompt, "Additional requirements")
	})
}
