package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ostglass/squire"
)

// streamState tracks which kind of text the stream is currently emitting. It
// only decides when observer callbacks flip from reasoning to final content;
// parsing never depends on it.
type streamState int

const (
	stateIdle streamState = iota
	stateReasoning
	stateResponding
)

// decodeStream reads newline-delimited JSON chunks from r and aggregates them
// into one response. Decoding is deliberately lenient: a chunk that fails to
// parse is skipped and the stream keeps going, trading strictness for keeping
// a long generation alive. Only transport-level read failures are fatal.
//
// Reasoning text is buffered line by line and forwarded to obs without ever
// entering the returned content. Content fragments are forwarded as they
// arrive and concatenated in stream order. A chunk with the done flag set
// terminates decoding immediately; trailing text on that chunk is dropped,
// but tool calls are collected first so a terminal chunk cannot lose them.
func decodeStream(ctx context.Context, r io.Reader, obs squire.EventSink) (*squire.Response, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		state   = stateIdle
		content strings.Builder
		pending string // reasoning text awaiting a newline
		calls   []squire.ToolCall
		usage   squire.Usage
	)

	appendReasoning := func(fragment string) {
		pending += fragment
		for {
			i := strings.IndexByte(pending, '\n')
			if i < 0 {
				return
			}
			obs.OnReasoning(pending[:i])
			pending = pending[i+1:]
		}
	}
	flushReasoning := func() {
		if pending != "" {
			obs.OnReasoning(pending)
			pending = ""
		}
	}

	done := false
	for !done && scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk chatChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}

		for _, tc := range chunk.Message.ToolCalls {
			calls = append(calls, tc.toCall())
		}

		if chunk.Done {
			usage = squire.Usage{
				PromptTokens:     chunk.PromptEvalCount,
				CompletionTokens: chunk.EvalCount,
				TotalDuration:    time.Duration(chunk.TotalDuration),
			}
			done = true
			continue
		}

		if chunk.Message.Thinking != "" {
			if state == stateIdle {
				state = stateReasoning
			}
			appendReasoning(chunk.Message.Thinking)
		}

		if chunk.Message.Content != "" {
			if state != stateResponding {
				flushReasoning()
				state = stateResponding
			}
			content.WriteString(chunk.Message.Content)
			obs.OnContent(chunk.Message.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	flushReasoning()

	return &squire.Response{
		Content:   content.String(),
		ToolCalls: calls,
		Usage:     usage,
	}, nil
}

// decodeSingle reads one non-streaming response object. It feeds no observer;
// non-streaming calls are used where live display is unwanted.
func decodeSingle(r io.Reader) (*squire.Response, error) {
	var chunk chatChunk
	if err := json.NewDecoder(r).Decode(&chunk); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var calls []squire.ToolCall
	for _, tc := range chunk.Message.ToolCalls {
		calls = append(calls, tc.toCall())
	}

	return &squire.Response{
		Content:   chunk.Message.Content,
		ToolCalls: calls,
		Usage: squire.Usage{
			PromptTokens:     chunk.PromptEvalCount,
			CompletionTokens: chunk.EvalCount,
			TotalDuration:    time.Duration(chunk.TotalDuration),
		},
	}, nil
}
