package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"mime"
	"net/http"
	"strings"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"

	maxLineSize = 4 * 1024 * 1024
)

// Messages returns the JSON-RPC messages carried by a server-sent-events body.
//
// Only lines starting with "data: " are considered. A "[DONE]" payload ends the
// sequence, and payloads that are not valid JSON-RPC messages are skipped. A
// read error is yielded once, as the last element.
//
// The sequence consumes r as it goes and is not restartable. Stopping the range
// early leaves the remainder of r unread.
func Messages(r io.Reader) iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			payload, ok := strings.CutPrefix(scanner.Text(), dataPrefix)
			if !ok {
				continue
			}
			if payload == doneSentinel {
				return
			}
			var msg Message
			if err := json.Unmarshal([]byte(payload), &msg); err != nil {
				continue
			}
			if !yield(msg, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(Message{}, fmt.Errorf("read event stream: %w", err))
		}
	}
}

// single yields the whole body as one JSON-RPC message.
func single(r io.Reader) iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		var msg Message
		if err := json.NewDecoder(io.LimitReader(r, maxLineSize)).Decode(&msg); err != nil {
			return
		}
		yield(msg, nil)
	}
}

// responseMessages picks the decoder matching the response content type.
func responseMessages(resp *http.Response) iter.Seq2[Message, error] {
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return single(resp.Body)
	}
	return Messages(resp.Body)
}
