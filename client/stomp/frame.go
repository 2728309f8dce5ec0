// Package stomp adapts go-stomp frames to WebSocket transports, where every
// message carries one or more complete frames.
package stomp

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	"github.com/go-stomp/stomp/v3/frame"
)

// Authorization carries the bearer token in CONNECT. It is not one of the
// standard STOMP headers.
const Authorization = "Authorization"

var ErrMalformedFrame = errors.New("stomp: malformed frame")

// Encode serializes f, adding content-length when a body is present.
func Encode(f *frame.Frame) ([]byte, error) {
	if len(f.Body) > 0 {
		if _, ok := f.Header.Contains(frame.ContentLength); !ok {
			f.Header.Set(frame.ContentLength, strconv.Itoa(len(f.Body)))
		}
	}
	var buf bytes.Buffer
	if err := frame.NewWriter(&buf).Write(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses every frame in one message. Heart-beat EOLs are skipped, so a
// heart-beat only message yields no frames.
func Decode(p []byte) ([]*frame.Frame, error) {
	if rest := bytes.TrimRight(p, "\r\n"); len(rest) > 0 && rest[len(rest)-1] != 0 {
		return nil, ErrMalformedFrame
	}

	var frames []*frame.Frame
	r := frame.NewReader(bytes.NewReader(p))
	for {
		f, err := r.Read()
		if err == io.EOF {
			if len(frames) == 0 && len(bytes.TrimLeft(p, "\r\n")) > 0 {
				return nil, ErrMalformedFrame
			}
			return frames, nil
		}
		if err != nil {
			return frames, errors.Join(ErrMalformedFrame, err)
		}
		if f != nil {
			frames = append(frames, f)
		}
	}
}
