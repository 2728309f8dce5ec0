package stomp

import (
	"testing"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, f *frame.Frame) []byte {
	t.Helper()
	p, err := Encode(f)
	require.NoError(t, err)
	return p
}

func TestEncodeDecodeSend(t *testing.T) {
	f := frame.New(frame.SEND, frame.Destination, "/app/chat.sendMessage/7", frame.ContentType, "application/json")
	f.Body = []byte(`{"content":"hi"}`)

	frames, err := Decode(encode(t, f))
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, frame.SEND, frames[0].Command)
	assert.Equal(t, "/app/chat.sendMessage/7", frames[0].Header.Get(frame.Destination))
	assert.Equal(t, "16", frames[0].Header.Get(frame.ContentLength))
	assert.Equal(t, `{"content":"hi"}`, string(frames[0].Body))
}

func TestHeaderEscaping(t *testing.T) {
	f := frame.New(frame.MESSAGE, "note", "a:b\nc\\d")
	frames, err := Decode(encode(t, f))
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, "a:b\nc\\d", frames[0].Header.Get("note"))
}

func TestConnectCarriesAuthorization(t *testing.T) {
	f := frame.New(frame.CONNECT, frame.AcceptVersion, "1.2", Authorization, "Bearer a.b.c")
	frames, err := Decode(encode(t, f))
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, "Bearer a.b.c", frames[0].Header.Get(Authorization))
}

func TestDecodeBodyWithNullUsingContentLength(t *testing.T) {
	raw := []byte("MESSAGE\ncontent-length:3\n\na\x00b\x00")
	frames, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte("a\x00b"), frames[0].Body)
}

func TestDecodeHeartbeatsAndMultipleFrames(t *testing.T) {
	frames, err := Decode([]byte("\n"))
	require.NoError(t, err)
	assert.Empty(t, frames)

	raw := append(encode(t, frame.New(frame.RECEIPT, frame.ReceiptId, "1")), '\n')
	raw = append(raw, encode(t, frame.New(frame.ERROR, frame.Message, "boom"))...)
	frames, err = Decode(raw)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, "1", frames[0].Header.Get(frame.ReceiptId))
	assert.Equal(t, "boom", frames[1].Header.Get(frame.Message))
}

func TestDecodeCRLF(t *testing.T) {
	frames, err := Decode([]byte("CONNECTED\r\nversion:1.2\r\n\r\n\x00"))
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, "1.2", frames[0].Header.Get(frame.Version))
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte("SEND\ndestination:/x\n"))
	assert.ErrorIs(t, err, ErrMalformedFrame)

	_, err = Decode([]byte("BOGUS\n\n\x00"))
	assert.ErrorIs(t, err, ErrMalformedFrame)

	_, err = Decode([]byte("SEND\ncontent-length:10\n\nabc\x00"))
	assert.ErrorIs(t, err, ErrMalformedFrame)
}
