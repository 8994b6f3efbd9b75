package confirm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTerminal struct {
	in     io.Reader
	out    bytes.Buffer
	closed bool
}

func (f *fakeTerminal) Read(p []byte) (int, error)  { return f.in.Read(p) }
func (f *fakeTerminal) Write(p []byte) (int, error) { return f.out.Write(p) }
func (f *fakeTerminal) Close() error                { f.closed = true; return nil }

func gateWith(term *fakeTerminal) *Gate {
	return &Gate{Open: func() (Terminal, error) { return term, nil }}
}

func TestIsAffirmative(t *testing.T) {
	for _, in := range []string{"Y", "y", "yes", "YES", "Yes", "  y \n", "yEs\r\n"} {
		assert.True(t, IsAffirmative(in), "%q", in)
	}
	for _, in := range []string{"", "\n", "n", "no", "maybe", "yess", "ye", "y es"} {
		assert.False(t, IsAffirmative(in), "%q", in)
	}
}

func TestAsk(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
		{"yes", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			term := &fakeTerminal{in: strings.NewReader(tt.input)}
			got, err := gateWith(term).Ask(context.Background(), "Continue commit? (y/N)")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, term.closed, "terminal must be closed")
			assert.Equal(t, "Continue commit? (y/N) ", term.out.String())
		})
	}
}

func TestAsk_ReadsOnlyFirstLine(t *testing.T) {
	term := &fakeTerminal{in: strings.NewReader("no\nyes\n")}
	got, err := gateWith(term).Ask(context.Background(), "?")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestAsk_NoTerminal(t *testing.T) {
	g := &Gate{Open: func() (Terminal, error) { return nil, errors.New("open /dev/tty: no such device") }}
	got, err := g.Ask(context.Background(), "?")
	assert.False(t, got)
	assert.ErrorIs(t, err, ErrNoTerminal)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("device gone") }

func TestAsk_ReadError(t *testing.T) {
	term := &fakeTerminal{in: errReader{}}
	got, err := gateWith(term).Ask(context.Background(), "?")
	assert.False(t, got)
	assert.Error(t, err)
	assert.True(t, term.closed)
}

type blockingReader struct{ unblock chan struct{} }

func (b blockingReader) Read([]byte) (int, error) {
	<-b.unblock
	return 0, io.EOF
}

func TestAsk_ContextCancelled(t *testing.T) {
	r := blockingReader{unblock: make(chan struct{})}
	defer close(r.unblock)
	term := &fakeTerminal{in: r}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := gateWith(term).Ask(ctx, "?")
	assert.False(t, got)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, term.closed)
}
