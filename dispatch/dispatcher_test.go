package dispatch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brettbedarf/dirtree/config"
	"github.com/brettbedarf/dirtree/internal/mocks"
	"github.com/brettbedarf/dirtree/internal/util"
	"github.com/brettbedarf/dirtree/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const scenario = `CREATE fruits
CREATE vegetables
CREATE grains
CREATE fruits/apples
CREATE fruits/apples/fuji
LIST
DELETE fruits/apples
LIST
MOVE grains fruits
LIST
`

// the LIST echo keeps the space that separates verb and operands
var scenarioOutput = strings.Join([]string{
	"CREATE fruits",
	"CREATE vegetables",
	"CREATE grains",
	"CREATE fruits/apples",
	"CREATE fruits/apples/fuji",
	"LIST ",
	"fruits",
	" apples",
	"  fuji",
	"grains",
	"vegetables",
	"DELETE fruits/apples",
	"LIST ",
	"fruits",
	"grains",
	"vegetables",
	"MOVE grains fruits",
	"LIST ",
	"fruits",
	" grains",
	"vegetables",
}, "\n") + "\n"

func newTestDispatcher(t *testing.T, override *config.ConfigOverride) (*Dispatcher, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return New(config.NewConfig(override), &buf), &buf
}

// dispatchAll applies lines and fails the test on any returned error
func dispatchAll(t *testing.T, d *Dispatcher, lines ...string) {
	t.Helper()
	for _, line := range lines {
		require.NoError(t, d.Dispatch(line), "dispatch %q", line)
	}
}

func TestDispatcher_Run_Scenario(t *testing.T) {
	d, buf := newTestDispatcher(t, nil)

	err := d.Run(context.Background(), strings.NewReader(scenario))

	require.NoError(t, err)
	assert.Equal(t, scenarioOutput, buf.String())
	assert.Equal(t, []tree.Entry{
		{Depth: 0, Name: "fruits"},
		{Depth: 1, Name: "grains"},
		{Depth: 0, Name: "vegetables"},
	}, d.Root().Entries())
	assert.Equal(t, Stats{
		Commands: 10,
		Created:  5,
		Deleted:  1,
		Moved:    1,
		Listed:   3,
	}, d.Stats())
}

func TestDispatcher_Run_CRLF(t *testing.T) {
	d, buf := newTestDispatcher(t, nil)

	err := d.Run(context.Background(), strings.NewReader("create a\r\n\r\nlist\r\n"))

	require.NoError(t, err)
	assert.Equal(t, "CREATE a\nLIST \na\n", buf.String())
}

func TestDispatcher_Dispatch_EmptyLine(t *testing.T) {
	d, buf := newTestDispatcher(t, nil)

	require.NoError(t, d.Dispatch(""))

	assert.Empty(t, buf.String(), "empty lines are not echoed")
	assert.Equal(t, 0, d.Stats().Commands)
}

func TestDispatcher_Dispatch_UnknownVerb(t *testing.T) {
	d, buf := newTestDispatcher(t, nil)

	require.NoError(t, d.Dispatch("rename a b"))

	assert.Equal(t, "RENAME a b\n", buf.String(), "unknown verbs are echoed and otherwise ignored")
	assert.Equal(t, 0, d.Root().Len())
	assert.Equal(t, 1, d.Stats().Ignored)
}

func TestDispatcher_Dispatch_DeleteNotFound(t *testing.T) {
	d, buf := newTestDispatcher(t, nil)

	require.NoError(t, d.Dispatch("DELETE nope"))

	assert.Equal(t, "DELETE nope\nCannot delete nope - does not exist\n", buf.String())
	assert.Equal(t, 0, d.Root().Len())
	assert.Equal(t, 1, d.Stats().Failed)
}

func TestDispatcher_Dispatch_DeleteNestedNotFound(t *testing.T) {
	d, buf := newTestDispatcher(t, nil)
	dispatchAll(t, d, "CREATE a/b")
	buf.Reset()

	require.NoError(t, d.Dispatch("DELETE a/c"))

	assert.Equal(t, "DELETE a/c\nCannot delete a/c - does not exist\n", buf.String())
	assert.True(t, d.Root().Contains(tree.Path{"a", "b"}))
}

func TestDispatcher_Dispatch_MoveNotFound(t *testing.T) {
	d, buf := newTestDispatcher(t, nil)
	dispatchAll(t, d, "CREATE dst")
	buf.Reset()

	require.NoError(t, d.Dispatch("MOVE src dst"))

	assert.Equal(t, "MOVE src dst\nCannot delete src - does not exist\n", buf.String())
	assert.Equal(t, []tree.Entry{{Depth: 0, Name: "dst"}}, d.Root().Entries())
}

func TestDispatcher_Dispatch_MoveRejected(t *testing.T) {
	t.Run("destination taken", func(t *testing.T) {
		d, buf := newTestDispatcher(t, nil)
		dispatchAll(t, d, "CREATE a", "CREATE b/a")
		buf.Reset()

		require.NoError(t, d.Dispatch("MOVE a b"))

		assert.Equal(t, "MOVE a b\nCannot move a to b - b/a already exists\n", buf.String())
		assert.True(t, d.Root().Contains(tree.Path{"a"}))
	})

	t.Run("into itself", func(t *testing.T) {
		d, buf := newTestDispatcher(t, nil)
		dispatchAll(t, d, "CREATE a/b")
		buf.Reset()

		require.NoError(t, d.Dispatch("MOVE a a/b"))

		assert.Equal(t, "MOVE a a/b\nCannot move a to a/b - destination is inside source\n", buf.String())
		assert.True(t, d.Root().Contains(tree.Path{"a", "b"}))
	})
}

func TestDispatcher_Dispatch_MissingOperand(t *testing.T) {
	tests := []struct {
		line     string
		expected string
	}{
		{"CREATE", "CREATE \nCannot create - missing operand\n"},
		{"DELETE", "DELETE \nCannot delete - missing operand\n"},
		{"MOVE a", "MOVE a\nCannot move - missing operand\n"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			d, buf := newTestDispatcher(t, nil)

			require.NoError(t, d.Dispatch(tt.line))

			assert.Equal(t, tt.expected, buf.String())
			assert.Equal(t, 1, d.Stats().Failed)
		})
	}
}

func TestDispatcher_Dispatch_EmptySegments(t *testing.T) {
	t.Run("filtered by default", func(t *testing.T) {
		d, _ := newTestDispatcher(t, nil)

		dispatchAll(t, d, "CREATE /a//b/")

		assert.True(t, d.Root().Contains(tree.Path{"a", "b"}))
	})

	t.Run("kept when configured", func(t *testing.T) {
		d, _ := newTestDispatcher(t, &config.ConfigOverride{KeepEmptySegments: util.Pointer(true)})

		dispatchAll(t, d, "CREATE a//b")

		assert.True(t, d.Root().Contains(tree.Path{"a", "", "b"}))
		assert.False(t, d.Root().Contains(tree.Path{"a", "b"}))
	})
}

func TestDispatcher_Dispatch_SinkError(t *testing.T) {
	sink := new(mocks.MockSink)
	sink.On("Write", "CREATE a\n").Return(0, errors.New("broken pipe"))
	d := New(nil, sink)

	err := d.Dispatch("CREATE a")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
	assert.Equal(t, 0, d.Root().Len(), "command does not run when its echo fails")
	sink.AssertExpectations(t)
}

func TestDispatcher_Dispatch_ListWritesEntries(t *testing.T) {
	sink := new(mocks.MockSink)
	sink.On("Write", mock.Anything).Return(func(s string) int { return len(s) }, nil)
	d := New(nil, sink)

	require.NoError(t, d.Dispatch("CREATE b/c"))
	require.NoError(t, d.Dispatch("CREATE a"))
	require.NoError(t, d.Dispatch("LIST"))

	var written []string
	for _, call := range sink.Calls {
		written = append(written, call.Arguments.String(0))
	}
	assert.Equal(t, []string{"CREATE b/c\n", "CREATE a\n", "LIST \n", "a\n", "b\n", " c\n"}, written)
}

func TestDispatcher_Run_SinkErrorStops(t *testing.T) {
	sink := new(mocks.MockSink)
	sink.On("Write", "CREATE a\n").Return(9, nil).Once()
	sink.On("Write", "CREATE b\n").Return(0, errors.New("disk full")).Once()
	d := New(nil, sink)

	err := d.Run(context.Background(), strings.NewReader("CREATE a\nCREATE b\nCREATE c\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.True(t, d.Root().Contains(tree.Path{"a"}))
	assert.False(t, d.Root().Contains(tree.Path{"c"}))
	sink.AssertExpectations(t)
}

func TestDispatcher_Run_Cancelled(t *testing.T) {
	d, buf := newTestDispatcher(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Run(ctx, strings.NewReader("CREATE a\n"))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.String())
	assert.Equal(t, 0, d.Root().Len())
}

func TestDispatcher_Run_LineTooLong(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)

	err := d.Run(context.Background(), strings.NewReader("CREATE "+strings.Repeat("a", MaxLineSize)))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read commands")
}

func TestNew_Defaults(t *testing.T) {
	d := New(nil, &bytes.Buffer{})

	assert.NotNil(t, d.Root())
	assert.Equal(t, tree.KindContainer, d.Root().Kind())
	assert.NotEqual(t, d.RunID(), New(nil, &bytes.Buffer{}).RunID(), "every dispatcher gets its own run ID")
}
