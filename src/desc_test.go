package chorale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_ConnectAudio_Errors(t *testing.T) {
	d := NewGraphDesc()
	a := d.AddNode(NodeShape{}.Audio(2, 1), nop{})
	b := d.AddNode(NodeShape{}.Audio(0, 1), nop{})

	assert.ErrorIs(t, d.ConnectAudio(a, 0, a, 0), ErrDestEqualsSrc)
	assert.ErrorIs(t, d.ConnectAudio(NodeID(99), 0, b, 0), ErrDestOutOfBounds)
	assert.ErrorIs(t, d.ConnectAudio(a, 0, NodeID(99), 0), ErrSrcOutOfBounds)
	assert.ErrorIs(t, d.ConnectAudio(a, 2, b, 0), ErrDestPortOutOfBounds)
	assert.ErrorIs(t, d.ConnectAudio(a, 0, b, 1), ErrSrcPortOutOfBounds)

	// Nothing above should have touched the description.
	na, err := d.Node(a)
	require.NoError(t, err)
	assert.Empty(t, na.InputNodes)
	for _, c := range na.AudioInputs {
		assert.False(t, c.Connected())
	}

	require.NoError(t, d.ConnectAudio(a, 0, b, 0))
	na, _ = d.Node(a)
	assert.Equal(t, []NodeID{b}, na.InputNodes)
	assert.Equal(t, InputConnection{Node: b, Port: 0}, na.AudioInputs[0])
}

func Test_ConnectEvent_Errors(t *testing.T) {
	d := NewGraphDesc()
	a := d.AddNode(NodeShape{}.Event(1, 0), nop{})
	b := d.AddNode(NodeShape{}.Event(0, 1), nop{})

	assert.ErrorIs(t, d.ConnectEvent(a, 0, a, 0), ErrDestEqualsSrc)
	assert.ErrorIs(t, d.ConnectEvent(a, 1, b, 0), ErrDestPortOutOfBounds)
	assert.ErrorIs(t, d.ConnectEvent(a, 0, b, 1), ErrSrcPortOutOfBounds)
	require.NoError(t, d.ConnectEvent(a, 0, b, 0))
}

func Test_ConnectGrowInputs(t *testing.T) {
	d := NewGraphDesc()
	bus := d.AddNode(NodeShape{}.Audio(0, 2), nop{})
	src := d.AddNode(NodeShape{}.Audio(0, 1), nop{})

	require.NoError(t, d.ConnectGrowInputs(bus, 3, src, 0))

	nb, err := d.Node(bus)
	require.NoError(t, err)
	require.Len(t, nb.AudioInputs, 4)
	assert.False(t, nb.AudioInputs[0].Connected())
	assert.False(t, nb.AudioInputs[1].Connected())
	assert.False(t, nb.AudioInputs[2].Connected())
	assert.Equal(t, InputConnection{Node: src, Port: 0}, nb.AudioInputs[3])
	assert.Equal(t, []NodeID{src}, nb.InputNodes)
}

func Test_Disconnect_RecomputesInputNodes(t *testing.T) {
	d := NewGraphDesc()
	a := d.AddNode(NodeShape{}.Audio(2, 0).Event(1, 0), nop{})
	b := d.AddNode(NodeShape{}.Audio(0, 1).Event(0, 1), nop{})
	c := d.AddNode(NodeShape{}.Audio(0, 1), nop{})

	require.NoError(t, d.ConnectAudio(a, 0, b, 0))
	require.NoError(t, d.ConnectAudio(a, 1, c, 0))
	require.NoError(t, d.ConnectEvent(a, 0, b, 0))

	na, _ := d.Node(a)
	assert.Equal(t, []NodeID{b, c}, na.InputNodes)

	// b still feeds the event port, so it must survive the audio
	// disconnect.
	require.NoError(t, d.DisconnectAudio(a, 0))
	na, _ = d.Node(a)
	assert.Equal(t, []NodeID{b, c}, na.InputNodes)

	require.NoError(t, d.DisconnectEvent(a, 0))
	na, _ = d.Node(a)
	assert.Equal(t, []NodeID{c}, na.InputNodes)

	require.NoError(t, d.DisconnectAudio(a, 1))
	na, _ = d.Node(a)
	assert.Empty(t, na.InputNodes)
}

func Test_SetProcessor(t *testing.T) {
	d := NewGraphDesc()
	a := d.AddNode(NodeShape{}.Audio(0, 1), nil)

	assert.ErrorIs(t, d.SetProcessor(NodeID(5), nop{}), ErrNodeNotFound)
	require.NoError(t, d.SetProcessor(a, constant{value: 1}))
	assert.NotNil(t, d.processors[a])
}

func Test_Snapshot_MovesProcessors(t *testing.T) {
	d := NewGraphDesc()
	a := d.AddNode(NodeShape{}.Audio(0, 1), constant{value: 1})
	require.NoError(t, d.SetOutputNode(a))

	s1 := d.snapshot()
	assert.NotNil(t, s1.processors[a])
	assert.Nil(t, d.processors[a], "processor must leave the description")
	assert.Equal(t, a, s1.outputNode)

	// A later snapshot of the unchanged description carries an empty slot.
	s2 := d.snapshot()
	assert.Nil(t, s2.processors[a])

	// The snapshot is a deep copy: mutating the description afterwards
	// must not reach it.
	b := d.AddNode(NodeShape{}.Audio(1, 0), nop{})
	require.NoError(t, d.ConnectAudio(b, 0, a, 0))
	assert.Len(t, s1.nodes, 1)
	na := s1.nodes[a]
	assert.Empty(t, na.InputNodes)
}

// The derived predecessor set always equals the set of sources across
// the connected input ports, no matter the mutation sequence.
func Test_InputNodes_NeverDrifts(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := NewGraphDesc()
		n := rapid.IntRange(2, 10).Draw(t, "nodes")
		for i := 0; i < n; i++ {
			d.AddNode(NodeShape{}.Audio(3, 2).Event(2, 1), nop{})
		}

		ops := rapid.IntRange(1, 40).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			dest := NodeID(rapid.IntRange(0, n-1).Draw(t, "dest"))
			src := NodeID(rapid.IntRange(0, n-1).Draw(t, "src"))
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				_ = d.ConnectAudio(dest, rapid.IntRange(0, 2).Draw(t, "dp"), src, rapid.IntRange(0, 1).Draw(t, "sp"))
			case 1:
				_ = d.ConnectEvent(dest, rapid.IntRange(0, 1).Draw(t, "dp"), src, 0)
			case 2:
				_ = d.DisconnectAudio(dest, rapid.IntRange(0, 2).Draw(t, "dp"))
			case 3:
				_ = d.DisconnectEvent(dest, rapid.IntRange(0, 1).Draw(t, "dp"))
			}
		}

		for i := 0; i < n; i++ {
			nd, err := d.Node(NodeID(i))
			if err != nil {
				t.Fatalf("node %d: %v", i, err)
			}
			want := map[NodeID]bool{}
			for _, c := range nd.AudioInputs {
				if c.Connected() {
					want[c.Node] = true
				}
			}
			for _, c := range nd.EventInputs {
				if c.Connected() {
					want[c.Node] = true
				}
			}
			got := map[NodeID]bool{}
			for _, id := range nd.InputNodes {
				got[id] = true
			}
			if len(got) != len(nd.InputNodes) {
				t.Fatalf("node %d: InputNodes contains duplicates: %v", i, nd.InputNodes)
			}
			for id := range want {
				if !got[id] {
					t.Fatalf("node %d: missing predecessor %d", i, id)
				}
			}
			for id := range got {
				if !want[id] {
					t.Fatalf("node %d: stale predecessor %d", i, id)
				}
			}
		}
	})
}
