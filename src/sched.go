package chorale

// bitset is a fixed-size bit vector over node ids.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) set(i NodeID)      { b[i>>6] |= 1 << (uint(i) & 63) }
func (b bitset) has(i NodeID) bool { return b[i>>6]&(1<<(uint(i)&63)) != 0 }

func (b bitset) clear() {
	for i := range b {
		b[i] = 0
	}
}

// reachableFrom fills g.reach with the predecessor closure of start,
// unioned with the closure of every node flagged AlwaysRun.
func (g *Graph) reachableFrom(start NodeID) {
	g.reach.clear()
	g.stack = g.stack[:0]
	g.stack = append(g.stack, start)
	for _, n := range g.nodes {
		if n.Desc.AlwaysRun {
			g.stack = append(g.stack, n.Desc.ID)
		}
	}
	for len(g.stack) > 0 {
		id := g.stack[len(g.stack)-1]
		g.stack = g.stack[:len(g.stack)-1]
		if g.reach.has(id) {
			continue
		}
		g.reach.set(id)
		g.stack = append(g.stack, g.nodes[id].Desc.InputNodes...)
	}
}

// schedule produces the tick's processing order: a topological order of
// the reachable subgraph in which, among nodes whose dependencies are
// satisfied at the same moment, the smallest id runs first. Nodes trapped
// in a cycle never reach zero incoming edges and are silently omitted.
//
// The returned slice aliases scratch state owned by g and is valid until
// the next call.
func (g *Graph) schedule(output NodeID) []NodeID {
	g.reachableFrom(output)

	g.heap = g.heap[:0]
	for id := range g.nodes {
		nid := NodeID(id)
		if !g.reach.has(nid) {
			g.incoming[id] = 0
			continue
		}
		in := 0
		for _, pred := range g.nodes[id].Desc.InputNodes {
			if g.reach.has(pred) {
				in++
			}
		}
		g.incoming[id] = in
		if in == 0 {
			g.heapPush(nid)
		}
	}

	g.order = g.order[:0]
	for len(g.heap) > 0 {
		id := g.heapPop()
		g.order = append(g.order, id)
		for _, succ := range g.succs[id] {
			if !g.reach.has(succ) {
				continue
			}
			g.incoming[succ]--
			if g.incoming[succ] == 0 {
				g.heapPush(succ)
			}
		}
	}
	return g.order
}

// Min-heap of node ids on a pre-allocated backing slice. container/heap
// funnels values through interface{} and would allocate on every push, so
// the sift operations are written out here.

func (g *Graph) heapPush(id NodeID) {
	g.heap = append(g.heap, id)
	i := len(g.heap) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if g.heap[parent] <= g.heap[i] {
			break
		}
		g.heap[parent], g.heap[i] = g.heap[i], g.heap[parent]
		i = parent
	}
}

func (g *Graph) heapPop() NodeID {
	top := g.heap[0]
	last := len(g.heap) - 1
	g.heap[0] = g.heap[last]
	g.heap = g.heap[:last]
	i := 0
	for {
		l, r := 2*i+1, 2*i+2
		smallest := i
		if l < last && g.heap[l] < g.heap[smallest] {
			smallest = l
		}
		if r < last && g.heap[r] < g.heap[smallest] {
			smallest = r
		}
		if smallest == i {
			break
		}
		g.heap[i], g.heap[smallest] = g.heap[smallest], g.heap[i]
		i = smallest
	}
	return top
}
