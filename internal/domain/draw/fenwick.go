package draw

// fenwick is a binary indexed tree over ticket counts, giving logarithmic
// point updates and ranked lookups so a draw never materializes one slot per
// ticket.
type fenwick struct {
	tree []int64
	size int
}

func newFenwick(weights []int64) *fenwick {
	f := &fenwick{
		tree: make([]int64, len(weights)+1),
		size: len(weights),
	}

	for i, w := range weights {
		f.add(i, w)
	}

	return f
}

func (f *fenwick) add(index int, delta int64) {
	for i := index + 1; i <= f.size; i += i & (-i) {
		f.tree[i] += delta
	}
}

// find returns the smallest index whose prefix sum is strictly greater than
// target. Drawing target uniformly from [0, total) therefore selects an index
// with probability proportional to its weight.
func (f *fenwick) find(target int64) int {
	index := 0
	bit := 1
	for bit<<1 <= f.size {
		bit <<= 1
	}

	for ; bit > 0; bit >>= 1 {
		next := index + bit
		if next <= f.size && f.tree[next] <= target {
			index = next
			target -= f.tree[next]
		}
	}

	return index
}
