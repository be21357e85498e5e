package chunks

// unionFind is a disjoint-set forest with path compression and union by rank.
// On equal rank the smaller element becomes the root.
type unionFind struct {
	parents []uint32
	ranks   []uint8
}

func (u *unionFind) reset(n int) {
	if cap(u.parents) < n {
		u.parents = make([]uint32, n)
		u.ranks = make([]uint8, n)
	}
	u.parents = u.parents[:n]
	u.ranks = u.ranks[:n]
	for i := range u.parents {
		u.parents[i] = uint32(i)
		u.ranks[i] = 0
	}
}

func (u *unionFind) find(x uint32) uint32 {
	root := x
	for u.parents[root] != root {
		root = u.parents[root]
	}
	for x != root {
		next := u.parents[x]
		u.parents[x] = root
		x = next
	}
	return root
}

func (u *unionFind) union(a, b uint32) uint32 {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return ra
	}
	if u.ranks[ra] < u.ranks[rb] || (u.ranks[ra] == u.ranks[rb] && rb < ra) {
		ra, rb = rb, ra
	}
	u.parents[rb] = ra
	if u.ranks[ra] == u.ranks[rb] {
		u.ranks[ra]++
	}
	return ra
}
