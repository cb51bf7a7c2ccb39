package cache

import (
	"fmt"
	"time"

	"github.com/skipor/cachepool/internal/tag"
)

// Pre and post conditions (Invariants) for push, touch, shrink and
// purgeExpired methods:
// * queue owns nodes between fakeHead and fakeTail.
// * {fakeHead, all owned nodes, fakeTail} are correct doubly linked list.
// * all nodes owned by queue have field node.owner equal to &queue
// * queue.size equal sum of owned nodes SizeBytes.
type queue struct {
	size int64
	// callbacks called on nodes removed in shrink and purgeExpired.
	// Callback receives detached node and must disown it.
	callbacks

	// Fake nodes. Real nodes are between them.
	// nil <- fakeHead <-> node_0 <-> ... <-> node_(n-1) <-> fakeTail -> nil
	// Such structure prevent nil checks in code.

	// fakeHead is bottom of queue. fakeHead.next is least recently used node.
	fakeHead *node

	// fakeTail is top of queue. New and touched nodes attach before fakeTail.
	fakeTail *node
}

type callbacks struct {
	onExpire func(*node)
	onEvict  func(*node)
}

// For debug output.
const fakeHeadKey = " !HEAD! "
const fakeTailKey = " !TAIL! "

func newQueue() *queue {
	q := &queue{}
	q.fakeHead, q.fakeTail = &node{}, &node{}
	q.fakeHead.Key = fakeHeadKey
	q.fakeTail.Key = fakeTailKey
	link(q.fakeHead, q.fakeTail)
	return q
}

func (q *queue) push(n *node) {
	n.owner = q
	q.size += n.SizeBytes
	attachBack(n)
}

// touch moves owned node to the most recently used end.
func (q *queue) touch(n *node) {
	n.detach()
	attachBack(n)
}

// shrink detaches nodes from head while queue is larger than toSize, and
// calls callback chosen on node state (expired or not). Nodes detached in
// shrink have invalid node.prev pointer. node.next is valid during callback
// call.
func (q *queue) shrink(toSize int64, now time.Time) {
	if toSize < 0 {
		panic(fmt.Sprintf("try shrink to negative size %v", toSize))
	}
	q.shrinkWhile(func() bool {
		return toSize < q.size
	}, now)
}

func (q *queue) shrinkWhile(while func() bool, now time.Time) {
	cur, next := q.head(), q.head().next
	for ; while(); cur, next = next, next.next {
		q.assertNotTail(cur)
		if tag.Debug {
			cur.prev = nil
		}
		if cur.expired(now) {
			q.onExpire(cur)
			continue
		}
		q.onEvict(cur)
	}
	link(q.fakeHead, cur)
}

// purgeExpired removes expired nodes from any queue position.
func (q *queue) purgeExpired(now time.Time) (removed int) {
	for n := q.head(); !q.end(n); {
		next := n.next
		if n.expired(now) {
			n.detach()
			q.onExpire(n)
			removed++
		}
		n = next
	}
	return
}

func (q *queue) head() *node { return q.fakeHead.next }
func (q *queue) tail() *node { return q.fakeTail.prev }
func (q *queue) end(n *node) bool {
	return n == q.fakeTail
}
func (q *queue) empty() bool { return q.size == 0 }

type node struct {
	Key string
	Entry
	owner *queue
	prev  *node
	next  *node
}

func (n *node) disown() {
	n.owner.size -= n.SizeBytes
	if tag.Debug {
		n.owner = nil
	}
}

func (n *node) detach() {
	link(n.prev, n.next)
	if tag.Debug {
		n.prev = nil
		n.next = nil
	}
}

func (q *queue) assertNotTail(n *node) {
	if n == q.fakeTail {
		panic("node pointer out of range")
	}
}

func link(a, b *node) { a.next, b.prev = b, a }

func attachBack(n *node) {
	link(n.owner.tail(), n)
	link(n, n.owner.fakeTail)
}

func (n *node) GoString() string {
	key := func(n *node) interface{} {
		if n == nil {
			return nil
		}
		return n.Key
	}
	return fmt.Sprintf("{Key:%s, Entry:%#v, owner:%p, prev:%v, next:%v}",
		n.Key, n.Entry, n.owner, key(n.prev), key(n.next))
}

var _ fmt.GoStringer = (*node)(nil)
