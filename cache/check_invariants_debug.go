// +build debug

// Gomega should not be dependency in non-debug build.

package cache

import (
	"errors"
	"log"

	"github.com/facebookgo/stackerr"
	. "github.com/onsi/gomega"
)

var _ = func() (_ struct{}) {
	RegisterFailHandler(GomegaFailHandler)
	return
}()

func GomegaFailHandler(message string, callerSkip ...int) {
	skip := callerSkip[0] + 1
	log.Fatal("FATAL: invariants are broken:", stackerr.WrapSkip(errors.New(message), skip))
}

func (q *queue) checkInvariants() {
	Expect(q.fakeHead.prev).To(BeNil())
	Expect(q.fakeTail.next).To(BeNil())
	Expect(q.fakeHead.owner).To(BeNil())
	Expect(q.fakeTail.owner).To(BeNil())
	var actualSize int64
	for n := q.head(); !q.end(n); n = n.next {
		actualSize += n.SizeBytes
		Expect(n.prev.next).To(BeIdenticalTo(n))
		Expect(n.owner).To(BeIdenticalTo(q))
	}
	Expect(q.tail().next).To(BeIdenticalTo(q.fakeTail))
	Expect(actualSize).To(BeIdenticalTo(q.size))
}

func (c *Cache) checkInvariants() {
	q := c.queue
	q.checkInvariants()
	var entries int
	for n := q.head(); !q.end(n); n = n.next {
		entries++
		tn, ok := c.table[n.Key]
		Expect(ok).To(BeTrue(), n.Key, "no table ref to entry")
		Expect(tn).To(BeIdenticalTo(n), "table refs to another node")
	}
	ExpectWithOffset(1, entries).To(Equal(len(c.table)), "too many entries in table")
}
