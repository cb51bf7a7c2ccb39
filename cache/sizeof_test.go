package cache

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/skipor/cachepool/testutil"
)

var _ = Describe("EstimateSize", func() {
	It("nil", func() {
		Expect(EstimateSize(nil)).To(BeZero())
	})
	It("string costs UTF-8 length", func() {
		Expect(EstimateSize("hello")).To(BeEquivalentTo(5))
		Expect(EstimateSize("héllo")).To(BeEquivalentTo(6))
		Expect(EstimateSize("")).To(BeZero())
	})
	It("bytes cost their length", func() {
		Expect(EstimateSize([]byte{1, 2, 3})).To(BeEquivalentTo(3))
	})
	It("numbers cost eight bytes", func() {
		Expect(EstimateSize(42)).To(BeEquivalentTo(8))
		Expect(EstimateSize(int64(-1))).To(BeEquivalentTo(8))
		Expect(EstimateSize(uint8(7))).To(BeEquivalentTo(8))
		Expect(EstimateSize(3.14)).To(BeEquivalentTo(8))
	})
	It("bool costs one byte", func() {
		Expect(EstimateSize(true)).To(BeEquivalentTo(1))
	})
	It("composite costs JSON length", func() {
		Expect(EstimateSize(map[string]int{"a": 1})).To(BeEquivalentTo(len(`{"a":1}`)))
		Expect(EstimateSize([]int{1, 2, 3})).To(BeEquivalentTo(len(`[1,2,3]`)))
		type point struct {
			X, Y int
		}
		Expect(EstimateSize(point{1, 2})).To(BeEquivalentTo(len(`{"X":1,"Y":2}`)))
	})
	It("unserializable composite falls back", func() {
		cyclic := map[string]interface{}{}
		cyclic["self"] = cyclic
		Expect(EstimateSize(cyclic)).To(BeEquivalentTo(FallbackSize))
		Expect(EstimateSize([]interface{}{make(chan int)})).To(BeEquivalentTo(FallbackSize))
	})
	It("anything else costs its string form", func() {
		Expect(EstimateSize(complex(1, 2))).To(BeEquivalentTo(len("(1+2i)")))
		Expect(EstimateSize(make(chan int))).To(BeNumerically(">", 0))
	})
	It("fuzzed values never panic and never go negative", func() {
		type sample struct {
			S string
			N int
			M map[string]string
			L []float64
		}
		for i := 0; i < 200; i++ {
			var s sample
			Fuzz(&s)
			Expect(EstimateSize(s)).To(BeNumerically(">=", 0))
		}
	})
})
