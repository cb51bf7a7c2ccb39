package cachepool

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/skipor/cachepool/cache"
)

var _ = Describe("Registry", func() {
	var r *Registry
	BeforeEach(func() {
		r = NewRegistry(testLogger(), nil)
	})

	Context("GetCache", func() {
		It("creates pool on first use and reuses it after", func() {
			c := r.GetCache(ComputePool)
			Expect(c).NotTo(BeNil())
			Expect(r.GetCache(ComputePool)).To(BeIdenticalTo(c))
		})

		It("pools are independent", func() {
			r.GetCache(ComputePool).Set("k", "compute")
			r.GetCache(ResponsePool).Set("k", "response")
			Expect(r.GetCache(ComputePool).Get("k", nil)).To(Equal("compute"))
			Expect(r.GetCache(ResponsePool).Get("k", nil)).To(Equal("response"))
		})

		It("unknown pool type gets the fallback config", func() {
			c := r.GetCache(PoolType(42))
			Expect(c.Set("k", "v")).To(BeTrue())
			Expect(c.Get("k", nil)).To(Equal("v"))
		})

		It("uses supplied configs", func() {
			r = NewRegistry(testLogger(), map[PoolType]cache.Config{
				ComputePool: {MaxEntries: 1, DefaultTTL: time.Minute},
			})
			c := r.GetCache(ComputePool)
			c.Set("a", 1)
			c.Set("b", 2)
			Expect(c.Statistics().KeyCount).To(Equal(1))
		})
	})

	Context("statistics", func() {
		It("per pool", func() {
			_, ok := r.PoolStatistics(ComputePool)
			Expect(ok).To(BeFalse(), "pool not created yet")
			r.GetCache(ComputePool).Set("k", "v")
			s, ok := r.PoolStatistics(ComputePool)
			Expect(ok).To(BeTrue())
			Expect(s.Sets).To(BeEquivalentTo(1))
		})

		It("aggregates across pools", func() {
			compute := r.GetCache(ComputePool)
			response := r.GetCache(ResponsePool)
			compute.Set("k", "v")
			compute.Get("k", nil)
			compute.Get("k", nil)
			response.Get("absent", nil)
			response.Get("absent", nil)

			stats := r.Statistics()
			Expect(stats.Pools).To(HaveLen(2))
			Expect(stats.TotalHits).To(BeEquivalentTo(2))
			Expect(stats.TotalMisses).To(BeEquivalentTo(2))
			Expect(stats.TotalEntries).To(Equal(1))
			Expect(stats.TotalSizeBytes).To(BeEquivalentTo(1))
			Expect(stats.OverallHitRate).To(BeNumerically("~", 0.5, 1e-9))
		})

		It("zero overall hit rate without lookups", func() {
			r.GetCache(ComputePool)
			Expect(r.Statistics().OverallHitRate).To(BeZero())
		})
	})

	Context("OptimizeAll", func() {
		It("covers every created pool", func() {
			r.GetCache(ComputePool).Set("k", "v")
			r.GetCache(ConfigPool)
			results := r.OptimizeAll()
			Expect(results).To(HaveLen(2))
			for t, res := range results {
				Expect(res.Err).NotTo(HaveOccurred(), t.String())
				Expect(res.Successful).To(BeTrue())
			}
		})

		It("empty registry", func() {
			Expect(r.OptimizeAll()).To(BeEmpty())
		})
	})

	Context("ClearAll", func() {
		It("clears every pool", func() {
			r.GetCache(ComputePool).Set("k", "v")
			r.GetCache(ResponsePool).Set("k", "v")
			Expect(r.ClearAll()).To(BeTrue())
			Expect(r.Statistics().TotalEntries).To(BeZero())
		})

		It("no pools is a successful clear", func() {
			Expect(r.ClearAll()).To(BeTrue())
		})
	})

	Context("Reset", func() {
		It("drops pools", func() {
			old := r.GetCache(ComputePool)
			old.Set("k", "v")
			r.Reset()
			fresh := r.GetCache(ComputePool)
			Expect(fresh).NotTo(BeIdenticalTo(old))
			Expect(fresh.Get("k", "def")).To(Equal("def"))
		})
	})
})

var _ = Describe("PoolType", func() {
	It("round trips through its name", func() {
		for _, t := range PoolTypes() {
			parsed, ok := PoolTypeFromString(t.String())
			Expect(ok).To(BeTrue())
			Expect(parsed).To(Equal(t))
		}
	})
	It("unknown name", func() {
		_, ok := PoolTypeFromString("bogus")
		Expect(ok).To(BeFalse())
	})
	It("every known type has a default config", func() {
		defaults := DefaultConfigs()
		for _, t := range PoolTypes() {
			Expect(defaults).To(HaveKey(t))
		}
	})
})
