package config

import (
	"time"

	. "github.com/onsi/ginkgo"
	gomega "github.com/onsi/gomega"

	"github.com/skipor/cachepool"
	"github.com/skipor/cachepool/log"
)

var _ = Describe("parseSize", func() {
	Test := func(input string, expected int64) {
		It(input, func() {
			size, err := parseSize(input)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(size).To(gomega.Equal(expected))
		})
	}
	Test("100b", 100)
	Test("1024k", 1024<<10)
	Test("64m", 64<<20)
	Test("2g", 2<<30)

	TestErr := func(input string) {
		It("rejects "+input, func() {
			_, err := parseSize(input)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	}
	TestErr("")
	TestErr("m")
	TestErr("64")
	TestErr("64t")
	TestErr("xxm")
})

var _ = Describe("Merge", func() {
	It("override wins only for non zero fields", func() {
		def := Default()
		Merge(def, &Config{LogLevel: "debug"})
		gomega.Expect(def.LogLevel).To(gomega.Equal("debug"))
		gomega.Expect(def.LogDestination).To(gomega.Equal("stderr"))
	})

	It("pool sections merge per field", func() {
		def := Default()
		Merge(def, &Config{Pools: map[string]PoolConfig{
			"compute": {MaxEntries: 9000},
		}})
		pc := def.Pools["compute"]
		gomega.Expect(pc.MaxEntries).To(gomega.Equal(9000))
		gomega.Expect(pc.DefaultTTL).To(gomega.Equal("5m"), "untouched fields keep defaults")
		gomega.Expect(def.Pools).To(gomega.HaveKey("response"))
	})

	It("new pool section is added", func() {
		def := &Config{LogLevel: "info"}
		Merge(def, &Config{Pools: map[string]PoolConfig{
			"config": {MaxEntries: 10},
		}})
		gomega.Expect(def.Pools["config"].MaxEntries).To(gomega.Equal(10))
	})
})

var _ = Describe("Parse", func() {
	It("defaults parse cleanly", func() {
		parsed, err := Parse(*Default())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(parsed.LogLevel).To(gomega.Equal(log.InfoLevel))
		gomega.Expect(parsed.Pools).To(gomega.HaveLen(3))

		compute := parsed.Pools[cachepool.ComputePool]
		gomega.Expect(compute.MaxEntries).To(gomega.Equal(500))
		gomega.Expect(compute.DefaultTTL).To(gomega.Equal(5 * time.Minute))
		gomega.Expect(compute.MaxMemory).To(gomega.BeEquivalentTo(32 << 20))
	})

	It("rejects unknown pool name", func() {
		conf := *Default()
		conf.Pools["bogus"] = PoolConfig{}
		_, err := Parse(conf)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	It("rejects bad TTL", func() {
		conf := *Default()
		conf.Pools["compute"] = PoolConfig{DefaultTTL: "soon"}
		_, err := Parse(conf)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	It("rejects bad log level", func() {
		conf := *Default()
		conf.LogLevel = "chatty"
		_, err := Parse(conf)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	It("empty pool fields mean engine defaults", func() {
		conf := *Default()
		conf.Pools = map[string]PoolConfig{"compute": {}}
		parsed, err := Parse(conf)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		compute := parsed.Pools[cachepool.ComputePool]
		gomega.Expect(compute.MaxEntries).To(gomega.BeZero())
		gomega.Expect(compute.DefaultTTL).To(gomega.BeZero())
		gomega.Expect(compute.MaxMemory).To(gomega.BeZero())
	})
})
