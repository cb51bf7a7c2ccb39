package testutil

import (
	"math/rand"

	fuzz "github.com/google/gofuzz"
	"github.com/onsi/ginkgo"
)

var RandSource = rand.NewSource(ginkgo.GinkgoRandomSeed())
var Rand = rand.New(RandSource)
var Fuzzer = func() *fuzz.Fuzzer {
	f := fuzz.New()
	f.RandSource(RandSource)
	return f
}()
var Fuzz = Fuzzer.Fuzz

// RandString returns random ASCII string of length in [0, maxLen).
func RandString(maxLen int) string {
	b := make([]byte, Rand.Intn(maxLen))
	for i := range b {
		b[i] = byte('a' + Rand.Intn(26))
	}
	return string(b)
}
