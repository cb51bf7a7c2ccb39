package cache

import (
	. "github.com/onsi/ginkgo"
	"github.com/stretchr/testify/mock"
)

type MockCallback struct {
	mock.Mock
}

func (m *MockCallback) Expire(n *node) {
	By("Expire " + n.Key)
	n.disown()
	m.Called(n)
}

func (m *MockCallback) Evict(n *node) {
	By("Evict " + n.Key)
	n.disown()
	m.Called(n)
}
