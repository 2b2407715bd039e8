package testkit

import (
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/shashiranjanraj/bgfixture/pkg/notifier"
)

// MockListener is a testify-backed notifier.Listener. It records every
// event name it receives and answers with whatever the expectations say.
//
//	l := testkit.NewStepListener([]testkit.ListenerStep{{Event: "filter.added", Error: "boom"}})
//	n.AddListener(l)
type MockListener struct {
	m     mock.Mock
	mu    sync.Mutex
	names []string
}

// NewMockListener returns a listener that accepts every event.
func NewMockListener() *MockListener {
	l := &MockListener{}
	l.m.On("HandleEvent", mock.Anything).Return(nil)
	return l
}

// NewStepListener fails the events named by steps with their error and
// accepts everything else.
func NewStepListener(steps []ListenerStep) *MockListener {
	l := &MockListener{}
	for _, step := range steps {
		var err error
		if step.Error != "" {
			err = errors.New(step.Error)
		}
		l.m.On("HandleEvent", step.Event).Return(err)
	}
	l.m.On("HandleEvent", mock.Anything).Return(nil)
	return l
}

func (l *MockListener) HandleEvent(e notifier.Event) error {
	l.mu.Lock()
	l.names = append(l.names, e.Name)
	l.mu.Unlock()

	return l.m.Called(e.Name).Error(0)
}

// Events returns the names received so far, in order.
func (l *MockListener) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.names...)
}

// WasCalled reports how many times event was received.
func (l *MockListener) WasCalled(event string) int {
	n := 0
	for _, name := range l.Events() {
		if name == event {
			n++
		}
	}
	return n
}

// Mock exposes the underlying testify mock.
func (l *MockListener) Mock() *mock.Mock { return &l.m }
