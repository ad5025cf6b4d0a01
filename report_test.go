package zonecheck

import (
	"io"

	"github.com/sirupsen/logrus"
)

// captureHook appends every formatted log message to a slice, used by
// tests that need to assert on findings emitted through a Sink.
type captureHook struct {
	messages *[]string
}

func (h *captureHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *captureHook) Fire(e *logrus.Entry) error {
	*h.messages = append(*h.messages, e.Message)
	return nil
}

// testLogger returns a logrus.Logger whose output is discarded but whose
// messages are captured into messages for assertions.
func testLogger(messages *[]string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.DebugLevel)
	log.AddHook(&captureHook{messages: messages})
	return log
}
