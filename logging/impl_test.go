package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.viam.com/test"
)

func newBufferLogger(name string, level Level) (Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &impl{name, NewAtomicLevelAt(level), true, []Appender{NewWriterAppender(buf)}}, buf
}

func TestConsoleOutputFormat(t *testing.T) {
	logger, buf := newBufferLogger("impl", DEBUG)

	logger.Warnw("plain message")
	line, err := buf.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)
	parts := strings.Split(strings.TrimSuffix(line, "\n"), "\t")
	test.That(t, len(parts), test.ShouldEqual, 5)
	test.That(t, len(parts[0]), test.ShouldEqual, len("2023-10-30T09:12:09.459Z"))
	test.That(t, parts[1], test.ShouldEqual, "WARN")
	test.That(t, parts[2], test.ShouldEqual, "impl")
	test.That(t, parts[3], test.ShouldStartWith, "logging/impl_test.go:")
	test.That(t, parts[4], test.ShouldEqual, "plain message")

	logger.Debugw("decoded", "element", "face", "count", 12)
	line, err = buf.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)
	parts = strings.Split(strings.TrimSuffix(line, "\n"), "\t")
	test.That(t, len(parts), test.ShouldEqual, 6)
	test.That(t, parts[1], test.ShouldEqual, "DEBUG")
	fields := map[string]any{}
	test.That(t, json.Unmarshal([]byte(parts[5]), &fields), test.ShouldBeNil)
	test.That(t, fields, test.ShouldResemble, map[string]any{"element": "face", "count": float64(12)})
}

func TestUnpairedKeyIsReported(t *testing.T) {
	logger, buf := newBufferLogger("", DEBUG)
	logger.Warnw("msg", "dangling")
	test.That(t, buf.String(), test.ShouldContainSubstring, "unpaired log key")
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger("impl", WARN)

	logger.Debugw("hidden")
	test.That(t, buf.Len(), test.ShouldEqual, 0)
	logger.Warnw("shown")
	test.That(t, buf.String(), test.ShouldContainSubstring, "shown")

	buf.Reset()
	logger.SetLevel(ERROR)
	logger.Warnw("hidden")
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	logger.SetLevel(DEBUG)
	logger.Debugw("shown")
	test.That(t, buf.String(), test.ShouldContainSubstring, "DEBUG")
}

func TestSublogger(t *testing.T) {
	logger, buf := newBufferLogger("root", WARN)
	sub := logger.Sublogger("ply")
	sub.Warnw("hello")
	test.That(t, buf.String(), test.ShouldContainSubstring, "\troot.ply\t")

	buf.Reset()
	sub.Debugw("below the inherited level")
	test.That(t, buf.Len(), test.ShouldEqual, 0)
	test.That(t, sub.Sync(), test.ShouldBeNil)

	blank, _ := newBufferLogger("", DEBUG)
	test.That(t, blank.Sublogger("ply").(*impl).name, test.ShouldEqual, "ply")
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Sublogger("ply").Warnw("texture unresolved", "name", "wood.png")

	test.That(t, logs.FilterMessage("texture unresolved").Len(), test.ShouldEqual, 1)
	entry := logs.All()[0]
	test.That(t, entry.LoggerName, test.ShouldEqual, "ply")
	test.That(t, entry.ContextMap()["name"], test.ShouldEqual, "wood.png")
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.expected)
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldBeError, `unknown log level: "loud"`)
}
