package logx

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

// captureLogger returns a logger writing into a buffer.
func captureLogger(id string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Logger{id: id, logger: log.New(&buf, "", 0)}, &buf
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger("akira-001")
	if logger.ID() != "akira-001" {
		t.Errorf("expected ID 'akira-001', got '%s'", logger.ID())
	}
}

func TestLogFormat(t *testing.T) {
	logger, buf := captureLogger("registry")
	logger.Info("created task %s", "t-123")

	output := buf.String()
	if !strings.Contains(output, "[registry]") {
		t.Errorf("expected component ID in output, got: %s", output)
	}
	if !strings.Contains(output, "INFO") {
		t.Errorf("expected log level in output, got: %s", output)
	}
	if !strings.Contains(output, "created task t-123") {
		t.Errorf("expected formatted message in output, got: %s", output)
	}
}

func TestDebugSuppressedByDefault(t *testing.T) {
	SetDebug(false)
	defer SetDebug(false)

	logger, buf := captureLogger("llm")
	logger.Debug("should not appear")

	if buf.Len() != 0 {
		t.Errorf("expected no debug output, got: %s", buf.String())
	}
}

func TestDebugDomainFiltering(t *testing.T) {
	SetDebug(true, "llm")
	defer SetDebug(false)

	if !IsDebugEnabled("llm") {
		t.Error("expected llm domain to be enabled")
	}
	if IsDebugEnabled("registry") {
		t.Error("expected registry domain to be disabled")
	}

	// No domain filter enables everything.
	SetDebug(true)
	if !IsDebugEnabled("registry") {
		t.Error("expected all domains enabled when no filter set")
	}
}

func TestWithID(t *testing.T) {
	logger, buf := captureLogger("orchestrator")
	child := logger.WithID("yuki-002")
	child.Warn("slow response")

	output := buf.String()
	if !strings.Contains(output, "[yuki-002]") {
		t.Errorf("expected child ID in output, got: %s", output)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("expected nil for nil error")
	}
}
