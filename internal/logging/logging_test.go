package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetLevel("warn")

	if err := SetLevel("debug"); err != nil {
		t.Fatal(err)
	}
	L().Debug("keeping same solution", "t", 1.0)
	if !strings.Contains(buf.String(), "keeping same solution") {
		t.Errorf("debug record not written: %q", buf.String())
	}

	buf.Reset()
	if err := SetLevel("error"); err != nil {
		t.Fatal(err)
	}
	L().Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info record written at error level: %q", buf.String())
	}

	if err := SetLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}
