package go_func_utils

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSafeGo_RunsFunction(t *testing.T) {
	var buf bytes.Buffer
	done := make(chan struct{})

	SafeGo(log.New(&buf, "", 0), "locate", func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("function did not run")
	}
	assert.Empty(t, buf.String())
}
