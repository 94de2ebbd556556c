package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd_PrintsCurrentRootVersion(t *testing.T) {
	SetVersion("1.2.3")
	c := newVersionCmd()
	var out bytes.Buffer
	c.SetOut(&out)
	c.Run(c, nil)
	assert.Equal(t, "mcpconform version 1.2.3\n", out.String())
}
