package main

import (
	"testing"

	"github.com/stealthrocket/xnet/internal/assert"
)

var rootTests = tests{
	"invoking xnet without a command prints the introduction": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "xnet - socket establishment toolkit\n")
		assert.Equal(t, stderr, "")
	},

	"the help option before the command shows the help usage": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\txnet <command> ")
		assert.Equal(t, stderr, "")
	},

	"an unknown option before the command is a usage error": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "--whatever", "version")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "xnet: ")
	},

	"an invalid log level is a usage error": func(t *testing.T) {
		_, stderr, exitCode := execute(t, "", "resolve", "--log-level", "chatty", "tcp", "127.0.0.1:80")
		assert.Equal(t, exitCode, 2)
		assert.Contains(t, stderr, "unsupported log level")
	},

	"the log level option overrides the configuration": func(t *testing.T) {
		_, stderr, exitCode := execute(t, "", "resolve", "--log-level", "debug", "tcp4", "127.0.0.1:80")
		assert.Equal(t, exitCode, 0)
		assert.Contains(t, stderr, "resolved address")
	},
}
