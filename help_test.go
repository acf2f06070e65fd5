package main

import (
	"testing"

	"github.com/stealthrocket/xnet/internal/assert"
)

var helpTests = tests{
	"calling help with an unknown command causes an error": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "help", "whatever")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.Equal(t, stderr, "xnet help whatever: unknown command\n")
	},

	"passing an unsupported flag to the command causes an error": func(t *testing.T) {
		stdout, _, exitCode := execute(t, "", "help", "-_")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
	},

	"show the help command help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "help", "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\txnet <command> ")
		assert.Equal(t, stderr, "")
	},

	"show the help command help with the long option": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "help", "--help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\txnet <command> ")
		assert.Equal(t, stderr, "")
	},

	"show the help command help after a command name": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "help", "dial", "--help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\txnet <command> ")
		assert.Equal(t, stderr, "")
	},

	"xnet help config": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "help", "config")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\txnet config ")
		assert.Equal(t, stderr, "")
	},

	"xnet help dial": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "help", "dial")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\txnet dial ")
		assert.Equal(t, stderr, "")
	},

	"xnet help help": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "help", "help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\txnet <command> ")
		assert.Equal(t, stderr, "")
	},

	"xnet help listen": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "help", "listen")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\txnet listen ")
		assert.Equal(t, stderr, "")
	},

	"xnet help resolve": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "help", "resolve")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\txnet resolve ")
		assert.Equal(t, stderr, "")
	},

	"xnet help version": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "help", "version")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\txnet version\n")
		assert.Equal(t, stderr, "")
	},
}
