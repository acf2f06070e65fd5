package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stealthrocket/xnet/internal/assert"
	"github.com/stealthrocket/xnet/internal/print/human"
)

var configTests = tests{
	"show the config command help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "config", "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\txnet config ")
		assert.Equal(t, stderr, "")
	},

	"the text output is the content of the configuration file": func(t *testing.T) {
		b, err := os.ReadFile(string(configPath))
		assert.OK(t, err)

		stdout, stderr, exitCode := execute(t, "", "config")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, string(b))
		assert.Equal(t, stderr, "")
	},

	"the text output shows the defaults when the file does not exist": func(t *testing.T) {
		configPath = human.Path(filepath.Join(t.TempDir(), "missing.yaml"))

		stdout, _, exitCode := execute(t, "", "config")
		assert.Equal(t, exitCode, 0)
		assert.Contains(t, stdout, "level: info\n")
		assert.Contains(t, stdout, "size: 64 KiB\n")
	},

	"the json output has the effective configuration": func(t *testing.T) {
		stdout, _, exitCode := execute(t, "", "config", "-o", "json")
		assert.Equal(t, exitCode, 0)

		var c struct {
			Log struct {
				Level string `json:"level"`
			} `json:"log"`
			Socket struct {
				NoDelay bool `json:"nodelay"`
				RecvBuf *int `json:"recvbuf"`
			} `json:"socket"`
			Buffer struct {
				Size int `json:"size"`
			} `json:"buffer"`
		}
		assert.OK(t, json.Unmarshal([]byte(stdout), &c))
		assert.Equal(t, c.Log.Level, "error")
		assert.True(t, c.Socket.NoDelay)
		assert.True(t, c.Socket.RecvBuf == nil)
		assert.Equal(t, c.Buffer.Size, 4096)
	},

	"the yaml output has the effective configuration": func(t *testing.T) {
		stdout, _, exitCode := execute(t, "", "config", "--output", "yaml")
		assert.Equal(t, exitCode, 0)
		assert.Contains(t, stdout, "level: error\n")
		assert.Contains(t, stdout, "size: 4 KiB\n")
	},

	"the configuration path can be passed as an option": func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "other.yaml")
		assert.OK(t, os.WriteFile(path, []byte("listen:\n  max: 42\n"), 0666))

		stdout, _, exitCode := execute(t, "", "config", "-c", path, "-o", "yaml")
		assert.Equal(t, exitCode, 0)
		assert.Contains(t, stdout, "max: 42\n")
	},

	"unknown fields in the configuration cause an error": func(t *testing.T) {
		assert.OK(t, os.WriteFile(string(configPath), []byte("sockets: {}\n"), 0666))

		_, stderr, exitCode := execute(t, "", "config", "-o", "json")
		assert.Equal(t, exitCode, 1)
		assert.HasPrefix(t, stderr, "ERR: xnet config: ")
	},

	"passing an unsupported output format causes an error": func(t *testing.T) {
		_, _, exitCode := execute(t, "", "config", "-o", "xml")
		assert.Equal(t, exitCode, 2)
	},

	"passing arguments to the command causes an error": func(t *testing.T) {
		_, _, exitCode := execute(t, "", "config", "whatever")
		assert.Equal(t, exitCode, 2)
	},
}
