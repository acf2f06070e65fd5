// Package config loads the configuration of the xnet command line tool.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/containerd/log"
	"gopkg.in/yaml.v3"

	"github.com/stealthrocket/xnet/internal/buffer"
	"github.com/stealthrocket/xnet/internal/print/human"
	"github.com/stealthrocket/xnet/pkg/xnet"
)

const (
	// DefaultPath is the location of the configuration file unless the
	// XNETCONFIG environment variable or the --config option are set.
	DefaultPath human.Path = "~/.xnet/config.yaml"

	// PathEnv is the environment variable overriding DefaultPath.
	PathEnv = "XNETCONFIG"
)

// Config is the xnet configuration.
type Config struct {
	Log struct {
		Level string `json:"level"`
	} `json:"log"`

	Socket Socket `json:"socket"`

	Buffer struct {
		Size human.Bytes `json:"size"`
	} `json:"buffer"`

	Listen struct {
		Rate Nullable[human.Rate] `json:"rate"`
		Max  int                  `json:"max"`
	} `json:"listen"`
}

// Socket are the options applied to the sockets created by the commands.
type Socket struct {
	ReuseAddr bool                  `json:"reuseaddr"`
	ReusePort bool                  `json:"reuseport"`
	Broadcast bool                  `json:"broadcast"`
	NoDelay   bool                  `json:"nodelay"`
	KeepAlive bool                  `json:"keepalive"`
	RecvBuf   Nullable[human.Bytes] `json:"recvbuf"`
	SendBuf   Nullable[human.Bytes] `json:"sendbuf"`
}

// Default is the default configuration.
func Default() *Config {
	c := new(Config)
	c.Log.Level = log.InfoLevel.String()
	c.Socket.NoDelay = true
	c.Buffer.Size = 64 * human.KiB
	c.Listen.Rate = Null[human.Rate]()
	return c
}

// Load opens and reads the configuration file at path.
func Load(path human.Path) (*Config, error) {
	r, _, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Read(r)
}

// Open opens the configuration file at path. When the file does not exist,
// the returned reader yields the default configuration.
func Open(path human.Path) (io.ReadCloser, string, error) {
	p, err := path.Resolve()
	if err != nil {
		return nil, p, err
	}
	f, err := os.Open(p)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, p, err
		}
		b, _ := yaml.Marshal(Default())
		return io.NopCloser(bytes.NewReader(b)), p, nil
	}
	return f, p, nil
}

// Read reads and parses configuration. Fields missing from r keep their
// default values, unknown fields are errors.
func Read(r io.Reader) (*Config, error) {
	c := Default()
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return c, nil
		}
		return nil, err
	}
	return c, nil
}

// SocketOptions converts the socket section to the options applied by the
// pre-call hook of the commands.
func (c *Config) SocketOptions() xnet.SocketOptions {
	opts := xnet.SocketOptions{
		ReuseAddr: c.Socket.ReuseAddr,
		ReusePort: c.Socket.ReusePort,
		Broadcast: c.Socket.Broadcast,
		NoDelay:   c.Socket.NoDelay,
		KeepAlive: c.Socket.KeepAlive,
	}
	if size, ok := c.Socket.RecvBuf.Value(); ok {
		opts.RecvBuffer = int(size)
	}
	if size, ok := c.Socket.SendBuf.Value(); ok {
		opts.SendBuffer = int(size)
	}
	return opts
}

// BufferPool returns a pool of accumulators of the configured size, rounded
// up to a multiple of the page size.
func (c *Config) BufferPool() *buffer.Pool {
	size := int(c.Buffer.Size)
	if size <= 0 {
		size = buffer.DefaultSize
	}
	return &buffer.Pool{Size: buffer.Align(size, os.Getpagesize())}
}
