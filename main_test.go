package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/stealthrocket/xnet/internal/network"
	"github.com/stealthrocket/xnet/internal/print/human"
	"github.com/stealthrocket/xnet/pkg/xnet"
)

func TestXnet(t *testing.T) {
	t.Run("config", configTests.run)
	t.Run("dial", dialTests.run)
	t.Run("help", helpTests.run)
	t.Run("listen", listenTests.run)
	t.Run("resolve", resolveTests.run)
	t.Run("root", rootTests.run)
	t.Run("unknown", unknownTests.run)
	t.Run("version", versionTests.run)
}

type configuration struct {
	Log    logConfiguration    `yaml:"log"`
	Buffer bufferConfiguration `yaml:"buffer"`
}

type logConfiguration struct {
	Level string `yaml:"level"`
}

type bufferConfiguration struct {
	Size string `yaml:"size"`
}

type tests map[string]func(*testing.T)

func (suite tests) run(t *testing.T) {
	names := maps.Keys(suite)
	slices.Sort(names)

	for _, name := range names {
		test := suite[name]
		t.Run(name, func(t *testing.T) {
			b, err := yaml.Marshal(configuration{
				Log:    logConfiguration{Level: "error"},
				Buffer: bufferConfiguration{Size: "4 KiB"},
			})
			if err != nil {
				t.Fatal("marshaling xnet configuration:", err)
			}

			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, b, 0666); err != nil {
				t.Fatal("writing xnet configuration:", err)
			}

			configPath, logLevel = human.Path(path), ""
			t.Cleanup(func() { configPath, logLevel = "", "" })

			test(t)
		})
	}
}

// execute runs the xnet command with args, input is the content of stdin.
func execute(t *testing.T, input string, args ...string) (stdout, stderr string, exitCode int) {
	return start(t, input, args...)()
}

// start runs the xnet command in a goroutine, the returned function waits for
// the command to exit.
func start(t *testing.T, input string, args ...string) func() (stdout, stderr string, exitCode int) {
	ctx, cancel := context.Background(), context.CancelFunc(func() {})
	if deadline, ok := t.Deadline(); ok {
		ctx, cancel = context.WithDeadline(ctx, deadline)
	}

	outbuf := new(lockedBuilder)
	errbuf := new(lockedBuilder)
	stdin, stdout, stderr = strings.NewReader(input), outbuf, errbuf

	done := make(chan int, 1)
	go func() { done <- root(ctx, args...) }()

	return func() (string, string, int) {
		defer cancel()
		code := <-done
		stdin, stdout, stderr = os.Stdin, os.Stdout, os.Stderr
		return outbuf.String(), errbuf.String(), code
	}
}

// lockedBuilder is a strings.Builder which can be written by the loggers of
// concurrent goroutines.
type lockedBuilder struct {
	mu sync.Mutex
	sb strings.Builder
}

func (b *lockedBuilder) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.Write(p)
}

func (b *lockedBuilder) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.String()
}

// socketDir returns a short temporary directory to create unix sockets in,
// the paths of test directories may exceed the size of socket addresses.
func socketDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "xnet")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// dialRetry dials until the peer is ready to accept the connection.
func dialRetry(t *testing.T, p *xnet.BuildParams) xnet.Socket {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for {
		s, err := xnet.DialEx(context.Background(), p)
		if err == nil {
			return s
		}
		if !errors.Is(err, network.ENOENT) && !errors.Is(err, network.ECONNREFUSED) {
			t.Fatal("dial:", err)
		}
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for the peer:", err)
		}
		if p.LocalAddress != "" {
			os.Remove(p.LocalAddress)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func sendMessage(t *testing.T, s xnet.Socket, msg string) {
	t.Helper()
	n, err := s.SendTo([][]byte{[]byte(msg)}, nil, 0)
	if err != nil {
		t.Fatal("send:", err)
	}
	if n != len(msg) {
		t.Fatalf("short send: %d/%d", n, len(msg))
	}
}
