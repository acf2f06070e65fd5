package main

import (
	"context"
)

const unknownCommand = `xnet %s: unknown command
For a list of commands available, run 'xnet help'.`

func unknown(ctx context.Context, cmd string) error {
	return usageError(unknownCommand, cmd)
}
