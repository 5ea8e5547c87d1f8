// Command cdbgen records compiler invocations into a compilation database.
//
// Installed as cdbgen-<compiler> (for example cdbgen-gcc), it merges the
// invocation into compile_commands.json and then runs the real compiler.
// Under any other name it provides commands to inspect the database.
package main

import (
	"context"
	"os"

	"github.com/roach88/cdbgen/internal/cli"
	"github.com/roach88/cdbgen/internal/dispatch"
)

func main() {
	ctx := context.Background()
	if dispatch.IsWrapperName(os.Args[0]) {
		os.Exit(cli.RunWrapper(ctx, os.Args))
	}
	os.Exit(cli.Execute(ctx, os.Args[1:]))
}
