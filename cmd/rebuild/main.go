// Command rebuild runs a workflow file's tasks, materializing one
// realization per distinct combination of branch values a task actually
// depends on.
package main

import (
	"os"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
