// patmaint is the pipeline CLI: load staged rows, run the
// transformation, apply migrations, and print reports.
package main

import "github.com/ipfolio/patmaint/internal/interfaces/cli"

func main() {
	cli.Execute()
}
