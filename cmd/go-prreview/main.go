// Command go-prreview generates self-contained plain-text review files
// for GitHub pull requests.
package main

import "github.com/mrz1836/go-prreview/internal/cli"

func main() {
	cli.Execute()
}
