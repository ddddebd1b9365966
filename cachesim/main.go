// Command cachesim replays memory traces through a configurable cache.
package main

import "github.com/sarchlab/cachesim/cachesim/cmd"

func main() {
	cmd.Execute()
}
