// transfer copies a directory tree with resume support and live progress.
package main

import "transfer/cmd"

func main() {
	cmd.Execute()
}
