// Command bookgate serves the book catalogue REST API.
package main

import "github.com/book-gate/bookgate/cmd/bookgate/cmd"

func main() {
	cmd.Execute()
}
