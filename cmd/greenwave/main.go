// Greenwave is the command line for running grid traffic scenarios and
// tuning their signal timings.
package main

import "github.com/tebeka/atexit"

func main() {
	Execute()
	atexit.Exit(0)
}
