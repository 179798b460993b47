package main

import "github.com/gaurav-prasanna/shelfpipe/cmd"

func main() {
	cmd.Execute()
}
