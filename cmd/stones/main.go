package main

import "github.com/mcoot/stonecluster/internal/cli"

func main() {
	cli.Execute()
}
