package main

import "github.com/kbtale/lease-sentinel/cmd"

func main() {
	cmd.Execute()
}
