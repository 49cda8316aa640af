package main

import "github.com/theirongolddev/iexpense/cmd"

func main() {
	cmd.Execute()
}
