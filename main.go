package main

import "github.com/smerrill/playsync/cmd"

func main() {
	cmd.Execute()
}
