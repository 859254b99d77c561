package main

import "github.com/masmgr/git-bard/cmd"

func main() {
	cmd.Run()
}
