package main

import "comment-mirror/cmd"

func main() {
	cmd.Execute()
}
