package main

import "github.com/frahmantamala/chat-users/cmd"

func main() {
	cmd.Execute()
}
