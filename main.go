package main

import "github.com/user/posture-adk/cmd"

func main() {
	cmd.Execute()
}
