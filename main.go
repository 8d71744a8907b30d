package main

import "github.com/teamideas/idea-portal/cmd"

func main() {
	cmd.Execute()
}
