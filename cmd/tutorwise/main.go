package main

import "github.com/habiliai/tutorwise/cmd/tutorwise/cmd"

func main() {
	cmd.Execute()
}
