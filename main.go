package main

import "github.com/Alijeyrad/medibook_backend/cmd"

func main() {
	cmd.Execute()
}
