package main

import "github.com/letmecheque/letmecheque/cmd"

func main() {
	cmd.Execute()
}
