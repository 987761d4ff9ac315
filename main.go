package main

import "charityfund/cmd"

func main() {
	cmd.Execute()
}
