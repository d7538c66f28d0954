package main

import "stemhub/cmd"

func main() {
	cmd.Execute()
}
