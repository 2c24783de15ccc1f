package main

import "github.com/mj1618/ui-inspector/cmd"

func main() {
	cmd.Execute()
}
