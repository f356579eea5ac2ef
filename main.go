package main

import "github.com/frahmantamala/wanderhub/cmd"

func main() {
	cmd.Execute()
}
