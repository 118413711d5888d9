package main

import "github.com/elliot-zen/cursorup/cmd/cursorup/cmd"

func main() {
	cmd.Execute()
}
