package main

import "github.com/RyanBlaney/chromaprint/cmd"

func main() {
	cmd.Execute()
}
