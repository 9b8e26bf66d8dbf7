package main

import "github.com/RyanBlaney/stft-explainer/cmd"

func main() {
	cmd.Execute()
}
