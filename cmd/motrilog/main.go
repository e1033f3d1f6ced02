package main

import "github.com/Ma16q/MotriLog/cmd/motrilog/cmd"

func main() {
	cmd.Execute()
}
