package main

import "github.com/StinkyLord/stella/cmd"

func main() {
	cmd.Execute()
}
