package main

import "github.com/swen746/repo-miner/cmd"

func main() {
	cmd.Execute()
}
