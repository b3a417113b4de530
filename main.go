package main

import (
	"github.com/dszqbsm/jobcrawler/cmd"
)

func main() {
	cmd.Execute()
}
