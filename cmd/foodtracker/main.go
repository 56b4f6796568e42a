package main

import "github.com/vanshika2720/Sustainable-Food-Tracker/internal/cli"

func main() {
	cli.Execute()
}
