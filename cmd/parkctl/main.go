package main

import (
	"github.com/cityparkhub/parkctl/internal/cli"
)

func main() {
	cli.Execute()
}
