package main

import (
	"fmt"
	"os"

	"github.com/intentswaps/swapd"
)

func main() {
	if err := swapd.Run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
