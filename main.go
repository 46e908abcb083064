package main

import (
	"github.com/ginjaninja78/vendor-file-processor/cmd"
)

func main() {
	cmd.Execute()
}
