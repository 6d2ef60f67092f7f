// Command rbee-readme is a reference out-of-process plugin. It checks that a
// repository has a README with a minimum number of words.
//
// Register it by path:
//
//	plugins = ["javac", "/usr/local/bin/rbee-readme"]
//
//	[readme]
//	min_words = 20
package main

import (
	"github.com/raphi011/rbee/internal/ext/remote/rpc"
)

func main() {
	rpc.Serve(&server{})
}
