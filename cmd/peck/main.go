package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/peck"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	p, err := peck.New(nil)
	if err != nil {
		log.Crit("Failed to create peck", "message", err)
	}
	registerSuites(p)

	peck.Main(p, "peck", fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate))
}
