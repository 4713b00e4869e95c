package main

import (
	"github.com/jenkins-ecs/jenkins-ecs/pkg/cli"
)

// Version is set at build time with `-ldflags "-X main.Version=..."`.
var Version = "0.0.0-local"

func main() {
	jm := cli.JenkinsMain{
		Version: Version,
	}
	jm.Main()
}
