package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	fx "github.com/robotalks/pinvault/pkg/framework"
	env "github.com/robotalks/pinvault/pkg/l0/env"
	telemetry "github.com/robotalks/pinvault/pkg/l1/env"
)

func init() {
	env.SetupFlags()
	telemetry.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	vaultEnv := env.NewConfig().MustNewEnv()
	runner := fx.NewRunner().HandleSignals()
	if reporter := telemetry.NewConfig().MustNewReporter(); reporter != nil {
		vaultEnv.AddObserver(reporter)
		runner.Go(reporter)
	}
	vault, err := vaultEnv.Runnable()
	if err != nil {
		glog.Fatalf("vault: %v", err)
	}
	if err := runner.Go(vault).Wait(); err != nil {
		glog.Fatalf("halted: %v", err)
	}
}
