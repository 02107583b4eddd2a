// Package newsfeedcli provides common CLI utilities and boilerplate for the
// newsfeed binaries.
//
// This package includes standardized service configuration, common CLI flags,
// config-file seeding, structured logging setup, CloudWatch metrics and build
// information tracking.
package newsfeedcli

import (
	"fmt"
	"runtime/debug"

	"github.com/urfave/cli/v2"
)

func App(service Service, action cli.ActionFunc, flags ...cli.Flag) *cli.App {
	return &cli.App{
		Name:                 service.Name,
		Usage:                fmt.Sprintf("%v for the newsfeed service", service.Name),
		Version:              service.Version,
		EnableBashCompletion: true,
		Before:               SeedFromConfigFile,
		Action:               action,
		Flags:                flags,
	}
}

func CommitHash() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
		return info.Main.Version
	}
	return "unknown"
}
