package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func demoSetAction(on bool) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.repo.SetDemoMode(ctx, on); err != nil {
			return fmt.Errorf("set demo mode: %w", err)
		}
		fmt.Printf("demo mode %s\n", onOff(on))
		return nil
	}
}

func demoStatusAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	on, err := app.creds.Demo(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("demo mode %s\n", onOff(on))
	return nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
