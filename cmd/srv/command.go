package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "tokenraffle"
	app.Usage = ""
	app.Commands = []*cli.Command{
		{
			Action:      server.startApi,
			Name:        "api",
			Usage:       "Start the raffle api service",
			Flags:       []cli.Flag{},
			Category:    "Api",
			Description: `Serves raffle creation, listing, and entry.`,
		},
		{
			Action:      server.startCron,
			Name:        "cron",
			Usage:       "Start the raffle close sweeper",
			Flags:       []cli.Flag{},
			Category:    "Worker",
			Description: `Draws winners of ended raffles and pays token prizes out.`,
		},
	}

	s.app = app
}
