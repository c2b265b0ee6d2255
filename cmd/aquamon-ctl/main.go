package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/aquaponics-lab/aquamon/db"
	"github.com/aquaponics-lab/aquamon/internal/client"
	"github.com/aquaponics-lab/aquamon/internal/model"
	"github.com/aquaponics-lab/aquamon/internal/render"
	"github.com/aquaponics-lab/aquamon/system/startup"
)

func main() {
	var baseURL, command, state, dbPath, servicePath, execPath, workdir string
	var enable bool
	flag.StringVar(&baseURL, "base-url", "http://localhost:8000", "Aquaponics server base URL")
	flag.StringVar(&command, "cmd", "", "Command to run: fetch, pump, light, simulate-failure, set-auto-refresh, commands, install-service")
	flag.StringVar(&state, "state", "toggle", "State for pump/light commands: toggle, on, off")
	flag.BoolVar(&enable, "enable", true, "Enable flag for simulate-failure and set-auto-refresh")
	flag.StringVar(&dbPath, "db", "data/aquamon.db", "Path to the settings database")
	flag.StringVar(&servicePath, "service-path", "/etc/systemd/system/aquamon.service", "Where to write the systemd unit")
	flag.StringVar(&execPath, "exec-path", "/usr/local/bin/aquamon", "Daemon binary path for the systemd unit")
	flag.StringVar(&workdir, "workdir", "/var/lib/aquamon", "Working directory for the systemd unit")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help || command == "" {
		fmt.Println("\nUsage of aquamon-ctl:")
		fmt.Println("  -cmd string\tCommand to run: fetch, pump, light, simulate-failure, set-auto-refresh, commands, install-service")
		fmt.Println("  -base-url string\tAquaponics server base URL")
		fmt.Println("  -state string\tState for pump/light commands: toggle, on, off")
		fmt.Println("  -enable\tEnable flag for simulate-failure and set-auto-refresh")
		fmt.Println("  -db string\tPath to the settings database")
		fmt.Println("  -service-path string\tWhere to write the systemd unit")
		fmt.Println("  -help\tShow this help message")
		os.Exit(0)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cl := client.New(baseURL, client.DefaultTimeout)

	var err error
	switch command {
	case "fetch":
		err = fetchAndPrint(ctx, cl)
	case "pump":
		err = cl.SendCommand(ctx, model.CommandRequest{Target: model.TargetPump, State: model.CommandState(state)})
	case "light":
		err = cl.SendCommand(ctx, model.CommandRequest{Target: model.TargetLight, State: model.CommandState(state)})
	case "simulate-failure":
		err = cl.SendCommand(ctx, model.CommandRequest{Target: model.TargetFailureSim, Enable: enable})
	case "set-auto-refresh":
		err = setAutoRefresh(dbPath, enable)
	case "commands":
		err = printCommands(dbPath)
	case "install-service":
		err = startup.InstallService(servicePath, execPath, workdir)
	default:
		fmt.Println("Invalid command")
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Command %s failed: %v\n", command, err)
		os.Exit(1)
	}
}

func fetchAndPrint(ctx context.Context, cl *client.Client) error {
	reading, err := cl.FetchLatest(ctx)
	if err != nil {
		return err
	}
	term := render.NewTerminal(os.Stdout)
	term.Apply(render.FromReading(render.Initial(), reading))
	return nil
}

func setAutoRefresh(dbPath string, enabled bool) error {
	conn, err := db.Open(dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()
	return db.UpdateAutoRefresh(conn, enabled)
}

func printCommands(dbPath string) error {
	conn, err := db.Open(dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	records, err := db.RecentCommands(conn, 20)
	if err != nil {
		return err
	}
	for _, r := range records {
		status := "ok"
		if !r.Succeeded {
			status = "failed"
		}
		fmt.Printf("%s  %-16s %-8s %s\n", r.CreatedAt, r.Target, r.State, status)
	}
	return nil
}
