package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"vrc-sysstat/internal/agent"
	"vrc-sysstat/internal/config"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	defaults := config.Default()

	var (
		noTime      bool
		noCPU       bool
		noRAM       bool
		noGPU       bool
		interval    time.Duration
		host        string
		port        int
		configPath  string
		probeAddr   string
		notify      bool
		logLevel    string
		logJSON     bool
		showVersion bool
	)

	flag.BoolVar(&noTime, "t", false, "do not show the time line")
	flag.BoolVar(&noTime, "no-time", false, "do not show the time line")
	flag.BoolVar(&noCPU, "c", false, "do not show cpu usage")
	flag.BoolVar(&noCPU, "no-cpu", false, "do not show cpu usage")
	flag.BoolVar(&noRAM, "r", false, "do not show ram usage")
	flag.BoolVar(&noRAM, "no-ram", false, "do not show ram usage")
	flag.BoolVar(&noGPU, "g", false, "do not show gpu stats")
	flag.BoolVar(&noGPU, "no-gpu", false, "do not show gpu stats")
	flag.DurationVar(&interval, "i", defaults.Interval, "time between updates (minimum 1s)")
	flag.DurationVar(&interval, "interval", defaults.Interval, "time between updates (minimum 1s)")
	flag.StringVar(&host, "host", defaults.Host, "osc destination host")
	flag.IntVar(&port, "port", defaults.Port, "osc destination port")
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&probeAddr, "probe-addr", "", "tcp address for the status probe endpoint (disabled when empty)")
	flag.BoolVar(&notify, "notify", defaults.Notify, "play the in-game notification sound on updates")
	flag.StringVar(&logLevel, "log-level", defaults.LogLevel, "log level: debug, info, warn or error")
	flag.BoolVar(&logJSON, "log-json", defaults.LogJSON, "emit logs as json")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Only flags the user actually set override the file and env layers.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t", "no-time":
			cfg.ShowTime = !noTime
		case "c", "no-cpu":
			cfg.ShowCPU = !noCPU
		case "r", "no-ram":
			cfg.ShowRAM = !noRAM
		case "g", "no-gpu":
			cfg.ShowGPU = !noGPU
		case "i", "interval":
			cfg.Interval = interval
		case "host":
			cfg.Host = host
		case "port":
			cfg.Port = port
		case "probe-addr":
			cfg.ProbeListenAddr = probeAddr
		case "notify":
			cfg.Notify = notify
		case "log-level":
			cfg.LogLevel = strings.ToLower(logLevel)
		case "log-json":
			cfg.LogJSON = logJSON
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := agent.BuildLogger(cfg)

	a, err := agent.New(cfg, logger)
	if err != nil {
		logger.Error("agent initialization failed", "error", err)
		os.Exit(1)
	}
	if err := a.Run(context.Background()); err != nil {
		logger.Error("agent runtime failed", "error", err)
		os.Exit(1)
	}
}
