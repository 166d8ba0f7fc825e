package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"time"
)

// envOrString returns the environment variable value if set, otherwise returns the default value.
func envOrString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func parseFlags() *Config {
	configPath := flag.String("config", envOrString("CONFIG_FILE", "config.yaml"), "Path to YAML config file")
	apiKey := flag.String("apikey", "", "Octopus API key")
	accountID := flag.String("accountID", "", "Octopus Account ID")
	rangeDays := flag.Int("days", 0, "Number of days to fetch (default from config)")
	previous := flag.Bool("previous", false, "Also fetch the preceding period for comparison")
	outCSV := flag.String("out", "", "Output CSV file")
	outXLSX := flag.String("xlsx", "", "Output XLSX file (optional)")
	startTime := flag.String("startTime", "", "Start time for data fetching (optional, RFC3339 format)")
	endTime := flag.String("endTime", "", "End time for data fetching (optional, RFC3339 format)")
	watch := flag.Bool("watch", false, "Keep running and refresh on the configured cron schedule")
	flag.Parse()

	config, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override file and environment.
	if *apiKey != "" {
		config.APIKey = *apiKey
	}
	if *accountID != "" {
		config.AccountID = *accountID
	}
	if *rangeDays != 0 {
		config.RangeDays = *rangeDays
	}
	if *previous {
		config.ComparePrevious = true
	}
	if *outCSV != "" {
		config.OutputCSV = *outCSV
	}
	if *outXLSX != "" {
		config.OutputXLSX = *outXLSX
	}
	if !*watch {
		config.WatchCron = ""
	} else if config.WatchCron == "" {
		config.WatchCron = "0 * * * *" // hourly
	}

	if *startTime != "" {
		parsedTime, err := time.Parse(time.RFC3339, *startTime)
		if err != nil {
			log.Fatalf("Invalid startTime format: %v", err)
		}
		config.StartTime = &parsedTime
	}
	if *endTime != "" {
		parsedTime, err := time.Parse(time.RFC3339, *endTime)
		if err != nil {
			log.Fatalf("Invalid endTime format: %v", err)
		}
		config.EndTime = &parsedTime
	}

	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid configuration. Usage: %s -apikey=... -accountID=... : %v", os.Args[0], err)
	}

	return config
}

func main() {
	config := parseFlags()

	app, err := NewApp(config)
	if err != nil {
		log.Fatalf("Application error: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}

	if config.WatchCron == "" {
		return
	}

	scheduler := NewScheduler(app)
	if err := scheduler.Register(config.WatchCron); err != nil {
		log.Fatalf("Scheduler error: %v", err)
	}
	scheduler.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
	scheduler.Stop()
}
