package main

import (
	"fmt"
	"os"
)

// Version is set at build time via ldflags
var Version = "dev"

const pidFile = "mathdrilld.pid"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "topics":
		err = cmdTopics(os.Args[2:])
	case "generate":
		err = cmdGenerate(os.Args[2:])
	case "worksheet":
		err = cmdWorksheet(os.Args[2:])
	case "answers":
		err = cmdAnswers(os.Args[2:])
	case "list":
		err = cmdList(os.Args[2:])
	case "start":
		err = cmdStart()
	case "stop":
		err = cmdStop()
	case "status":
		err = cmdStatus()
	case "logs":
		err = cmdLogs()
	case "worker":
		err = cmdWorker()
	case "config":
		err = cmdConfig(os.Args[2:])
	case "mcp":
		err = cmdMCP(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Printf("mathdrill %s\n", Version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mathdrill - Randomized math drills with worked answers

Usage:
  mathdrill <command> [arguments]

Drill Commands:
  topics          List topics and their modes
  generate        Generate one problem
  worksheet       Generate and store a worksheet
  answers <id>    Show the answers of a stored worksheet
  list            List stored worksheets

Daemon Commands:
  start           Start the mathdrill daemon
  stop            Stop the mathdrill daemon
  status          Show daemon status
  logs            View daemon logs

Server Commands:
  worker          Consume worksheet jobs from RabbitMQ

Setup Commands:
  config          Show current configuration
  config init     Write the default configuration

Integration Commands:
  mcp             Start MCP server (stdio, or --http addr)

Other:
  help            Show this help message
  version         Show version information

Examples:
  mathdrill generate --topic quadratic --difficulty hard
  mathdrill worksheet --topic sqrt --count 12 --format tex
  mathdrill answers 3f2c... --format html > answers.html
  mathdrill mcp`)
}
