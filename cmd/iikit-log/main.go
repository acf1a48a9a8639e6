// Command iikit-log views CBOR kit event logs (.klog files) written by
// the simulator's file logger.
//
// Usage:
//
//	iikit-log [flags] <file.klog>
//
// Flags:
//
//	-source string    Filter by source: loop, hal, telemetry
//	-category string  Filter by category: pin, display, sample, state, error
//	-kit string       Filter by kit id (e.g. "iikit3")
//	-session string   Filter by telemetry session ID
//	-json             Output events as JSON lines
//
// Examples:
//
//	iikit-log run.klog
//	iikit-log -category pin run.klog
//	iikit-log -source telemetry -json run.klog
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"

	"github.com/lasec-lab/iikit-go/pkg/log"
)

var (
	sourceFlag   string
	categoryFlag string
	kitFlag      string
	sessionFlag  string
	jsonFlag     bool
)

func init() {
	flag.StringVar(&sourceFlag, "source", "", "Filter by source: loop, hal, telemetry")
	flag.StringVar(&categoryFlag, "category", "", "Filter by category: pin, display, sample, state, error")
	flag.StringVar(&kitFlag, "kit", "", "Filter by kit id")
	flag.StringVar(&sessionFlag, "session", "", "Filter by telemetry session ID")
	flag.BoolVar(&jsonFlag, "json", false, "Output events as JSON lines")
}

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: iikit-log [flags] <file.klog>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	filter, err := buildFilter()
	if err != nil {
		stdlog.Fatalf("Invalid filter: %v", err)
	}

	reader, err := log.NewFilteredReader(flag.Arg(0), filter)
	if err != nil {
		stdlog.Fatalf("Failed to open log: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			stdlog.Fatalf("Failed to read event: %v", err)
		}

		if jsonFlag {
			printJSON(event)
		} else {
			printText(event)
		}
		count++
	}

	if !jsonFlag {
		fmt.Printf("%d events\n", count)
	}
}

// buildFilter converts flag values to a log.Filter.
func buildFilter() (log.Filter, error) {
	filter := log.Filter{
		KitID:     kitFlag,
		SessionID: sessionFlag,
	}

	if sourceFlag != "" {
		src, err := parseSource(sourceFlag)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Source = &src
	}

	if categoryFlag != "" {
		cat, err := parseCategory(categoryFlag)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &cat
	}

	return filter, nil
}

func parseSource(s string) (log.Source, error) {
	switch strings.ToLower(s) {
	case "loop":
		return log.SourceLoop, nil
	case "hal":
		return log.SourceHAL, nil
	case "telemetry":
		return log.SourceTelemetry, nil
	default:
		return 0, fmt.Errorf("unknown source %q", s)
	}
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "pin":
		return log.CategoryPin, nil
	case "display":
		return log.CategoryDisplay, nil
	case "sample":
		return log.CategorySample, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category %q", s)
	}
}

// printText renders one event per line in a human-readable format.
func printText(event log.Event) {
	ts := event.Timestamp.Format("15:04:05.000000")

	var detail string
	switch {
	case event.Pin != nil:
		detail = fmt.Sprintf("pin %d: %d -> %d",
			event.Pin.Pin, event.Pin.OldLevel, event.Pin.NewLevel)
	case event.Display != nil:
		detail = fmt.Sprintf("line %d: %q", event.Display.Line, event.Display.Text)
	case event.Sample != nil:
		detail = fmt.Sprintf("%s=%g @%d", event.Sample.Var,
			event.Sample.Value, event.Sample.TimestampMS)
	case event.StateChange != nil:
		detail = fmt.Sprintf("%s: %s -> %s", event.StateChange.Entity,
			event.StateChange.OldState, event.StateChange.NewState)
		if event.StateChange.Reason != "" {
			detail += fmt.Sprintf(" (%s)", event.StateChange.Reason)
		}
	case event.Error != nil:
		detail = event.Error.Message
		if event.Error.Context != "" {
			detail += fmt.Sprintf(" [%s]", event.Error.Context)
		}
	}

	fmt.Printf("%s %-9s %-7s %s\n", ts, event.Source, event.Category, detail)
}

// printJSON renders one event as a JSON line.
func printJSON(event log.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Println(string(data))
}
