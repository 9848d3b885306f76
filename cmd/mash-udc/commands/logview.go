package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mash-protocol/mash-udc/pkg/log"
)

func newLogCmd() *cobra.Command {
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect protocol capture files",
	}
	logCmd.AddCommand(newLogViewCmd(), newLogStatsCmd())
	return logCmd
}

type viewOptions struct {
	instance  string
	remote    string
	layer     string
	direction string
	category  string
}

func newLogViewCmd() *cobra.Command {
	var opts viewOptions

	cmd := &cobra.Command{
		Use:   "view <file.mlog>",
		Short: "Print the events of a capture file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.filter()
			if err != nil {
				return err
			}
			return runView(args[0], filter, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.instance, "instance", "", "Only events for this instance name")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "Only events from this peer address (ip:port)")
	cmd.Flags().StringVar(&opts.layer, "layer", "", "Only events at this layer: transport, wire, service")
	cmd.Flags().StringVar(&opts.direction, "direction", "", "Only events in this direction: in, out")
	cmd.Flags().StringVar(&opts.category, "category", "", "Only events of this category: message, state, error")

	return cmd
}

func (o viewOptions) filter() (log.Filter, error) {
	f := log.Filter{
		InstanceName: o.instance,
		RemoteAddr:   o.remote,
	}
	if o.layer != "" {
		l, err := parseLayer(o.layer)
		if err != nil {
			return f, err
		}
		f.Layer = &l
	}
	if o.direction != "" {
		d, err := parseDirection(o.direction)
		if err != nil {
			return f, err
		}
		f.Direction = &d
	}
	if o.category != "" {
		c, err := parseCategory(o.category)
		if err != nil {
			return f, err
		}
		f.Category = &c
	}
	return f, nil
}

func runView(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [evt:id] DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	var typeLabel string
	switch {
	case event.Frame != nil:
		typeLabel = "Frame"
	case event.Message != nil:
		typeLabel = "Message"
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [evt:%s] %-3s %s %s\n", ts, shortenID(event.EventID), event.Direction, event.Layer, typeLabel)
	if event.RemoteAddr != "" {
		fmt.Fprintf(w, "  Peer: %s\n", event.RemoteAddr)
	}
	if event.InstanceName != "" {
		fmt.Fprintf(w, "  Instance: %s\n", event.InstanceName)
	}

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.Message != nil:
		formatMessageDetails(w, event.Message)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
		if frame.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

func formatMessageDetails(w io.Writer, msg *log.MessageEvent) {
	fmt.Fprintf(w, "  Counter: %d  Session: %d  Flags: 0x%02x\n", msg.MessageCounter, msg.SessionID, uint8(msg.Flags))
	fmt.Fprintf(w, "  Protocol: %s  Opcode: 0x%02x  Exchange: %d\n", msg.ProtocolID, uint8(msg.Opcode), msg.ExchangeID)
	fmt.Fprintf(w, "  Payload: %d bytes\n", msg.PayloadSize)
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

func newLogStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file.mlog>",
		Short: "Summarize a capture file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args[0], cmd.OutOrStdout())
		},
	}
}

// captureStats holds aggregate statistics about a capture file.
type captureStats struct {
	total      int
	errors     int
	byLayer    map[log.Layer]int
	byCategory map[log.Category]int
	byInstance map[string]int
	start, end time.Time
}

func runStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path, log.Filter{})
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &captureStats{
		byLayer:    make(map[log.Layer]int),
		byCategory: make(map[log.Category]int),
		byInstance: make(map[string]int),
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.total++
		stats.byLayer[event.Layer]++
		stats.byCategory[event.Category]++
		if event.InstanceName != "" {
			stats.byInstance[event.InstanceName]++
		}
		if event.Error != nil {
			stats.errors++
		}
		if stats.start.IsZero() || event.Timestamp.Before(stats.start) {
			stats.start = event.Timestamp
		}
		if event.Timestamp.After(stats.end) {
			stats.end = event.Timestamp
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *captureStats) {
	if stats.total > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.start.UTC().Format(time.RFC3339),
			stats.end.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Total Events: %d\n", stats.total)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerWire, log.LayerService} {
		if count := stats.byLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryState, log.CategoryError} {
		if count := stats.byCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}

	names := make([]string, 0, len(stats.byInstance))
	for name := range stats.byInstance {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(w, "Instances: %d\n", len(names))
	for _, name := range names {
		fmt.Fprintf(w, "  %-18s %d\n", name+":", stats.byInstance[name])
	}

	if stats.errors > 0 {
		fmt.Fprintf(w, "Errors: %d\n", stats.errors)
	}
}

// parseLayer parses a layer string (case-insensitive).
func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "wire":
		return log.LayerWire, nil
	case "service":
		return log.LayerService, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, wire, or service)", s)
	}
}

// parseDirection parses a direction string (case-insensitive).
func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state, or error)", s)
	}
}
