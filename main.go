package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const defaultTUIMinSize = 1 << 20 // hide sub-MiB noise in the interactive view

type cliOptions struct {
	path        string
	outputCSV   string
	inputCSV    string
	tempOnly    bool
	interactive bool
	plain       bool
	delete      bool
	top         int
	minSize     string
	include     string
	exclude     string
	depth       int
	skip        []string
	noConfirm   bool
	listTargets bool
	configPath  string
	logLevel    string
	logFile     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   "reclaim [path]",
		Short: "Find and delete reclaimable build and cache directories",
		Long: "reclaim walks a directory tree, measures every directory, flags " +
			"well-known temporary directories (node_modules, target, __pycache__, …) " +
			"and lets you delete them interactively or export the results as CSV.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.path = args[0]
			}
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.path, "path", "p", ".", "directory to scan")
	flags.StringVarP(&opts.outputCSV, "output-csv", "o", "", "write scan results to a CSV file")
	flags.StringVarP(&opts.inputCSV, "input-csv", "i", "", "load entries from a CSV file instead of scanning")
	flags.BoolVarP(&opts.tempOnly, "temp-only", "t", false, "report only temporary directories")
	flags.BoolVar(&opts.interactive, "interactive", false, "force the interactive view even when stdout is not a terminal")
	flags.BoolVar(&opts.plain, "plain", false, "plain text output, no interactive view")
	flags.BoolVar(&opts.delete, "delete", false, "in plain mode, delete every reported temporary directory after confirmation")
	flags.IntVar(&opts.top, "top", 10, "number of largest entries to print in plain mode")
	flags.StringVar(&opts.minSize, "min-size", "", "hide entries below this size (e.g. 500KB, 2MiB)")
	flags.StringVar(&opts.include, "include", "", "comma-separated extra temporary directory names")
	flags.StringVar(&opts.exclude, "exclude", "", "comma-separated temporary directory names to ignore")
	flags.IntVar(&opts.depth, "depth", 0, "limit reported entries to this depth below the root (0 = unlimited)")
	flags.StringSliceVar(&opts.skip, "skip", nil, "directory names to skip entirely while scanning")
	flags.BoolVar(&opts.noConfirm, "no-confirm", false, "delete without the confirmation prompt")
	flags.BoolVar(&opts.listTargets, "list-targets", false, "print the temporary directory names and exit")
	flags.StringVar(&opts.configPath, "config", "", "config file path")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&opts.logFile, "log-file", "", "append logs to this file")

	return cmd
}

func run(cmd *cobra.Command, opts *cliOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	plain := opts.plain || (!opts.interactive && !isatty.IsTerminal(os.Stdout.Fd()))

	log, closeLog := newLogger(opts.logLevel, opts.logFile, plain)
	defer func() { _ = closeLog() }()

	root, err := filepath.Abs(opts.path)
	if err != nil {
		return fmt.Errorf("resolve path %s: %w", opts.path, err)
	}

	cfg, err := loadEffectiveConfig(root, opts)
	if err != nil {
		return err
	}

	targets := buildTempSet(
		append(parseTargetList(opts.include), cfg.Include...),
		append(parseTargetList(opts.exclude), cfg.Exclude...),
	)

	if opts.listTargets {
		for _, name := range sortedTargetNames(targets) {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	confirm := !opts.noConfirm
	if cfg.Confirm != nil && !cmd.Flags().Changed("no-confirm") {
		confirm = *cfg.Confirm
	}

	minSizeStr := opts.minSize
	if minSizeStr == "" {
		minSizeStr = cfg.MinSize
	}
	minSize, err := parseMinSize(minSizeStr)
	if err != nil {
		return err
	}
	if minSizeStr == "" && !plain {
		minSize = defaultTUIMinSize
	}

	depth := opts.depth
	if !cmd.Flags().Changed("depth") && cfg.Depth > 0 {
		depth = cfg.Depth
	}

	mcfg := modelConfig{
		ConfirmDeletes: confirm,
		MinSize:        minSize,
		OutputCSV:      opts.outputCSV,
		Log:            log,
	}

	if opts.inputCSV != "" {
		entries, err := readCSVFile(opts.inputCSV)
		if err != nil {
			return err
		}
		log.Info().Str("file", opts.inputCSV).Int("entries", len(entries)).Msg("loaded csv")
		if opts.tempOnly {
			entries = NewStore(entries).TempOnly().Entries()
		}
		if plain {
			store := NewStore(entries)
			if err := printSummary(cmd, store, nil, minSize, opts.top, opts.tempOnly); err != nil {
				return err
			}
			if opts.delete {
				return plainDelete(cmd, store, confirm, log)
			}
			return nil
		}
		program := tea.NewProgram(newModelFromEntries(ctx, entries, mcfg), tea.WithAltScreen())
		_, err = program.Run()
		return err
	}

	handle, err := os.OpenRoot(root)
	if err != nil {
		return fmt.Errorf("open root %s: %w", root, err)
	}
	defer handle.Close()

	skip := mergeSkipDirs(mergeSkipDirs(nil, cfg.Skip), opts.skip)

	scanOpts := ScanOptions{
		Root:       root,
		RootHandle: handle,
		Targets:    targets,
		SkipDirs:   skip,
		MaxDepth:   depth,
		TempOnly:   opts.tempOnly,
		Workers:    runtime.NumCPU(),
	}

	if plain {
		return runPlain(ctx, cmd, scanOpts, opts, log, minSize, confirm)
	}

	program := tea.NewProgram(newModel(ctx, scanOpts, mcfg), tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func loadEffectiveConfig(root string, opts *cliOptions) (Config, error) {
	path, found := resolveConfigPath(root, opts.configPath)
	if !found {
		return Config{}, nil
	}
	return loadConfig(path)
}

func parseMinSize(raw string) (int64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid min-size %q: %w", raw, err)
	}
	return int64(n), nil
}

// runPlain scans synchronously and prints a text report. With --delete it
// then removes every temporary directory after a typed confirmation.
func runPlain(ctx context.Context, cmd *cobra.Command, scanOpts ScanOptions, opts *cliOptions, log zerolog.Logger, minSize int64, confirm bool) error {
	scanOpts.Progress = func(p ScanProgress) {
		log.Debug().Int("visited", p.Visited).Int("found", p.Found).Msg("scanning")
	}

	result, err := scanTree(ctx, scanOpts)
	if err != nil {
		return err
	}
	for _, se := range result.Errors {
		log.Warn().Str("path", se.Path).Str("cause", se.Cause).Msg("scan warning")
	}

	if opts.outputCSV != "" {
		if err := writeCSVFile(opts.outputCSV, result.Entries); err != nil {
			return err
		}
		log.Info().Str("file", opts.outputCSV).Int("entries", len(result.Entries)).Msg("wrote csv")
	}

	store := NewStore(result.Entries)
	if err := printSummary(cmd, store, result.Errors, minSize, opts.top, opts.tempOnly); err != nil {
		return err
	}
	if opts.delete {
		return plainDelete(cmd, store, confirm, log)
	}
	return nil
}

// plainDelete is the non-interactive deletion path: every temporary entry in
// the store is a candidate, gated behind a typed "yes" unless confirmation
// is disabled. The min-size display filter never narrows what gets deleted.
func plainDelete(cmd *cobra.Command, store *Store, confirm bool, log zerolog.Logger) error {
	out := cmd.OutOrStdout()
	victims := store.TempOnly().SortedBySize()
	if victims.Len() == 0 {
		fmt.Fprintln(out, "No temporary directories to delete.")
		return nil
	}

	var total int64
	paths := make([]string, 0, victims.Len())
	sizes := make(map[string]int64, victims.Len())
	for _, e := range victims.Entries() {
		paths = append(paths, e.Path)
		sizes[e.Path] = e.SizeBytes
		total += e.SizeBytes
	}

	if confirm {
		fmt.Fprintf(out, "\nDelete %d temporary directories (%s)? Type 'yes' to confirm: ", len(paths), formatSize(total))
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if !isAffirmative(line) {
			fmt.Fprintln(out, "Deletion cancelled.")
			return nil
		}
	}

	report := deleteAll(paths, func(p string) int64 { return sizes[p] })
	for _, f := range report.Failed {
		log.Warn().Str("path", f.Path).Str("reason", f.Reason).Msg("delete failed")
		fmt.Fprintf(out, "failed: %s (%s)\n", f.Path, f.Reason)
	}
	fmt.Fprintln(out, report.Summary())
	return nil
}

func printSummary(cmd *cobra.Command, store *Store, scanErrs []ScanError, minSize int64, top int, tempOnly bool) error {
	out := cmd.OutOrStdout()

	var totalBytes, totalFiles int64
	for _, e := range store.Entries() {
		// The shallowest entry carries the cumulative totals for its whole
		// subtree; deeper entries re-count the same bytes.
		if e.SizeBytes > totalBytes {
			totalBytes = e.SizeBytes
		}
		if e.FileCount > totalFiles {
			totalFiles = e.FileCount
		}
	}

	temp := store.TempOnly()
	var reclaimable int64
	for _, e := range temp.Entries() {
		reclaimable += e.SizeBytes
	}

	fmt.Fprintf(out, "Scanned: %s files, %s total\n", formatCount(totalFiles), formatSize(totalBytes))
	fmt.Fprintf(out, "Temporary directories: %d (%s reclaimable)\n", temp.Len(), formatSize(reclaimable))
	if len(scanErrs) > 0 {
		fmt.Fprintf(out, "Warnings: %d path(s) could not be read\n", len(scanErrs))
	}

	view := store
	if tempOnly {
		view = temp
	}
	view = view.MinSize(minSize).SortedBySize().TopN(top)
	if view.Len() == 0 {
		fmt.Fprintln(out, "Nothing to show.")
		return nil
	}

	fmt.Fprintf(out, "\nTop %d by size:\n", view.Len())
	for _, e := range view.Entries() {
		marker := " "
		if e.Kind == KindTemporary {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s %10s  %8s files  %s\n", marker, formatSize(e.SizeBytes), formatCount(e.FileCount), e.Path)
	}
	fmt.Fprintln(out, "\n(* = temporary, safe to delete)")
	return nil
}
