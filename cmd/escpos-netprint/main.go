// Command escpos-netprint prints an image on an ESC/POS receipt printer.
//
//	escpos-netprint [flags] <printer_ip> <image_path>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/AlexStarov/escpos-netprint/config"
	imgInternal "github.com/AlexStarov/escpos-netprint/image"
	logInternal "github.com/AlexStarov/escpos-netprint/log"
	"github.com/AlexStarov/escpos-netprint/printer"
	utilInternal "github.com/AlexStarov/escpos-netprint/util"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := pflag.NewFlagSet("escpos-netprint", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: escpos-netprint [flags] <printer_ip> <image_path>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	config.RegisterFlags(fs)
	listProfiles := fs.Bool("list-profiles", false, "Print the known printer profiles and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *listProfiles {
		for _, p := range printer.Profiles() {
			fmt.Fprintf(stderr, "%-10s %-8s %s\n", p.ID, p.Variant, p.Description)
		}
		return exitOK
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return exitUsage
	}
	cfg.Printer.Destination = fs.Arg(0)
	cfg.Image.Path = fs.Arg(1)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return exitUsage
	}
	if !imgInternal.ValidDither(cfg.Image.Dither) {
		fmt.Fprintf(stderr, "ERROR: unknown dithering algorithm: %q\n", cfg.Image.Dither)
		return exitUsage
	}

	logger, err := logInternal.NewWithOutput(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return exitUsage
	}
	defer func() { _ = logger.Sync() }()

	if err := printImage(ctx, cfg, logger); err != nil {
		fmt.Fprintln(stderr, utilInternal.Describe(err))
		return exitError
	}
	return exitOK
}

func printImage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (err error) {
	defer logInternal.PrintIfErr(logger, "Print failed", &err)

	lib, err := imgInternal.NewLibrary(cfg.Image.Filter)
	if err != nil {
		return err
	}

	open, err := printer.Open(cfg.Printer)
	if err != nil {
		return err
	}

	session := printer.NewSession(open, cfg.Printer.Profile, logger,
		printer.WithInitialize(cfg.Printer.Initialize),
	)

	logger.Info("Printing image",
		zap.String("job_id", session.JobID()),
		zap.String("image", cfg.Image.Path),
		zap.String("output", cfg.Printer.Output),
		zap.String("destination", cfg.Printer.Destination),
		zap.String("profile", session.Profile().ID),
		zap.String("filter", lib.Filter()),
	)

	job := printer.Job{
		ImagePath: cfg.Image.Path,
		Width:     cfg.Image.Width,
		Converter: imgInternal.Converter{
			MaxWidth:  cfg.Image.Width,
			Threshold: cfg.Image.Threshold,
			Dither:    cfg.Image.Dither,
		},
		DebugImage: cfg.Image.DebugImage,
	}

	_, err = printer.PrintImage(ctx, job, lib, session, logger)
	return err
}
