/*
 * hcmp2200 - Main process
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/kduncan99/hcmp2200/internal/config"
	"github.com/kduncan99/hcmp2200/internal/console"
	"github.com/kduncan99/hcmp2200/internal/logging"
	"github.com/kduncan99/hcmp2200/inventory"
	"github.com/kduncan99/hcmp2200/sp"
	"github.com/kduncan99/hcmp2200/upi"
)

// Exit codes per spec section 6.
const (
	exitClean         = 0
	exitConfigError   = 1
	exitHardwareCheck = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	optConfig := getopt.StringLong("config", 'c', "", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		return exitClean
	}

	var logFile io.Writer
	debugToStderr := true
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			slog.Error("cannot create log file", "path", *optLogFile, "error", err)
			return exitConfigError
		}
		defer f.Close()
		logFile = f
		debugToStderr = false
	}

	fabric := upi.NewFabric()
	ring := sp.NewLogRing(1024)
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	handler := logging.NewHandler(logFile, &slog.HandlerOptions{Level: programLevel}, debugToStderr, ring)
	logger := slog.New(handler)
	slog.SetDefault(logger)

	logger.Info("hcmp2200 started")

	inv := inventory.New(fabric, logger)
	sysProc, err := inv.CreateSystemProcessor("SP0")
	if err != nil {
		logger.Error("cannot create system processor", "error", err)
		return exitConfigError
	}
	go sysProc.Run()

	if *optConfig != "" {
		if err := loadConfig(inv, *optConfig, logger); err != nil {
			logger.Error("configuration load failed", "error", err)
			return exitConfigError
		}
	}

	// One worker goroutine per processor/channel module (spec section 5).
	for _, p := range inv.InputOutputProcessors() {
		go p.Run()
	}
	for _, m := range inv.ChannelModules() {
		go m.Run()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	consoleDone := make(chan error, 1)
	con := console.New(inv, logger)
	go func() { consoleDone <- con.Run() }()

	select {
	case <-sigChan:
		logger.Info("received shutdown signal")
	case err := <-consoleDone:
		if err != nil {
			logger.Error("console exited", "error", err)
		}
	}

	logger.Info("clearing configuration")
	if err := inv.ClearConfiguration(); err != nil {
		logger.Error("clearConfiguration failed during shutdown", "error", err)
		return exitHardwareCheck
	}

	logger.Info("hcmp2200 shut down cleanly")
	return exitClean
}

func loadConfig(inv *inventory.Inventory, path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	directives, err := config.Parse(f)
	if err != nil {
		return err
	}
	if err := inv.ImportConfiguration(directives); err != nil {
		return err
	}
	logger.Info("configuration loaded", "path", path, "directives", len(directives))
	return nil
}
