// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// minipush sends an image to the miniload chainloader over a serial line,
// then acts as an interactive terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/usbarmory/miniload/mem"
	"github.com/usbarmory/miniload/minipush/internal"
	"github.com/usbarmory/miniload/util"
)

type config struct {
	device  string
	baud    int
	image   string
	noTerm  bool
	verbose bool
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	if verbose {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	}

	logger, err := cfg.Build()

	if err != nil {
		return nil, err
	}

	return logger.Sugar(), nil
}

func loadImage(path string, log *zap.SugaredLogger) (buf []byte, err error) {
	if buf, err = os.ReadFile(path); err != nil {
		return
	}

	if !util.IsELF(buf) {
		return
	}

	image, base, entry, err := util.Flatten(buf)

	if err != nil {
		return nil, fmt.Errorf("could not flatten %s, %v", path, err)
	}

	log.Infow("flattened ELF image", "base", fmt.Sprintf("%#x", base), "entry", fmt.Sprintf("%#x", entry), "size", len(image))

	if base != mem.LoadAddress || entry != mem.LoadAddress {
		log.Warnf("image is not linked at the load address (%#x)", mem.LoadAddress)
	}

	return image, nil
}

func run(conf *config, log *zap.SugaredLogger) (err error) {
	image, err := loadImage(conf.image, log)

	if err != nil {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Infof("waiting for %s", conf.device)

	if err = internal.WaitDevice(ctx, conf.device, 250*time.Millisecond); err != nil {
		return
	}

	port, err := internal.OpenSerial(conf.device, conf.baud)

	if err != nil {
		return
	}
	defer port.Close()

	// unblock pending reads on interrupt
	go func() {
		<-ctx.Done()
		port.Close()
	}()

	log.Infof("connected to %s (%d baud)", conf.device, conf.baud)

	pusher := &internal.Pusher{
		Port: port,
		Echo: os.Stdout,
		Log:  log,
	}

	if _, err = pusher.Push(image); err != nil {
		return
	}

	if conf.noTerm {
		return
	}

	fd := int(os.Stdin.Fd())

	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)

		if err != nil {
			return err
		}
		defer term.Restore(fd, state)
	}

	log.Info("terminal mode, press Ctrl-C to exit")
	log.Sync()

	return internal.Terminal(ctx, port, os.Stdin, os.Stdout)
}

func main() {
	conf := &config{}

	flag.StringVar(&conf.device, "device", "/dev/ttyUSB0", "serial device")
	flag.IntVar(&conf.baud, "baud", internal.DefaultBaud, "serial baud rate")
	flag.StringVar(&conf.image, "image", "", "image to send (raw binary or ELF)")
	flag.BoolVar(&conf.noTerm, "no-term", false, "exit once the image is sent")
	flag.BoolVar(&conf.verbose, "v", false, "verbose logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: minipush [options] [image]\n\nSends an image to the miniload chainloader.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  minipush kernel8.img\n")
		fmt.Fprintf(os.Stderr, "  minipush -device /dev/ttyACM0 -no-term kernel.elf\n")
	}

	flag.Parse()

	if conf.image == "" && flag.NArg() == 1 {
		conf.image = flag.Arg(0)
	}

	if conf.image == "" || flag.NArg() > 1 {
		flag.Usage()
		os.Exit(1)
	}

	log, err := newLogger(conf.verbose)

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err = run(conf, log); err != nil {
		log.Fatal(err)
	}

	log.Sync()
}
