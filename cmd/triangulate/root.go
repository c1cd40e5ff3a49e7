package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/banshee-data/triangulate/internal/config"
	"github.com/banshee-data/triangulate/internal/monitoring"
	"github.com/banshee-data/triangulate/internal/notecard"
	"github.com/banshee-data/triangulate/internal/radio"
	"github.com/banshee-data/triangulate/internal/triangulation"
)

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	configPath string
	dev        bool
	port       string
	iface      string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:          "triangulate",
		Short:        "Feed Wi-Fi scan results to a cellular companion device for triangulation",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a JSON configuration file")
	flags.BoolVar(&opts.dev, "dev", false, "Use a simulated companion device and a static radio")
	flags.StringVar(&opts.port, "port", "", "Companion serial port (overrides the config file)")
	flags.StringVar(&opts.iface, "interface", "", "Wireless interface (overrides the config file)")

	root.AddCommand(
		newRunCmd(opts),
		newUpdateCmd(opts),
		newLogCachedCmd(opts),
		newPortsCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads the config file, if any, and applies flag overrides.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.port != "" {
		cfg.SerialPort = &o.port
	}
	if o.iface != "" {
		cfg.Interface = &o.iface
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session owns the devices behind a coordinator.
type session struct {
	coord   *triangulation.Coordinator
	closers []io.Closer
}

func (s *session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}
	return errors.Join(errs...)
}

// openSession connects to the companion device and the radio, or to their
// simulated stand-ins in dev mode.
func (o *globalOptions) openSession(cfg *config.Config) (*session, error) {
	s := &session{}

	var (
		client *notecard.Client
		r      triangulation.Radio
	)
	if o.dev {
		monitoring.Logf("dev mode: simulated companion and static radio")
		client = notecard.NewClient(notecard.NewSimulator(nil), cfg.GetRequestTimeout())
		s.closers = append(s.closers, client)
		r = radio.NewStatic(radio.DevTable...)
	} else {
		var err error
		client, err = notecard.Open(cfg.GetSerialPort(), cfg.GetSerial(), cfg.GetRequestTimeout())
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, client)

		linux, err := radio.Open(cfg.GetInterface())
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, linux)
		r = linux
		monitoring.Logf("companion on %s, radio on %s", cfg.GetSerialPort(), cfg.GetInterface())
	}

	s.coord = triangulation.New(client, r, triangulation.Options{
		Sink:              monitoring.Sink{},
		DisconnectTimeout: cfg.GetDisconnectTimeout(),
	})
	return s, nil
}
