package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cloudkucooland/konkebridge"
	"github.com/cloudkucooland/konkebridge/accessory"
	"github.com/cloudkucooland/konkebridge/config"
	"github.com/cloudkucooland/konkebridge/platform"

	"github.com/brutella/hc/log"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	var dir, file string
	var debug bool

	app := cli.App{
		Name:  "konkebridge",
		Usage: "HomeKit bridge for Konke outlets, lights and remotes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Value:       "config",
				Usage:       "configuration directory",
				Destination: &dir,
			},
			&cli.StringFlag{
				Name:        "config",
				Value:       "server.json",
				Usage:       "configuration file",
				Destination: &file,
			},
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "verbose logging",
				Destination: &debug,
			},
		},
		Action: func(c *cli.Context) error {
			if debug {
				log.Debug.Enable()
				logrus.SetLevel(logrus.DebugLevel)
			}

			fulldir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("unable to get config directory %s: %w", dir, err)
			}
			conf, err := loadConfig(filepath.Join(fulldir, file))
			if err != nil {
				return err
			}
			conf.ConfigDir = fulldir
			log.Debug.Printf("config: %+v", conf)

			// spin up platforms to listen to devices
			konkebridge.BootstrapPlatforms(conf)

			// load accessory configs
			accdir := filepath.Join(fulldir, "accessories")
			files, err := os.ReadDir(accdir)
			if err != nil {
				return err
			}
			for _, f := range files {
				if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
					continue
				}
				acc, err := fileToAccessory(filepath.Join(accdir, f.Name()), f.Name())
				if err != nil {
					log.Info.Println(err.Error())
					continue
				}
				if err := konkebridge.AddAccessory(acc); err != nil {
					log.Info.Println(err.Error())
				}
			}

			// HC can only be started once all accessories are known
			if err := konkebridge.StartHC(conf); err != nil {
				return err
			}

			// run all the background processes
			platform.Background()

			// wait for signal to shut down
			sigch := make(chan os.Signal, 3)
			signal.Notify(sigch, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGHUP, os.Interrupt)

			// loop until signal sent
			sig := <-sigch

			log.Info.Printf("shutdown requested by signal: %s", sig)
			platform.ShutdownAllPlatforms()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Info.Panic(err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open config: %w", err)
	}

	var conf config.Config
	if err := json.Unmarshal(raw, &conf); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", path, err)
	}
	conf.ConfigFile = path
	return &conf, nil
}

func fileToAccessory(file string, name string) (*accessory.TFAccessory, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("unable to open accessory config file: %s %w", file, err)
	}

	var acc accessory.TFAccessory
	if err := json.Unmarshal(raw, &acc); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", file, err)
	}

	acc.Name = strings.TrimSuffix(name, filepath.Ext(name))
	return &acc, nil
}
