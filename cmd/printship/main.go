package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"text/tabwriter"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/altoke/printship/internal/adapters/bluez"
	"github.com/altoke/printship/internal/cliconfig"
	"github.com/altoke/printship/internal/salefile"
	plog "github.com/altoke/printship/pkg/log"
	"github.com/altoke/printship/pkg/printship"
)

const helpDescription = `
Print Altoke POS receipts on a Bluetooth thermal printer.

Highlights:
  - Renders 58mm ESC/POS receipts from JSON or YAML sale documents.
  - Sends them in paced 200-byte chunks with per-chunk retries.
  - Watches a spool directory and prints whatever the POS drops there.
  - Configure via file, env (PRINTSHIP_*), or flags.
`

var exampleUsage = strings.TrimSpace(`
  printship devices
  printship print --device 66:22:AA:BB:CC:DD sale-1042.json
  printship render sale-1042.yaml --out receipt.bin
  printship watch --spool-dir /var/spool/printship
  printship reprint
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	log     zerolog.Logger
}

func main() {
	c := &cli{cfg: cliconfig.DefaultConfig(), log: cliconfig.Logger()}

	root := &cobra.Command{
		Use:               "printship",
		Short:             "Print Altoke POS receipts on a Bluetooth thermal printer",
		Long:              strings.TrimSpace(helpDescription),
		Example:           exampleUsage,
		Version:           fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.loadConfig,
	}

	f := root.PersistentFlags()
	f.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.printship/config.toml)")
	f.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")

	f.StringVar(&c.cfg.Link, "link", c.cfg.Link, "printer link: ble or file")
	f.StringVar(&c.cfg.Device, "device", c.cfg.Device, "BLE printer address or name (default: first printer found)")
	f.StringVar(&c.cfg.ServiceUUID, "service-uuid", c.cfg.ServiceUUID, "GATT service UUID of the printer")
	f.StringVar(&c.cfg.CharacteristicUUID, "characteristic-uuid", c.cfg.CharacteristicUUID, "GATT characteristic UUID receiving print data")
	f.DurationVar(&c.cfg.ConnectTimeout, "connect-timeout", c.cfg.ConnectTimeout, "time allowed to find and connect the printer")
	f.StringVar(&c.cfg.DevicePath, "device-path", c.cfg.DevicePath, "rfcomm/serial device or capture file for the file link")
	f.BoolVar(&c.cfg.Truncate, "truncate", c.cfg.Truncate, "truncate the capture file instead of appending")

	f.IntVar(&c.cfg.ChunkSize, "chunk-size", c.cfg.ChunkSize, "maximum bytes per write")
	f.DurationVar(&c.cfg.ChunkDelay, "chunk-delay", c.cfg.ChunkDelay, "pause between chunks")
	f.DurationVar(&c.cfg.RetryDelay, "retry-delay", c.cfg.RetryDelay, "pause between attempts at the same chunk")
	f.IntVar(&c.cfg.MaxAttempts, "max-attempts", c.cfg.MaxAttempts, "write attempts per chunk")
	f.DurationVar(&c.cfg.WriteTimeout, "write-timeout", c.cfg.WriteTimeout, "timeout of a single write (0 disables)")
	for _, name := range []string{"service-uuid", "characteristic-uuid", "write-timeout"} {
		if err := f.MarkHidden(name); err != nil {
			c.log.Info().Err(err).Msgf("failed to hide %s flag", name)
		}
	}

	f.StringVar(&c.cfg.BusinessName, "business-name", c.cfg.BusinessName, "business name in the receipt header")
	f.StringVar(&c.cfg.TaxID, "tax-id", c.cfg.TaxID, "tax id line in the receipt header")
	f.StringVar(&c.cfg.Address, "address", c.cfg.Address, "address in the receipt header")
	f.StringVar(&c.cfg.TimeZone, "time-zone", c.cfg.TimeZone, "time zone sale times are printed in")
	f.StringVar(&c.cfg.StateDir, "state-dir", c.cfg.StateDir, "directory for the reprint journal (default: $HOME/.printship)")

	root.AddCommand(
		c.renderCmd(),
		c.printCmd(),
		c.reprintCmd(),
		c.watchCmd(),
		c.devicesCmd(),
	)

	if err := root.Execute(); err != nil {
		c.log.Error().Err(err).Msg("printship")
		os.Exit(1)
	}
}

// loadConfig layers the config file, PRINTSHIP_* variables and flags, in
// increasing precedence.
func (c *cli) loadConfig(cmd *cobra.Command, args []string) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	c.log = cliconfig.LoggerAt(c.cfg.LogLevel)
	c.log.Debug().Interface("config", c.cfg).Msg("configuration")
	return nil
}

func (c *cli) logger() plog.Logger {
	return plog.NewZerologAdapterWithLogger(c.log)
}

func (c *cli) connector() printship.Connector {
	if c.cfg.Link == cliconfig.LinkFile {
		return printship.DeviceFile(c.cfg.DevicePath, c.cfg.Truncate)
	}
	return c.bleConnector()
}

func (c *cli) bleConnector() *bluez.Connector {
	return printship.BLE(
		printship.WithDevice(c.cfg.Device),
		printship.WithUUIDs(c.cfg.ServiceUUID, c.cfg.CharacteristicUUID),
		printship.WithResolveTimeout(c.cfg.ConnectTimeout),
		printship.WithBLELogger(c.logger()),
	)
}

func (c *cli) newClient() (*printship.Client, error) {
	loc, err := c.cfg.Location()
	if err != nil {
		return nil, err
	}
	return printship.New(c.connector(),
		printship.WithLogger(c.logger()),
		printship.WithTransportConfig(c.cfg.TransportConfig()),
		printship.WithJournalDir(c.cfg.StateDir),
		printship.WithBusiness(c.cfg.Business()),
		printship.WithLocation(loc),
	)
}

func (c *cli) connect(ctx context.Context, client *printship.Client) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()
	return client.Connect(ctx)
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// readSale loads a document from a path, or from stdin when path is "-".
func readSale(path, format string) (printship.ReceiptOptions, error) {
	if path != "-" {
		return printship.LoadSale(path)
	}
	f := salefile.FormatJSON
	if format == "yaml" || format == "yml" {
		f = salefile.FormatYAML
	}
	return salefile.Decode(os.Stdin, f)
}

func (c *cli) renderCmd() *cobra.Command {
	var out, format string

	cmd := &cobra.Command{
		Use:   "render <sale-file|->",
		Short: "Encode a receipt without printing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readSale(args[0], format)
			if err != nil {
				return err
			}
			client, err := c.newClient()
			if err != nil {
				return err
			}
			data, err := client.Render(opts)
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}

			if out == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), hex.Dump(data))
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			c.log.Info().Str("file", out).Int("bytes", len(data)).Msg("receipt rendered")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write raw ESC/POS bytes to this file instead of a hex dump")
	cmd.Flags().StringVar(&format, "format", "json", "stdin document format (json or yaml)")
	return cmd
}

func (c *cli) printCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "print <sale-file|->...",
		Short: "Print one or more sale documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			client, err := c.newClient()
			if err != nil {
				return err
			}
			defer client.Disconnect()

			if err := c.connect(ctx, client); err != nil {
				return err
			}

			var failed int
			for _, path := range args {
				opts, err := readSale(path, format)
				if err != nil {
					c.log.Error().Err(err).Str("file", path).Msg("skipping sale document")
					failed++
					continue
				}
				job, err := client.Print(ctx, opts)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "sale %d printed (%d bytes, %d chunks, %d retries)\n",
					job.Options.Sale.ID, job.Bytes, job.Chunks, job.Retries)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d receipts failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "stdin document format (json or yaml)")
	return cmd
}

func (c *cli) reprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reprint",
		Short: "Print the last receipt again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			client, err := c.newClient()
			if err != nil {
				return err
			}
			defer client.Disconnect()

			last, err := client.Last(ctx)
			if err != nil {
				return err
			}
			if last.IsEmpty() {
				return printship.ErrNoJournal
			}
			if err := c.connect(ctx, client); err != nil {
				return err
			}
			job, err := client.Reprint(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sale %d reprinted (first printed %s)\n",
				job.Options.Sale.ID, last.PrintedAt.Format("02/01/2006 15:04"))
			return nil
		},
	}
}

func (c *cli) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print sale documents dropped into the spool directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			client, err := c.newClient()
			if err != nil {
				return err
			}
			defer client.Disconnect()

			if err := c.connect(ctx, client); err != nil {
				c.log.Warn().Err(err).Msg("printer not available yet, will retry on the first document")
			}

			err = client.Watch(ctx, c.cfg.SpoolConfig())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&c.cfg.SpoolDir, "spool-dir", c.cfg.SpoolDir, "directory the POS drops sale documents into (default: <state-dir>/spool)")
	cmd.Flags().IntVar(&c.cfg.SpoolAttempts, "spool-attempts", c.cfg.SpoolAttempts, "print attempts per document before it is moved to failed/")
	return cmd
}

func (c *cli) devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List Bluetooth devices known to BlueZ",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), c.cfg.ConnectTimeout)
			defer cancel()

			devices, err := c.bleConnector().Devices(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ADDRESS\tNAME\tCONNECTED\tPRINTER")
			for _, d := range devices {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%t\n", d.Address, d.Name, d.Connected, d.Printer)
			}
			return tw.Flush()
		},
	}
}
