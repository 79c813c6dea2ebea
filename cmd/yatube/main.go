package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/artpar/yatube/internal/core/domain"
	"github.com/artpar/yatube/internal/shell/pagecache"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		var sErr *ServerError
		if errors.As(err, &sErr) {
			return sErr.ExitCode
		}
		return ExitConfigError
	}
	return ExitSuccess
}

// =============================================================================
// Commands
// =============================================================================

// cli carries flags shared by every subcommand.
type cli struct {
	configPath string
}

func (c *cli) load() (*Config, error) {
	cfg, err := LoadConfig(c.configPath)
	if err != nil {
		return nil, &ServerError{Op: "LoadConfig", Err: err, ExitCode: ExitConfigError}
	}
	return cfg, nil
}

// withDeps loads configuration, opens the shared components, runs fn and
// closes them again.
func (c *cli) withDeps(ctx context.Context, fn func(*deps) error) error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	d, err := openDeps(ctx, cfg, SetupLogger(cfg), nil)
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(d)
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "yatube",
		Short:         "A small social blogging site",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to config file")

	root.AddCommand(
		c.serveCmd(),
		c.migrateCmd(),
		c.seedCmd(),
		c.createUserCmd(),
		c.setStaffCmd(),
		c.cacheCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.load()
			if err != nil {
				return err
			}

			logger := SetupLogger(cfg)
			logger.Info("starting yatube",
				"version", Version,
				"config", c.configPath,
			)

			server, err := NewServer(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			return server.Start(cmd.Context())
		},
	}
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening the store applies pending migrations.
			return c.withDeps(cmd.Context(), func(d *deps) error {
				fmt.Fprintf(cmd.OutOrStdout(), "database is up to date (%s)\n", d.store.Driver())
				return nil
			})
		},
	}
}

// seedFile is the YAML layout accepted by the seed command.
type seedFile struct {
	Groups []domain.Group `yaml:"groups"`
}

func readSeedFile(r io.Reader) (seedFile, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		return f, fmt.Errorf("parse seed file: %w", err)
	}
	return f, nil
}

func (c *cli) seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create or update groups from a YAML file",
		Long: `Create or update groups from a YAML file. Groups are matched by slug.

Example file:

  groups:
    - title: Cats
      slug: cats
      description: Everything about cats`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fh, err := os.Open(file)
			if err != nil {
				return err
			}
			defer fh.Close()

			seed, err := readSeedFile(fh)
			if err != nil {
				return err
			}

			return c.withDeps(cmd.Context(), func(d *deps) error {
				res, err := d.svc.SeedGroups(cmd.Context(), seed.Groups)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "groups: %d created, %d updated\n", res.Created, res.Updated)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with groups")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *cli) createUserCmd() *cobra.Command {
	var (
		email    string
		password string
		staff    bool
	)
	cmd := &cobra.Command{
		Use:   "createuser USERNAME",
		Short: "Create a user account",
		Long: `Create a user account. The password may also be given in the
YATUBE_PASSWORD environment variable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("YATUBE_PASSWORD")
			}
			if password == "" {
				return errors.New("a password is required (--password or YATUBE_PASSWORD)")
			}

			return c.withDeps(cmd.Context(), func(d *deps) error {
				user, err := d.svc.CreateUser(cmd.Context(), args[0], email, password, staff)
				if err != nil {
					return err
				}
				role := "user"
				if user.IsStaff {
					role = "staff user"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %q (id %d)\n", role, user.Username, user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (at least 8 characters)")
	cmd.Flags().BoolVar(&staff, "staff", false, "Grant staff permissions")
	return cmd
}

func (c *cli) setStaffCmd() *cobra.Command {
	var revoke bool
	cmd := &cobra.Command{
		Use:   "setstaff USERNAME",
		Short: "Grant or revoke staff permissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDeps(cmd.Context(), func(d *deps) error {
				if err := d.svc.SetStaff(cmd.Context(), args[0], !revoke); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s staff: %t\n", args[0], !revoke)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "Remove staff permissions instead")
	return cmd
}

func (c *cli) cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the page cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.load()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend == pagecache.BackendMemory {
				fmt.Fprintln(cmd.ErrOrStderr(), "the memory cache lives inside the server process; use DELETE /api/v1/cache instead")
				return nil
			}
			return c.withDeps(cmd.Context(), func(d *deps) error {
				if err := d.cache.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "page cache cleared")
				return nil
			})
		},
	})
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "yatube %s (built %s)\n", Version, BuildTime)
		},
	}
}
