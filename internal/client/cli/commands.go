package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/portalcli/internal/buildinfo"
	"github.com/dmitrijs2005/portalcli/internal/client/config"
	"github.com/dmitrijs2005/portalcli/internal/client/models"
	"github.com/dmitrijs2005/portalcli/internal/logging"
	"github.com/spf13/cobra"
)

// appFactory builds the App for a command. Tests replace it.
var appFactory = func(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	return NewApp(ctx, cfg, log)
}

// rootState is shared by the commands of one invocation.
type rootState struct {
	args    []string
	verbose bool
	cfg     *config.Config
	log     *logging.ZapLogger
}

// longFlags are the persistent flags that may also be spelled with a single
// dash. Cobra would read "-config" as "-c onfig".
var longFlags = []string{"config", "api-url", "db", "timeout", "out", "verbose"}

// normalizeArgs rewrites "-name" and "-name=value" to their "--" spelling
// for every name in longFlags. Arguments after "--" are left as they are.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i, arg := range out {
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") {
			continue
		}
		name, _, _ := strings.Cut(arg[1:], "=")
		for _, f := range longFlags {
			if name == f {
				out[i] = "-" + arg
				break
			}
		}
	}
	return out
}

// NewRootCmd returns the "portal" command tree set up to parse args, the
// raw command line arguments (normally os.Args[1:]). Configuration flags
// are read from them by the config package, the declarations below only
// document them and let cobra accept them.
func NewRootCmd(args []string) *cobra.Command {
	args = normalizeArgs(args)
	st := &rootState{args: args}

	root := &cobra.Command{
		Use:           "portal",
		Short:         "Cliente de linha de comando do Portal Clientes",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if st.log != nil {
				_ = st.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withApp(cmd.Context(), func(ctx context.Context, a *App) error {
				a.Run(ctx)
				return nil
			})
		},
	}

	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "arquivo de configuração (JSON ou YAML)")
	pf.StringP("api-url", "a", "", "URL base da API")
	pf.StringP("db", "d", "", "arquivo do banco local")
	pf.IntP("timeout", "t", 0, "timeout das requisições em segundos")
	pf.StringP("out", "o", "", "diretório de downloads")
	pf.BoolVarP(&st.verbose, "verbose", "v", false, "log em nível debug")

	root.AddCommand(
		st.shellCmd(),
		st.sheetsCmd(),
		st.downloadCmd(),
		st.logoutCmd(),
		versionCmd(),
	)
	root.SetArgs(args)
	return root
}

func (st *rootState) setup() error {
	cfg, err := config.LoadConfig(st.args)
	if err != nil {
		return err
	}
	if st.verbose {
		cfg.Verbose = true
	}
	log, err := logging.NewFileLogger(cfg.LogFile, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	st.cfg, st.log = cfg, log
	return nil
}

func (st *rootState) withApp(ctx context.Context, fn func(ctx context.Context, a *App) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := appFactory(ctx, st.cfg, st.log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// requireSession restores the persisted session for one-shot commands.
func requireSession(ctx context.Context, a *App) error {
	a.Restore(ctx)
	if !a.isLoggedIn() {
		return fmt.Errorf("não há sessão ativa; use 'portal shell' e faça login")
	}
	return nil
}

func (st *rootState) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Abre o shell interativo (padrão)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withApp(cmd.Context(), func(ctx context.Context, a *App) error {
				a.Run(ctx)
				return nil
			})
		},
	}
}

func (st *rootState) sheetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets",
		Short: "Lista as planilhas disponíveis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withApp(cmd.Context(), func(ctx context.Context, a *App) error {
				if err := requireSession(ctx, a); err != nil {
					return err
				}
				err := a.Sheets(ctx)
				a.flushMessage()
				return err
			})
		},
	}
}

func (st *rootState) downloadCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Baixa uma planilha em CSV ou Excel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := models.ParseExportFormat(format)
			if err != nil {
				return err
			}
			return st.withApp(cmd.Context(), func(ctx context.Context, a *App) error {
				if err := requireSession(ctx, a); err != nil {
					return err
				}
				err := a.Download(ctx, []string{args[0], string(f)})
				a.flushMessage()
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(models.FormatCSV), "csv ou excel")
	return cmd
}

func (st *rootState) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove a sessão salva",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withApp(cmd.Context(), func(ctx context.Context, a *App) error {
				return a.Logout(ctx)
			})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Mostra a versão",
		Args:  cobra.NoArgs,
		// version needs neither config nor log.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}

// Execute runs the command tree for os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd(os.Args[1:]).ExecuteContext(ctx)
}
