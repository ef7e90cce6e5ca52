// commands.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codenames-sync/api"
	"codenames-sync/identity"
	"codenames-sync/models"
	"codenames-sync/services"
	"codenames-sync/session"
)

// clientDeps is what every client subcommand needs.
type clientDeps struct {
	ids     *identity.Provider
	backend *api.Client
}

func newClientDeps(cfg *Config) (*clientDeps, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	var store identity.Store
	if cfg.sessionFile != "" {
		store = identity.NewFileStore(cfg.sessionFile)
	}
	ids := identity.NewProvider(store)

	backend, err := api.NewClient(cfg.server, api.WithTimeout(cfg.requestTimeout), api.WithSessionID(ids.EnsureSessionID))
	if err != nil {
		return nil, err
	}
	return &clientDeps{ids: ids, backend: backend}, nil
}

func (d *clientDeps) mount(ctx context.Context, cfg *Config, gameID models.GameID) *session.GameView {
	return session.Mount(ctx, gameID, d.backend, d.ids, session.Config{
		LivenessTimeout: cfg.livenessTimeout,
		Reconnect:       cfg.reconnect,
	})
}

func newCreateCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a game and print its id.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newClientDeps(cfg)
			if err != nil {
				return err
			}
			id, err := deps.backend.CreateGame(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)

			if cfg.qrFile != "" {
				link := strings.TrimSuffix(cfg.server, "/") + "/games/" + string(id)
				png, err := services.GenerateQRCode(link, cfg.qrSize, nil)
				if err != nil {
					return err
				}
				if err := os.WriteFile(cfg.qrFile, png, 0o644); err != nil {
					return err
				}
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&cfg.qrFile, "qr", "", "write a QR code of the game link to this PNG file (env: CODENAMES_QR)")
	fs.IntVar(&cfg.qrSize, "qr-size", 256, "QR code size in pixels (env: CODENAMES_QR_SIZE)")
	bindFlags(v, fs)
	return cmd
}

func newWatchCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch GAME_ID",
		Short: "Follow a game's lobby until interrupted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newClientDeps(cfg)
			if err != nil {
				return err
			}
			gv := deps.mount(cmd.Context(), cfg, models.GameID(args[0]))
			defer gv.Close()

			failed := make(chan error, 1)
			out := cmd.OutOrStdout()
			gv.View().OnChange(func(v session.View) {
				printView(out, v)
				if v.Err != nil {
					select {
					case failed <- v.Err:
					default:
					}
				}
			})
			printView(out, gv.Snapshot())

			select {
			case <-cmd.Context().Done():
				return nil
			case err := <-failed:
				return err
			}
		},
	}
}

func newJoinCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "join GAME_ID NAME COLOR ROLE",
		Short: "Take a slot, e.g. `join 42 Bob red spymaster`.",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			color, err := parseColorArg(args[2])
			if err != nil {
				return err
			}
			role, err := parseRoleArg(args[3])
			if err != nil {
				return err
			}
			deps, err := newClientDeps(cfg)
			if err != nil {
				return err
			}

			gv := deps.mount(cmd.Context(), cfg, models.GameID(args[0]))
			defer gv.Close()
			if err := awaitState(cmd.Context(), cfg, gv); err != nil {
				return err
			}

			gs, err := gv.Join(cmd.Context(), args[1], color, role)
			if err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), session.View{GameState: &gs, LocalSessionID: deps.ids.EnsureSessionID()})
			return nil
		},
	}
}

func newStartCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "start GAME_ID",
		Short: "Start a game once all four slots are taken.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newClientDeps(cfg)
			if err != nil {
				return err
			}
			gv := deps.mount(cmd.Context(), cfg, models.GameID(args[0]))
			defer gv.Close()
			if err := awaitState(cmd.Context(), cfg, gv); err != nil {
				return err
			}
			if err := gv.Start(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "game %s started\n", args[0])
			return nil
		},
	}
}

func newSessionCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Print this client's session id.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var store identity.Store
			if cfg.sessionFile != "" {
				store = identity.NewFileStore(cfg.sessionFile)
			}
			ids := identity.NewProvider(store)
			id := ids.EnsureSessionID()
			if ids.Degraded() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (not persisted)\n", id)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

// awaitState blocks until the view holds a GameState, fails, or the
// request timeout passes.
func awaitState(ctx context.Context, cfg *Config, gv *session.GameView) error {
	ready := make(chan struct{}, 1)
	gv.View().OnChange(func(v session.View) {
		if v.GameState != nil || v.Err != nil {
			select {
			case ready <- struct{}{}:
			default:
			}
		}
	})

	ctx, cancel := context.WithTimeout(ctx, cfg.requestTimeout)
	defer cancel()
	for {
		v := gv.Snapshot()
		if v.Err != nil {
			return v.Err
		}
		if v.GameState != nil {
			return nil
		}
		select {
		case <-ready:
		case <-ctx.Done():
			return fmt.Errorf("waiting for game %s: %w", gv.GameID(), ctx.Err())
		}
	}
}

func printView(w io.Writer, v session.View) {
	if v.Err != nil {
		fmt.Fprintf(w, "error: %v\n", v.Err)
		return
	}
	if v.GameState == nil {
		return
	}
	gs := v.GameState
	status := "lobby"
	if gs.Started {
		status = "started"
	}
	fmt.Fprintf(w, "game %s (%s, version %d)", gs.GameID, status, gs.Version)
	if v.Stale {
		fmt.Fprint(w, " [reconnecting]")
	}
	fmt.Fprintln(w)
	for _, slot := range models.Slots {
		name := "-"
		if occ := gs.Occupants(slot); len(occ) > 0 {
			name = occ[0].Name
			if occ[0].SessionID == v.LocalSessionID {
				name += " (you)"
			}
		}
		fmt.Fprintf(w, "  %-16s %s\n", slot, name)
	}
	if session.AllSlotsFilled(gs) && !gs.Started {
		fmt.Fprintln(w, "  ready to start")
	}
}

// parseColorArg accepts a colour name or its numeric id.
func parseColorArg(s string) (models.ColorID, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return models.ParseColorID(n)
	}
	return models.ParseColorName(s)
}

// parseRoleArg accepts a role name or its numeric id.
func parseRoleArg(s string) (models.RoleID, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return models.ParseRoleID(n)
	}
	return models.ParseRoleName(s)
}
