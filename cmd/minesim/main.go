// Command minesim plays unattended games against the board engine and prints
// generated boards for inspection.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mineseeker/internal/app"
	"mineseeker/internal/bot"
	"mineseeker/internal/domain"
	"mineseeker/internal/sim"
)

var log = logrus.New()

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(viper.New()).ExecuteContext(ctx); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "minesim",
		Short:         "Exercise the mineseeker board engine from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "game config file (JSON, same format as data/game_config.json)")
	flags.String("log-level", "info", "logrus level")
	flags.Int("dimension", app.DefaultDimension, "board edge length")
	flags.Int("mines", app.DefaultMineCount, "number of mines")
	flags.Uint64("seed", 0, "random seed (0 picks one)")
	for _, name := range []string{"config", "log-level", "dimension", "seed"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	// Same key as the game config file.
	_ = v.BindPFlag("mine_count", flags.Lookup("mines"))

	root.AddCommand(newPlayCmd(v), newBoardCmd(v))
	return root
}

// loadConfig layers flags over MINESIM_* env vars over the optional config file.
func loadConfig(v *viper.Viper) error {
	v.SetEnvPrefix("minesim")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level, err := logrus.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return err
	}
	log.SetLevel(level)
	return nil
}

func seedFrom(v *viper.Viper) uint64 {
	if seed := v.GetUint64("seed"); seed != 0 {
		return seed
	}
	return domain.NewRand().Uint64()
}

func newPlayCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play games with a bot and validate invariants after every move",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := bot.ParseLevel(v.GetString("bot"))
			if err != nil {
				return err
			}
			opts := sim.Options{
				Games:     v.GetInt("games"),
				Dimension: v.GetInt("dimension"),
				Mines:     v.GetInt("mine_count"),
				Seed:      seedFrom(v),
				Level:     level,
			}
			log.WithFields(logrus.Fields{
				"games":     opts.Games,
				"dimension": opts.Dimension,
				"mines":     opts.Mines,
				"seed":      opts.Seed,
				"bot":       v.GetString("bot"),
			}).Info("starting simulation")

			report, err := sim.Run(cmd.Context(), log, opts)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"games": report.Games,
				"won":   report.Won,
				"lost":  report.Lost,
				"moves": report.Moves,
			}).Infof("win rate %.1f%%", 100*report.WinRate())
			return nil
		},
	}
	cmd.Flags().Int("games", 100, "number of games to play")
	cmd.Flags().String("bot", "solver", "bot level: random or solver")
	_ = v.BindPFlag("games", cmd.Flags().Lookup("games"))
	_ = v.BindPFlag("bot", cmd.Flags().Lookup("bot"))
	return cmd
}

func newBoardCmd(v *viper.Viper) *cobra.Command {
	var row, col int
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Generate and print a board",
		RunE: func(cmd *cobra.Command, args []string) error {
			var safe *domain.Coord
			if row >= 0 && col >= 0 {
				safe = &domain.Coord{Row: row, Col: col}
			}
			seed := seedFrom(v)
			board, err := domain.Generate(v.GetInt("dimension"), v.GetInt("mine_count"), safe, domain.NewSeededRand(seed))
			if err != nil {
				return err
			}
			log.WithField("seed", seed).Debug("board generated")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), board)
			return err
		},
	}
	cmd.Flags().IntVar(&row, "safe-row", -1, "row of the cell that must open blank")
	cmd.Flags().IntVar(&col, "safe-col", -1, "column of the cell that must open blank")
	return cmd
}
