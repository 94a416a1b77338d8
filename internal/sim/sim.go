// Package sim plays unattended games with a bot and checks the board
// invariants after every move.
package sim

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"mineseeker/internal/app"
	"mineseeker/internal/bot"
	"mineseeker/internal/domain"
)

type Options struct {
	Games     int
	Dimension int
	Mines     int
	Seed      uint64
	Level     bot.BotLevel
}

type Report struct {
	Games int
	Won   int
	Lost  int
	Moves int
}

// WinRate is the share of finished games that were won.
func (r Report) WinRate() float64 {
	if r.Games == 0 {
		return 0
	}
	return float64(r.Won) / float64(r.Games)
}

// Run plays opts.Games games and stops at the first invariant violation.
func Run(ctx context.Context, log logrus.FieldLogger, opts Options) (Report, error) {
	rng := domain.NewSeededRand(opts.Seed)
	svc := app.NewService(rng)
	brain, err := bot.NewBrain(opts.Level, rng)
	if err != nil {
		return Report{}, err
	}

	var report Report
	for game := 1; game <= opts.Games; game++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		session, _, err := svc.NewGame(opts.Dimension, opts.Mines)
		if err != nil {
			return report, err
		}
		moves, err := playOne(svc, brain, session)
		report.Moves += moves
		if err != nil {
			log.WithFields(logrus.Fields{"game": game, "moves": moves}).Errorf("game aborted: %v\n%s", err, session.Board())
			return report, fmt.Errorf("game %d: %w", game, err)
		}

		report.Games++
		if session.Status() == domain.StatusWon {
			report.Won++
		} else {
			report.Lost++
		}
		log.WithFields(logrus.Fields{
			"game":     game,
			"status":   session.Status(),
			"moves":    moves,
			"revealed": session.RevealedCount(),
		}).Debug("game finished")
	}
	return report, nil
}

func playOne(svc *app.Service, brain bot.Brain, session *domain.GameSession) (int, error) {
	// Every accepted move changes at least one cell, so this bounds a game.
	limit := 2 * session.Dimension() * session.Dimension()
	moves := 0
	for !session.Status().Terminal() {
		if moves > limit {
			return moves, fmt.Errorf("no terminal state after %d moves", moves)
		}
		move, err := brain.CalculateMove(session.Snapshot())
		if err != nil {
			return moves, err
		}

		var events []app.Event
		if move.Kind == bot.MoveFlag {
			events, err = svc.SecondaryActivate(session, move.Cell.Row, move.Cell.Col)
		} else {
			events, err = svc.PrimaryActivate(session, move.Cell.Row, move.Cell.Col)
		}
		if err != nil {
			return moves, err
		}
		if len(events) == 0 {
			return moves, fmt.Errorf("move %+v was ignored", move)
		}
		moves++

		if err := session.Validate(); err != nil {
			return moves, err
		}
	}
	return moves, nil
}
