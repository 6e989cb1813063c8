package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"StockVision/internal/model"
	"StockVision/internal/notifier"
	"StockVision/internal/service"
)

// Sender delivers a formatted message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Defaults are applied to /predict arguments that are omitted and to the
// scheduled forecast.
type Defaults struct {
	Symbols []string
	Days    int
	Model   model.ModelKind
}

// Scheduler manages the cron tasks and the chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Predictor *service.Predictor
	Notifier  Sender
	Defaults  Defaults
	Ctx       context.Context

	log zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, p *service.Predictor, n Sender, d Defaults, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Predictor: p,
		Notifier:  n,
		Defaults:  d,
		Ctx:       ctx,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterAll registers the daily forecast task.
func (s *Scheduler) RegisterAll(forecastCron string) error {
	if _, err := s.Cron.AddFunc(forecastCron, s.forecastTask); err != nil {
		return fmt.Errorf("register forecast task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunForecastNow executes the scheduled forecast immediately.
func (s *Scheduler) RunForecastNow() {
	s.forecastTask()
}

func (s *Scheduler) forecastTask() {
	for _, sym := range s.Defaults.Symbols {
		s.log.Info().Str("symbol", sym).Msg("running scheduled forecast")
		res, err := s.Predictor.Predict(s.Ctx, sym, s.Defaults.Model, s.Defaults.Days)
		if err != nil {
			s.log.Error().Err(err).Str("symbol", sym).Msg("scheduled forecast")
			s.trySend(notifier.FormatError("Forecast for "+sym, err))
			continue
		}
		s.trySend(notifier.FormatForecastReport(res))
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// "/predict@SomeBot" addresses the bot in group chats
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch name {
	case "/predict":
		return s.handlePredict(ctx, args)
	case "/info":
		if len(args) == 0 {
			return "Usage: /info SYMBOL"
		}
		prof, series, err := s.Predictor.Info(ctx, args[0])
		if err != nil {
			return notifier.FormatError("Info", err)
		}
		return notifier.FormatStockInfo(prof, series)
	case "/last":
		return notifier.FormatLatest(s.Predictor.Latest())
	default:
		return notifier.FormatHelp()
	}
}

// PredictRequest is a parsed /predict command.
type PredictRequest struct {
	Symbol string
	Days   int
	Model  model.ModelKind
}

// ParsePredict parses "SYMBOL [DAYS] [MODEL...]". Model names may contain spaces.
func ParsePredict(args []string, d Defaults) (*PredictRequest, error) {
	if len(args) == 0 {
		return nil, &model.ValidationError{Field: "symbol", Value: "", Err: model.ErrInvalidSymbol}
	}
	req := &PredictRequest{Symbol: args[0], Days: d.Days, Model: d.Model}
	rest := args[1:]
	if len(rest) > 0 {
		if days, err := strconv.Atoi(rest[0]); err == nil {
			req.Days = days
			rest = rest[1:]
		}
	}
	if len(rest) > 0 {
		kind, err := model.ParseModelKind(strings.Join(rest, " "))
		if err != nil {
			return nil, err
		}
		req.Model = kind
	}
	return req, nil
}

func (s *Scheduler) handlePredict(ctx context.Context, args []string) string {
	req, err := ParsePredict(args, s.Defaults)
	if err != nil {
		return notifier.FormatError("Predict", err) + "\n\n" + notifier.FormatHelp()
	}
	res, err := s.Predictor.Predict(ctx, req.Symbol, req.Model, req.Days)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			return notifier.FormatError("Predict", err) + "\n\n" + notifier.FormatHelp()
		}
		s.log.Error().Err(err).Str("symbol", req.Symbol).Msg("predict command")
		return notifier.FormatError("Predict", err)
	}
	return notifier.FormatForecastReport(res)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		if errors.Is(err, notifier.ErrDisabled) {
			s.log.Debug().Msg("notifier disabled, message dropped")
			return
		}
		s.log.Error().Err(err).Msg("send notification")
	}
}
