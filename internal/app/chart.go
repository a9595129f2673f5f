package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/newthinker/stocksim/internal/chart"
	"github.com/newthinker/stocksim/internal/core"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Chart builds the value of amount invested in each ticker over the period.
// Tickers without data are skipped and returned.
func (a *App) Chart(ctx context.Context, tickers []string, p Period, amount float64) ([]chart.Series, []string, error) {
	if err := a.requireOpen(); err != nil {
		return nil, nil, err
	}

	slots := make([]*chart.Series, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, a.cfg.Provider.Concurrency))
	for i, t := range tickers {
		g.Go(func() error {
			h, err := a.resolver.History(gctx, t, p.Start, p.End)
			if err != nil {
				if errors.Is(err, core.ErrDataUnavailable) {
					a.logger.Debug("no chart data", zap.String("ticker", t), zap.Error(err))
					return nil
				}
				return err
			}
			s, err := chart.Normalize(h, amount)
			if err != nil {
				return err
			}
			slots[i] = &s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var series []chart.Series
	var skipped []string
	for i, s := range slots {
		if s == nil {
			skipped = append(skipped, strings.ToUpper(tickers[i]))
			continue
		}
		series = append(series, *s)
	}
	if len(series) == 0 {
		return nil, skipped, core.Errorf(core.ErrEmptyResult, "no chart data for %s", strings.Join(tickers, ", "))
	}

	a.metrics.RecordSkipped("ticker", len(skipped))
	return series, skipped, nil
}

// SaveChart renders series as SVG into the archive under name and returns
// its location. An existing artifact is only replaced when overwrite is set.
func (a *App) SaveChart(ctx context.Context, name, title string, series []chart.Series, overwrite bool) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", core.Errorf(core.ErrInvalidInput, "chart name cannot be empty")
	}
	if path.Ext(name) == "" {
		name += ".svg"
	}
	if !strings.EqualFold(path.Ext(name), ".svg") {
		return "", core.Errorf(core.ErrInvalidInput, "charts are saved as SVG, got %q", name)
	}

	sink, err := a.archive()
	if err != nil {
		return "", err
	}

	if !overwrite {
		exists, err := sink.Exists(ctx, name)
		if err != nil {
			return "", err
		}
		if exists {
			return "", core.Errorf(core.ErrInvalidInput, "chart %q already exists", name)
		}
	}

	var buf bytes.Buffer
	if err := chart.WriteSVG(&buf, title, series); err != nil {
		return "", err
	}

	location, err := sink.Put(ctx, name, "image/svg+xml", buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("saving chart: %w", err)
	}
	a.logger.Info("chart saved", zap.String("location", location), zap.Int("bytes", buf.Len()))
	return location, nil
}

// SavedCharts lists charts in the archive.
func (a *App) SavedCharts(ctx context.Context) ([]string, error) {
	sink, err := a.archive()
	if err != nil {
		return nil, err
	}
	return sink.List(ctx, "")
}
