package watermark

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/cardmark/internal/constants"
	cmerrors "github.com/mrz1836/cardmark/internal/errors"
)

// CardOutcome is the result for one card in a batch.
type CardOutcome struct {
	CardDir string       `json:"card_dir"`
	Output  string       `json:"output,omitempty"`
	Result  *Result      `json:"result,omitempty"`
	Err     error        `json:"-"`
	Error   string       `json:"error,omitempty"`
	Apply   *ApplyResult `json:"apply,omitempty"`
}

// OK reports whether the card succeeded.
func (o CardOutcome) OK() bool {
	return o.Err == nil
}

// BatchReport summarizes a series run. Outcomes are sorted by card directory.
type BatchReport struct {
	RunID      string        `json:"run_id"`
	Series     string        `json:"series_dir"`
	Outcomes   []CardOutcome `json:"outcomes"`
	Failed     int           `json:"failed"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Duration is the wall time the batch took.
func (r *BatchReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Err returns cmerrors.ErrBatchFailed when any card failed. When the only
// failures are signature mismatches the error also matches
// cmerrors.ErrSignatureMismatch.
func (r *BatchReport) Err() error {
	if r.Failed == 0 {
		return nil
	}
	mismatchOnly := true
	for _, o := range r.Outcomes {
		if o.Err != nil && !errors.Is(o.Err, cmerrors.ErrSignatureMismatch) {
			mismatchOnly = false
			break
		}
	}
	if mismatchOnly {
		return fmt.Errorf("%w: %d of %d cards: %w", cmerrors.ErrBatchFailed, r.Failed, len(r.Outcomes), cmerrors.ErrSignatureMismatch)
	}
	return fmt.Errorf("%w: %d of %d cards", cmerrors.ErrBatchFailed, r.Failed, len(r.Outcomes))
}

// DiscoverCards returns the direct children of seriesDir that contain cardFile,
// sorted by name.
func DiscoverCards(seriesDir, cardFile string) ([]string, error) {
	entries, err := os.ReadDir(seriesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("missing %s: %w", seriesDir, cmerrors.ErrInputMissing)
		}
		return nil, cmerrors.Wrapf(err, "failed to read series directory %s", seriesDir)
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(seriesDir, e.Name())
		if _, err := os.Stat(filepath.Join(dir, cardFile)); err == nil {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("%s: %w", seriesDir, cmerrors.ErrNoCardsFound)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ApplyAll signs and stamps every card in seriesDir.
// Each card's sidecar is rewritten, matching Sign, before the PNG is stamped.
func (s *Service) ApplyAll(ctx context.Context, seriesDir string, parallelism int) (*BatchReport, error) {
	return s.runBatch(ctx, seriesDir, parallelism, "apply", func(ctx context.Context, dir string) CardOutcome {
		out := CardOutcome{CardDir: dir}
		if _, err := s.Sign(ctx, dir, SignOptions{}); err != nil {
			out.Err = err
			return out
		}
		res, err := s.Apply(ctx, dir, ApplyOptions{})
		out.Apply = res
		out.Err = err
		if res != nil {
			out.Output = res.ImagePath
		}
		return out
	})
}

// VerifyAll verifies every card in seriesDir and reports each mismatch.
func (s *Service) VerifyAll(ctx context.Context, seriesDir string, parallelism int) (*BatchReport, error) {
	return s.runBatch(ctx, seriesDir, parallelism, "verify", func(ctx context.Context, dir string) CardOutcome {
		res, err := s.Verify(ctx, dir, "")
		return CardOutcome{CardDir: dir, Result: res, Err: err}
	})
}

// runBatch fans work out over the card directories with bounded parallelism.
// A failing card is logged and recorded; it never stops its siblings.
// Cancellation stops scheduling new cards; unscheduled cards are recorded
// with the context error.
func (s *Service) runBatch(ctx context.Context, seriesDir string, parallelism int, op string,
	work func(context.Context, string) CardOutcome,
) (*BatchReport, error) {
	dirs, err := DiscoverCards(seriesDir, s.settings.CardFile)
	if err != nil {
		return nil, err
	}

	if parallelism <= 0 {
		parallelism = s.settings.Parallelism
	}
	parallelism = min(parallelism, constants.MaxParallelism)

	report := &BatchReport{
		RunID:     "batch-" + uuid.New().String()[:8],
		Series:    seriesDir,
		Outcomes:  make([]CardOutcome, len(dirs)),
		StartedAt: s.clock.Now(),
	}
	logger := s.logger.With().Str("run_id", report.RunID).Str("op", op).Logger()
	logger.Info().Int("cards", len(dirs)).Int("parallelism", parallelism).Msg("batch started")

	var g errgroup.Group
	g.SetLimit(parallelism)

	scheduled := 0
	for i, dir := range dirs {
		if ctx.Err() != nil {
			break
		}
		scheduled++
		g.Go(func() error {
			outcome := work(ctx, dir)
			if outcome.Err != nil {
				outcome.Error = outcome.Err.Error()
				logger.Error().Err(outcome.Err).Str("card_dir", dir).Msg("card failed")
			}
			report.Outcomes[i] = outcome
			return nil
		})
	}
	_ = g.Wait()

	for i := scheduled; i < len(dirs); i++ {
		report.Outcomes[i] = CardOutcome{CardDir: dirs[i], Err: ctx.Err(), Error: "not started: " + ctx.Err().Error()}
	}
	for _, o := range report.Outcomes {
		if o.Err != nil {
			report.Failed++
		}
	}

	report.FinishedAt = s.clock.Now()

	logger.Info().
		Int("failed", report.Failed).
		Int("cards", len(dirs)).
		Dur("duration", report.Duration()).
		Msg("batch finished")

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}
