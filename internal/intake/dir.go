package intake

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"PrismTracker/internal/model"
)

// DirProducer serves judgments from per-ticker JSON files dropped into a
// directory by the external analysis pipeline: <dir>/<ticker>.json holds the
// judgment for that ticker's current cycle. A missing file means the producer
// has no judgment this cycle.
type DirProducer struct {
	Dir string
	Now func() time.Time
}

func NewDirProducer(dir string) *DirProducer {
	return &DirProducer{Dir: dir, Now: time.Now}
}

// Judge reads and decodes the judgment file for the position's ticker.
func (p *DirProducer) Judge(ctx context.Context, pos model.Position, cycle string) (*model.DailyDecision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(p.Dir, pos.Ticker+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read judgment for %s: %w", pos.Ticker, err)
	}
	return DecodeJudgment(raw, pos.Ticker, cycle, pos.CurrentPrice, p.Now())
}

// DirSource serves screening candidates from a directory of JSON files, one
// candidate per file. Files that fail to decode are logged and skipped so one
// bad payload cannot block the cycle.
type DirSource struct {
	Dir string
	Now func() time.Time
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir, Now: time.Now}
}

// Candidates reads every *.json file in the directory.
func (s *DirSource) Candidates(ctx context.Context) ([]CandidateScenario, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read candidate dir: %w", err)
	}

	var out []CandidateScenario
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.Dir, e.Name()))
		if err != nil {
			log.Printf("[WARN] candidate file %s unreadable: %v", e.Name(), err)
			continue
		}
		cs, err := DecodeCandidate(raw, s.Now())
		if err != nil {
			log.Printf("[WARN] candidate file %s skipped: %v", e.Name(), err)
			continue
		}
		out = append(out, *cs)
	}
	return out, nil
}
