package ingest

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/relayguard/banhammer/model/relayer"
	"github.com/relayguard/banhammer/module"
	"github.com/relayguard/banhammer/module/metrics"
)

// maxLineSize bounds a single JSON encoded input.
const maxLineSize = 1 << 20

// LineReader submits JSON encoded inputs read from a stream, one input per line.
// Blank lines are skipped, undecodable lines are logged and counted.
type LineReader struct {
	log       zerolog.Logger
	metrics   module.EngineMetrics
	submitter Submitter
}

func NewLineReader(log zerolog.Logger, metrics module.EngineMetrics, submitter Submitter) *LineReader {
	return &LineReader{
		log:       log.With().Str("component", "line_reader").Logger(),
		metrics:   metrics,
		submitter: submitter,
	}
}

// Run reads r until EOF or until done is closed, whichever comes first. It returns the number of
// submitted inputs. done is only checked between lines.
func (l *LineReader) Run(done <-chan struct{}, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	submitted := 0
	line := 0
	for scanner.Scan() {
		select {
		case <-done:
			return submitted, nil
		default:
		}

		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var input relayer.Input
		if err := input.UnmarshalJSON(raw); err != nil {
			l.metrics.InputDecodeFailed(metrics.SourceStdin)
			l.log.Warn().Err(err).Int("line", line).Msg("dropping undecodable line")
			continue
		}
		if l.submitter.Submit(&input) {
			submitted++
		}
	}
	if err := scanner.Err(); err != nil {
		return submitted, fmt.Errorf("could not read inputs: %w", err)
	}
	return submitted, nil
}
