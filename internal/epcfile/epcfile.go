// Package epcfile loads EPC inventories from line-oriented text files:
// one 24-character hex EPC per line, as exported by common RFID reader
// software. CSV exports that put the EPC in the only column work too.
package epcfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rfwavelabs/epclink-planner/internal/logging"
	"github.com/rfwavelabs/epclink-planner/model"
)

// ErrNoValidEPCs is returned when a file contains no parseable EPC at
// all; a plan over an empty inventory is almost certainly operator
// error.
var ErrNoValidEPCs = errors.New("no valid EPCs in input")

// Read parses EPCs from r. Malformed lines are skipped with a warning
// naming the line number; blank lines are ignored silently. The input
// order is preserved.
func Read(ctx context.Context, r io.Reader, log logging.Logger) ([]model.EPC, error) {
	if log == nil {
		log = logging.Noop()
	}

	var epcs []model.EPC
	scanner := bufio.NewScanner(r)
	lineNum := 0
	skipped := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		// Tolerate a trailing comma from single-column CSV exports.
		line = strings.TrimSuffix(line, ",")

		epc, err := model.ParseEPC(line)
		if err != nil {
			skipped++
			log.Warn(ctx, "skipping invalid EPC",
				logging.Int("line", lineNum),
				logging.String("value", line),
				logging.Err(err),
			)
			continue
		}
		epcs = append(epcs, epc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read EPC list: %w", err)
	}

	if len(epcs) == 0 {
		return nil, fmt.Errorf("%w (%d lines skipped)", ErrNoValidEPCs, skipped)
	}

	log.Info(ctx, "loaded EPC list",
		logging.Int("valid", len(epcs)),
		logging.Int("skipped", skipped),
	)
	return epcs, nil
}

// ReadFile opens path and delegates to Read.
func ReadFile(ctx context.Context, path string, log logging.Logger) ([]model.EPC, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open EPC list %q: %w", path, err)
	}
	defer f.Close()

	epcs, err := Read(ctx, f, log)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return epcs, nil
}
