// Package replay feeds recorded JSON-lines events through a collector.
package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"storefront/internal/events"
	"storefront/internal/sdk"
)

const maxLine = 1 << 20

type dispatcher interface {
	Handle(s sdk.SDK, ev events.Event) bool
}

type Result struct {
	Lines   int `json:"lines"`
	Handled int `json:"handled"`
	Skipped int `json:"skipped"`
	Invalid int `json:"invalid"`
}

// Run dispatches one event per non-blank line. Lines starting with '#' are
// comments. Undecodable lines count as Invalid and do not stop the replay.
func Run(ctx context.Context, r io.Reader, d dispatcher, s sdk.SDK) (Result, error) {
	var res Result
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLine)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		res.Lines++

		var ev events.Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			res.Invalid++
			continue
		}
		if err := ev.Validate(); err != nil {
			res.Invalid++
			continue
		}
		if d.Handle(s, ev) {
			res.Handled++
		} else {
			res.Skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("read events: %w", err)
	}
	return res, nil
}
