package ingestor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	client "github.com/elastic/go-lumber/client/v2"
)

// Send ships values to a lumberjack v2 listener, batchSize keys per event,
// and returns the number of events the server acknowledged.
func Send(addr string, values []uint32, batchSize int, timeout time.Duration) (int, error) {
	if batchSize <= 0 {
		batchSize = 1
	}

	c, err := client.SyncDial(addr, client.Timeout(timeout))
	if err != nil {
		return 0, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer c.Close()

	events := make([]interface{}, 0, (len(values)+batchSize-1)/batchSize)
	var b strings.Builder
	for start := 0; start < len(values); start += batchSize {
		end := min(start+batchSize, len(values))
		b.Reset()
		for i, v := range values[start:end] {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.FormatUint(uint64(v), 10))
		}
		events = append(events, map[string]interface{}{"message": b.String()})
	}

	if len(events) == 0 {
		return 0, nil
	}

	acked, err := c.Send(events)
	if err != nil {
		return acked, fmt.Errorf("sending %d events: %w", len(events), err)
	}
	return acked, nil
}
