package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/smazurov/alsavolume/internal/audio"
)

// Client sends mixer requests to a bridge over NATS.
type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// Dial connects a client to the NATS server at url.
func Dial(url string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(url,
		nats.Name("alsavolume-client"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(5),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Client{
		conn:   conn,
		logger: logger.With("component", "nats-client"),
	}, nil
}

// Execute sends one command and decodes the reply. Transport failures are
// reported as error results.
func (c *Client) Execute(ctx context.Context, params audio.Params) audio.Result {
	data, err := json.Marshal(params)
	if err != nil {
		return audio.Result{Error: err.Error(), Err: err}
	}

	msg, err := c.request(ctx, SubjectCommand, data)
	if err != nil {
		return audio.Result{Error: err.Error(), Err: err}
	}

	res, err := UnmarshalResult(msg.Data)
	if err != nil {
		return audio.Result{Error: fmt.Sprintf("invalid command reply: %v", err), Err: err}
	}
	return res
}

// SafeReadings asks the bridge for the readings map. Transport failures are
// reported as an error entry.
func (c *Client) SafeReadings(ctx context.Context) map[string]any {
	msg, err := c.request(ctx, SubjectReadings, nil)
	if err != nil {
		return audio.ErrorMap(err)
	}

	out, err := UnmarshalReadings(msg.Data)
	if err != nil {
		return audio.ErrorMap(fmt.Errorf("invalid readings reply: %w", err))
	}
	return out
}

func (c *Client) request(ctx context.Context, subject string, data []byte) (*nats.Msg, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultRequestTimeout)
		defer cancel()
	}

	c.logger.Debug("Sending request", "subject", subject)
	msg, err := c.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", subject, err)
	}
	return msg, nil
}

// Close closes the client connection.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
