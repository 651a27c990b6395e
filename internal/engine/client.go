package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// Stats counts the calls a Client has forwarded to its engine.
type Stats struct {
	Inits         int
	InitErrors    int
	Processed     int
	ProcessErrors int
	Releases      int
	Deinits       int
}

// Client forwards lifecycle calls to an Engine, turns failures into typed
// errors and tracks result handles that have not been released yet.
type Client struct {
	engine      Engine
	logger      *zap.Logger
	state       State
	stats       Stats
	outstanding int
}

func NewClient(e Engine, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{engine: e, logger: logger}
}

// Initialize starts a lifecycle session.
func (c *Client) Initialize(config string) error {
	if err := c.engine.Init(config); err != nil {
		c.stats.InitErrors++
		c.logger.Error("engine initialize failed", zap.String("config", config), zap.Error(err))
		return &InitError{Config: config, Msg: err.Error(), Err: err}
	}
	c.stats.Inits++
	c.state = Initialized
	c.logger.Debug("engine initialized", zap.String("config", config))
	return nil
}

// Process runs one input. On error no Result exists and Release must not be
// called for this input.
func (c *Client) Process(text []byte) (Result, error) {
	if c.state != Initialized {
		return Result{}, fmt.Errorf("process: %w", ErrNotInitialized)
	}

	var res Result
	if err := c.engine.Process(text, &res); err != nil {
		c.stats.ProcessErrors++
		c.logger.Debug("engine process failed", zap.Int("bytes", len(text)), zap.Error(err))
		return Result{}, &ProcessError{Size: len(text), Err: err}
	}
	c.stats.Processed++
	c.outstanding++
	return res, nil
}

// Release hands a result back to the engine and zeroes it.
func (c *Client) Release(res *Result) {
	c.engine.Release(res)
	c.stats.Releases++
	if c.outstanding > 0 {
		c.outstanding--
	}
	*res = Result{}
}

// Deinitialize ends the session. It always deinitializes the engine, and
// reports ErrUnreleased if results were still held, since those handles are
// now invalid.
func (c *Client) Deinitialize() error {
	if c.state != Initialized {
		return fmt.Errorf("deinitialize: %w", ErrNotInitialized)
	}

	c.engine.Deinit()
	c.stats.Deinits++
	c.state = Uninitialized
	c.logger.Debug("engine deinitialized")

	if n := c.outstanding; n > 0 {
		c.outstanding = 0
		return fmt.Errorf("deinitialize: %w: %d", ErrUnreleased, n)
	}
	return nil
}

func (c *Client) State() State {
	return c.state
}

func (c *Client) Stats() Stats {
	return c.stats
}

// Outstanding reports results processed and not yet released.
func (c *Client) Outstanding() int {
	return c.outstanding
}
