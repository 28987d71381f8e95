package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// streamFailureMessage is surfaced when the analysis service itself is
// unreachable and no event-level error text exists.
const streamFailureMessage = "Analysis service is unavailable. Please try again."

// BrandDetails is the user's submission from the first wizard screen.
type BrandDetails struct {
	BrandName    string `json:"brandName"`
	BrandWebsite string `json:"brandWebsite"`
	BrandCountry string `json:"brandCountry,omitempty"`
}

// BrandProfile is the analysis outcome of the brand-info stream. The
// competitor names seed the selection screen.
type BrandProfile struct {
	Description string `json:"description"`
	Industry    string `json:"industry"`
	Name        string `json:"name"`
	Competitors []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"competitors"`
}

// ProgressObserver is notified after every state, progress, or status
// change so callers can relay updates incrementally.
type ProgressObserver func(state State, progress int, statusText string)

// Controller runs the wizard end to end: it opens the streamed requests in
// order, feeds their events to the machine, and keeps the intermediate
// results. Stream errors never propagate as Go errors to the caller; they
// halt the machine with status text and the caller inspects the state.
// Returned errors signal misuse only, such as missing required input.
//
// All methods are safe for concurrent use. One request may stream a long
// run while another toggles a competitor or reads the state; mu guards the
// machine and the captured results, and observers are invoked outside the
// lock so they may call back into the controller.
type Controller struct {
	client *StreamClient
	logger *zap.Logger

	mu          sync.Mutex
	machine     *Machine
	observer    ProgressObserver
	details     BrandDetails
	profile     *BrandProfile
	queries     []string
	queryCount  int
	models      []string
	finalResult json.RawMessage
}

// NewController creates a wizard controller. models lists the LLMs the
// final test stream exercises; queryCount caps generated queries.
func NewController(client *StreamClient, models []string, queryCount int, logger *zap.Logger) *Controller {
	if len(models) == 0 {
		models = []string{"gpt-4o-mini"}
	}
	if queryCount <= 0 {
		queryCount = 10
	}
	return &Controller{
		client:     client,
		machine:    NewMachine(),
		logger:     logger,
		models:     models,
		queryCount: queryCount,
	}
}

// SetObserver registers a progress observer. Pass nil to remove.
func (c *Controller) SetObserver(observer ProgressObserver) {
	c.mu.Lock()
	c.observer = observer
	c.mu.Unlock()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

func (c *Controller) Progress() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Progress()
}

func (c *Controller) StatusText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.StatusText()
}

func (c *Controller) Profile() *BrandProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

func (c *Controller) Result() json.RawMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finalResult
}

func (c *Controller) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.SelectedCompetitors()
}

func (c *Controller) Halted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Halted()
}

func (c *Controller) CanGenerate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.CanGenerate()
}

// ToggleCompetitor flips the selection of one competitor name.
func (c *Controller) ToggleCompetitor(name string) {
	c.mu.Lock()
	c.machine.ToggleCompetitor(name)
	c.mu.Unlock()
}

// SubmitBrandDetails runs the analyzing step: it opens the brand-info
// stream and advances to competitor selection when the stream completes
// with a result. Both brand name and website are required.
func (c *Controller) SubmitBrandDetails(ctx context.Context, details BrandDetails) error {
	if details.BrandName == "" || details.BrandWebsite == "" {
		return fmt.Errorf("brand name and website are required")
	}

	c.mu.Lock()
	if err := c.machine.BeginAnalysis(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.details = details
	c.mu.Unlock()
	c.notify()

	err := c.client.Stream(ctx, "/stream-brand-info", details, func(e Event) {
		c.mu.Lock()
		if c.machine.ApplyBrandInfoEvent(e) {
			c.captureProfile(e.Result)
		}
		c.mu.Unlock()
		c.notify()
	})
	if err != nil {
		c.logger.Error("Brand info stream failed", zap.Error(err))
		c.fail()
	}
	return nil
}

// GenerateReport runs the generating step: the query-generation stream
// followed by the test stream, strictly in sequence. It requires at least
// one selected competitor.
func (c *Controller) GenerateReport(ctx context.Context) error {
	c.mu.Lock()
	if err := c.machine.BeginGeneration(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()
	c.notify()

	if !c.generateQueries(ctx) {
		return nil
	}
	c.runTests(ctx)
	return nil
}

// generateQueries opens the query-generation stream and captures the
// queries from its complete event. It reports whether the test stream
// should follow.
func (c *Controller) generateQueries(ctx context.Context) bool {
	c.mu.Lock()
	payload := map[string]any{
		"brandName":        c.details.BrandName,
		"brandCountry":     c.details.BrandCountry,
		"brandDescription": c.profileDescription(),
		"brandIndustry":    c.profileIndustry(),
		"totalQueries":     c.queryCount,
	}
	c.mu.Unlock()

	completed := false
	err := c.client.Stream(ctx, "/stream-generate-queries", payload, func(e Event) {
		c.mu.Lock()
		if c.machine.ApplyQueryGenEvent(e) {
			completed = c.captureQueries(e.Result)
		}
		c.mu.Unlock()
		c.notify()
	})
	if err != nil {
		c.logger.Error("Query generation stream failed", zap.Error(err))
		c.fail()
		return false
	}
	return completed && !c.Halted()
}

// runTests opens the test stream; its completion enters the results state.
func (c *Controller) runTests(ctx context.Context) {
	c.mu.Lock()
	payload := map[string]any{
		"brandName":   c.details.BrandName,
		"queries":     c.queries,
		"competitors": c.machine.SelectedCompetitors(),
		"models":      c.models,
	}
	c.mu.Unlock()

	err := c.client.Stream(ctx, "/stream-test-queries", payload, func(e Event) {
		c.mu.Lock()
		if c.machine.ApplyTestEvent(e) {
			c.finalResult = e.Result
		}
		c.mu.Unlock()
		c.notify()
	})
	if err != nil {
		c.logger.Error("Query test stream failed", zap.Error(err))
		c.fail()
	}
}

func (c *Controller) fail() {
	c.mu.Lock()
	c.machine.Fail(streamFailureMessage)
	c.mu.Unlock()
	c.notify()
}

// captureProfile requires c.mu held.
func (c *Controller) captureProfile(raw json.RawMessage) {
	var profile BrandProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		c.logger.Warn("Failed to parse brand profile result", zap.Error(err))
		return
	}
	c.profile = &profile
}

// captureQueries requires c.mu held.
func (c *Controller) captureQueries(raw json.RawMessage) bool {
	var parsed struct {
		Queries []struct {
			Topic string `json:"topic"`
			Query string `json:"query"`
		} `json:"queries"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		c.logger.Warn("Failed to parse generated queries result", zap.Error(err))
		return false
	}

	c.queries = c.queries[:0]
	for _, q := range parsed.Queries {
		if q.Query != "" {
			c.queries = append(c.queries, q.Query)
		}
	}
	return len(c.queries) > 0
}

// profileDescription requires c.mu held.
func (c *Controller) profileDescription() string {
	if c.profile == nil {
		return ""
	}
	return c.profile.Description
}

// profileIndustry requires c.mu held.
func (c *Controller) profileIndustry() string {
	if c.profile == nil {
		return ""
	}
	return c.profile.Industry
}

// notify snapshots under the lock and invokes the observer outside it, so
// observers may read controller state without deadlocking.
func (c *Controller) notify() {
	c.mu.Lock()
	observer := c.observer
	state := c.machine.State()
	progress := c.machine.Progress()
	status := c.machine.StatusText()
	c.mu.Unlock()

	if observer != nil {
		observer(state, progress, status)
	}
}
