package query

import (
	"context"
	"net/url"
	"sync"

	"fintrack/fintrack/internal/dateutils"
	"fintrack/fintrack/internal/logging"
	"fintrack/fintrack/internal/models"
)

// Refresher refetches the transaction list for the controller's current
// query.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Controller owns the active filters and sort order of the transaction
// list. Each state change triggers exactly one refresh; the state changes
// even when that refresh fails.
type Controller struct {
	mu        sync.RWMutex
	filter    models.FilterState
	sort      models.SortConfig
	refresher Refresher
	logger    logging.Logger
}

// NewController returns a controller with no filters and the default sort.
func NewController(logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Controller{sort: models.DefaultSort, logger: logger}
}

// Attach sets the refresher notified on state changes. The store depends
// on the controller for its query, so it is attached after construction.
func (c *Controller) Attach(r Refresher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refresher = r
}

// Filter returns the active filters.
func (c *Controller) Filter() models.FilterState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

// Sort returns the active sort.
func (c *Controller) Sort() models.SortConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sort
}

// ActiveCount returns the number of active filters.
func (c *Controller) ActiveCount() int {
	return ActiveCount(c.Filter())
}

// Values returns the backend query for the current state.
func (c *Controller) Values() url.Values {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Values(c.filter, c.sort)
}

// SetFilter sets one filter. An empty value clears it. Unknown filter names
// and invalid values are rejected without changing state or refreshing.
func (c *Controller) SetFilter(ctx context.Context, name, value string) error {
	c.mu.Lock()
	next, err := withField(c.filter, name, value)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.filter = next
	c.mu.Unlock()

	return c.refresh(ctx, "set_filter")
}

// Apply replaces every filter at once, with a single refresh.
func (c *Controller) Apply(ctx context.Context, f models.FilterState) error {
	valid, err := Validate(f)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.filter = valid
	c.mu.Unlock()

	return c.refresh(ctx, "apply_filters")
}

// ApplyRange sets the date filters to a quick range, keeping the others.
func (c *Controller) ApplyRange(ctx context.Context, q dateutils.QuickRange, now models.Date) error {
	r, err := q.Resolve(now)
	if err != nil {
		return err
	}
	f := c.Filter()
	f.StartDate = r.Start.String()
	f.EndDate = r.End.String()
	return c.Apply(ctx, f)
}

// ClearFilters removes every filter.
func (c *Controller) ClearFilters(ctx context.Context) error {
	c.mu.Lock()
	c.filter = models.FilterState{}
	c.mu.Unlock()

	return c.refresh(ctx, "clear_filters")
}

// SetSort selects a sort column. Reselecting the active column flips the
// direction; a new column starts descending.
func (c *Controller) SetSort(ctx context.Context, field models.SortField) error {
	if _, err := models.ParseSortField(string(field)); err != nil {
		return err
	}

	c.mu.Lock()
	if c.sort.Field == field {
		c.sort.Direction = c.sort.Direction.Reverse()
	} else {
		c.sort = models.SortConfig{Field: field, Direction: models.SortDesc}
	}
	c.mu.Unlock()

	return c.refresh(ctx, "set_sort")
}

// SetSortConfig sets column and direction explicitly.
func (c *Controller) SetSortConfig(ctx context.Context, s models.SortConfig) error {
	if _, err := models.ParseSortField(string(s.Field)); err != nil {
		return err
	}
	if _, err := models.ParseSortDirection(string(s.Direction)); err != nil {
		return err
	}

	c.mu.Lock()
	c.sort = s
	c.mu.Unlock()

	return c.refresh(ctx, "set_sort")
}

// Configure replaces the filters and the sort together, with a single
// refresh. Nothing changes when either is invalid.
func (c *Controller) Configure(ctx context.Context, f models.FilterState, s models.SortConfig) error {
	valid, err := Validate(f)
	if err != nil {
		return err
	}
	if _, err := models.ParseSortField(string(s.Field)); err != nil {
		return err
	}
	if _, err := models.ParseSortDirection(string(s.Direction)); err != nil {
		return err
	}

	c.mu.Lock()
	c.filter = valid
	c.sort = s
	c.mu.Unlock()

	return c.refresh(ctx, "configure")
}

func (c *Controller) refresh(ctx context.Context, op string) error {
	c.mu.RLock()
	r := c.refresher
	c.mu.RUnlock()

	c.logger.Debug("Query changed",
		logging.F(logging.FieldOperation, op),
		logging.F(logging.FieldQuery, c.Values().Encode()))
	if r == nil {
		return nil
	}
	return r.Refresh(ctx)
}
