// Package dispatcher contains the action dispatch facade: a single entry
// point mapping loosely typed requests onto collection operations, with
// HTTP-like status codes in the response.
package dispatcher

import (
	"context"
	"fmt"

	"github.com/kivadb/kiva/domain"
	"github.com/kivadb/kiva/internal/adapter/decoder"
	"github.com/kivadb/kiva/internal/adapter/logger"
	"github.com/kivadb/kiva/internal/adapter/registry"
)

const origin = "dispatcher"

// Response statuses.
const (
	StatusOK          = 200
	StatusBadRequest  = 400
	StatusServerError = 500
)

// Request is one dispatchable operation. Query, Update, Document and
// Projection stay loosely typed; the target collection converts them.
type Request struct {
	Action     string         `kiva:"action"`
	Database   string         `kiva:"database"`
	Query      any            `kiva:"query"`
	Update     any            `kiva:"update"`
	Document   any            `kiva:"document"`
	Projection any            `kiva:"projection"`
	Options    RequestOptions `kiva:"options"`
}

// RequestOptions carries the per-operation flags of a request.
type RequestOptions struct {
	Multi    bool `kiva:"multi"`
	SkipSave bool `kiva:"skipSave"`
}

// Response is the outcome of a dispatched request. Error is set only on
// non-200 statuses.
type Response struct {
	Status int    `kiva:"status"`
	Error  string `kiva:"error,omitempty"`
	Data   any    `kiva:"data,omitempty"`
}

type action func(ctx context.Context, c domain.Collection, req *Request) (any, error)

// Dispatcher routes requests to collections resolved through the registry.
type Dispatcher struct {
	registry domain.Registry
	decoder  domain.Decoder
	logger   domain.Logger
	actions  map[string]action
}

// NewDispatcher returns a new dispatcher.
func NewDispatcher(options ...domain.DispatcherOption) *Dispatcher {
	opts := domain.DispatcherOptions{
		Registry: registry.NewRegistry(),
		Decoder:  decoder.NewDecoder(),
		Logger:   logger.NewNopLogger(),
	}
	for _, option := range options {
		option(&opts)
	}

	d := &Dispatcher{
		registry: opts.Registry,
		decoder:  opts.Decoder,
		logger:   opts.Logger,
	}
	d.actions = map[string]action{
		"count":   d.count,
		"find":    d.find,
		"findOne": d.findOne,
		"insert":  d.insert,
		"remove":  d.remove,
		"update":  d.update,
		"save":    d.save,
	}
	return d
}

// Dispatch decodes the raw request and executes it. Malformed requests come
// back as 400, store failures as 500.
func (d *Dispatcher) Dispatch(ctx context.Context, raw any) Response {
	req := &Request{}
	if r, ok := raw.(*Request); ok {
		req = r
	} else if err := d.decoder.Decode(raw, req); err != nil {
		return d.badRequest(fmt.Sprintf("undecodable request: %v", err))
	}

	fn, known := d.actions[req.Action]
	if !known {
		return d.badRequest(fmt.Sprintf("unknown action %q", req.Action))
	}
	if req.Database == "" {
		return d.badRequest("missing database name")
	}

	c, err := d.registry.Open(ctx, req.Database)
	if err != nil {
		return d.serverError(err)
	}
	data, err := fn(ctx, c, req)
	if err != nil {
		return d.serverError(err)
	}
	return Response{Status: StatusOK, Data: data}
}

func (d *Dispatcher) count(ctx context.Context, c domain.Collection, req *Request) (any, error) {
	return c.Count(ctx, req.Query)
}

func (d *Dispatcher) find(ctx context.Context, c domain.Collection, req *Request) (any, error) {
	return c.Find(ctx, req.Query, domain.WithProjection(req.Projection))
}

func (d *Dispatcher) findOne(ctx context.Context, c domain.Collection, req *Request) (any, error) {
	return c.FindOne(ctx, req.Query, domain.WithProjection(req.Projection))
}

func (d *Dispatcher) insert(ctx context.Context, c domain.Collection, req *Request) (any, error) {
	return c.Insert(ctx, req.Document, domain.WithInsertSkipSave(req.Options.SkipSave))
}

func (d *Dispatcher) remove(ctx context.Context, c domain.Collection, req *Request) (any, error) {
	return c.Remove(ctx, req.Query,
		domain.WithRemoveMulti(req.Options.Multi),
		domain.WithRemoveSkipSave(req.Options.SkipSave))
}

func (d *Dispatcher) update(ctx context.Context, c domain.Collection, req *Request) (any, error) {
	return c.Update(ctx, req.Query, req.Update,
		domain.WithUpdateMulti(req.Options.Multi),
		domain.WithUpdateSkipSave(req.Options.SkipSave))
}

func (d *Dispatcher) save(ctx context.Context, c domain.Collection, _ *Request) (any, error) {
	return nil, c.Save(ctx)
}

func (d *Dispatcher) badRequest(message string) Response {
	d.logger.Emit(domain.LevelWarn, message, origin)
	return Response{Status: StatusBadRequest, Error: message}
}

func (d *Dispatcher) serverError(err error) Response {
	d.logger.Emit(domain.LevelError, err.Error(), origin)
	return Response{Status: StatusServerError, Error: err.Error()}
}
