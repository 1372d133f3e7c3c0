package main

import (
	"bufio"
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/orders/internal/domain/order"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	maxLineSize   = 1 << 20
	progressEvery = 10_000
)

// Stats counts import outcomes.
type Stats struct {
	Imported int64
	Skipped  int64
	Invalid  int64
}

// importer upserts snapshots it has not seen. The bloom filter holds every
// id known to be stored; a hit is confirmed with FindByID.
type importer struct {
	lg     *zap.Logger
	orders order.Repository

	mu   sync.Mutex
	seen *bloom.BloomFilter

	imported atomic.Int64
	skipped  atomic.Int64
	invalid  atomic.Int64
}

func newImporter(ctx context.Context, lg *zap.Logger, orders order.Repository) (*importer, error) {
	existing, err := orders.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load stored orders")
	}
	seen := bloom.NewWithEstimates(uint(max(bloomCapacity, 2*len(existing))), bloomFPR)
	for _, o := range existing {
		seen.AddString(o.ID().String())
	}
	lg.Info("Loaded stored order ids", zap.Int("count", len(existing)))
	return &importer{lg: lg, orders: orders, seen: seen}, nil
}

func (imp *importer) stats() Stats {
	return Stats{
		Imported: imp.imported.Load(),
		Skipped:  imp.skipped.Load(),
		Invalid:  imp.invalid.Load(),
	}
}

func (imp *importer) importFiles(ctx context.Context, files []string, workers int) (Stats, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for _, path := range files {
		g.Go(func() error {
			return imp.importFile(ctx, path)
		})
	}
	err := g.Wait()
	return imp.stats(), err
}

func (imp *importer) importFile(ctx context.Context, path string) error {
	lg := imp.lg.With(zap.String("file", path))

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var line int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		if err := imp.importLine(ctx, scanner.Bytes()); err != nil {
			var invalid *invalidLineError
			if !errors.As(err, &invalid) {
				return errors.Wrapf(err, "%s:%d", path, line)
			}
			imp.invalid.Add(1)
			lg.Warn("Skipping invalid order", zap.Int("line", line), zap.Error(invalid.err))
		}
		if line%progressEvery == 0 {
			lg.Info("Import progress", zap.Int("lines", line))
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	lg.Info("File imported", zap.Int("lines", line))
	return nil
}

type invalidLineError struct {
	err error
}

func (e *invalidLineError) Error() string { return e.err.Error() }

func (imp *importer) importLine(ctx context.Context, data []byte) error {
	snap, err := decodeSnapshot(data)
	if err != nil {
		return &invalidLineError{err: err}
	}
	if snap.ID == "" {
		snap.ID = imp.orders.NewID().String()
	}
	o, err := order.FromSnapshot(snap)
	if err != nil {
		return &invalidLineError{err: err}
	}

	stored, err := imp.stored(ctx, o.ID())
	if err != nil {
		return err
	}
	if stored {
		imp.skipped.Add(1)
		return nil
	}

	if err := imp.orders.Save(ctx, o); err != nil {
		return errors.Wrapf(err, "save order %s", o.ID())
	}
	imp.mu.Lock()
	imp.seen.AddString(o.ID().String())
	imp.mu.Unlock()
	imp.imported.Add(1)
	return nil
}

// stored reports whether id is already in the repository.
func (imp *importer) stored(ctx context.Context, id order.ID) (bool, error) {
	imp.mu.Lock()
	maybe := imp.seen.TestString(id.String())
	imp.mu.Unlock()
	if !maybe {
		return false, nil
	}

	_, err := imp.orders.FindByID(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, order.ErrNotFound):
		return false, nil
	default:
		return false, errors.Wrapf(err, "check order %s", id)
	}
}

// decodeSnapshot parses one dump line:
// {"id","items":[{"productId","quantity","price"}],"discountCode","shippingAddress","status"}.
// A "total" field is ignored.
func decodeSnapshot(data []byte) (order.Snapshot, error) {
	var s order.Snapshot
	err := jx.DecodeBytes(data).ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id", "_id":
			s.ID, err = d.Str()
		case "discountCode":
			s.DiscountCode, err = d.Str()
		case "shippingAddress":
			s.ShippingAddress, err = d.Str()
		case "status":
			var v string
			v, err = d.Str()
			s.Status = order.Status(v)
		case "items":
			err = d.Arr(func(d *jx.Decoder) error {
				item, err := decodeItem(d)
				if err != nil {
					return err
				}
				s.Items = append(s.Items, item)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	return s, err
}

func decodeItem(d *jx.Decoder) (order.ItemSnapshot, error) {
	var item order.ItemSnapshot
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "productId":
			v, err := d.Str()
			item.ProductID = v
			return err
		case "quantity":
			v, err := d.Int()
			item.Quantity = v
			return err
		case "price":
			var raw string
			if d.Next() == jx.String {
				v, err := d.Str()
				if err != nil {
					return err
				}
				raw = v
			} else {
				v, err := d.Num()
				if err != nil {
					return err
				}
				raw = v.String()
			}
			price, err := decimal.NewFromString(raw)
			item.Price = price
			return err
		default:
			return d.Skip()
		}
	})
	return item, err
}
