package dashboard

import (
	"context"
	"sync"
	"time"

	"arsat/finanzas/internal/fileutils"
	"arsat/finanzas/internal/logging"
	"arsat/finanzas/internal/metrics"
	"arsat/finanzas/internal/models"
	"arsat/finanzas/internal/parser"
	"arsat/finanzas/internal/parsererror"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	key     string
	modTime time.Time
	value   interface{}
	err     error
}

// Loader memoizes parsed datasets per file version. A changed modification
// time or size triggers a reload; concurrent reloads of the same version are
// collapsed into one parse.
type Loader struct {
	purchaseOrders     parser.PurchaseOrderParser
	transfers          parser.TransferParser
	purchaseOrdersPath string
	transfersPath      string
	metrics            *metrics.Metrics
	logger             logging.Logger

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewLoader creates a Loader over the two input files.
func NewLoader(
	po parser.PurchaseOrderParser,
	tr parser.TransferParser,
	purchaseOrdersPath, transfersPath string,
	m *metrics.Metrics,
	logger logging.Logger,
) *Loader {
	if logger == nil {
		logger = logging.Nop()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	return &Loader{
		purchaseOrders:     po,
		transfers:          tr,
		purchaseOrdersPath: purchaseOrdersPath,
		transfersPath:      transfersPath,
		metrics:            m,
		logger:             logger,
		cache:              make(map[string]cacheEntry),
	}
}

// PurchaseOrders returns the current purchase order dataset.
func (l *Loader) PurchaseOrders(ctx context.Context) (*models.PurchaseOrderDataset, error) {
	v, err := l.load(ctx, models.DatasetPurchaseOrders, l.purchaseOrdersPath, func(path string) (interface{}, error) {
		return l.purchaseOrders.ParseFile(path)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.PurchaseOrderDataset), nil
}

// Transfers returns the current transfer dataset.
func (l *Loader) Transfers(ctx context.Context) (*models.TransferDataset, error) {
	v, err := l.load(ctx, models.DatasetTransfers, l.transfersPath, func(path string) (interface{}, error) {
		return l.transfers.ParseFile(path)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.TransferDataset), nil
}

func (l *Loader) load(ctx context.Context, dataset, path string, parse func(string) (interface{}, error)) (interface{}, error) {
	stamp, err := fileutils.StampOf(path)
	if err != nil {
		l.metrics.CacheLoads.WithLabelValues("unreadable").Inc()
		return nil, &parsererror.FileUnreadableError{FilePath: path, Err: err}
	}
	key := stamp.Key()

	l.mu.Lock()
	entry, ok := l.cache[dataset]
	l.mu.Unlock()
	if ok && entry.key == key {
		l.metrics.CacheLoads.WithLabelValues("hit").Inc()
		return entry.value, entry.err
	}

	ch := l.group.DoChan(key, func() (interface{}, error) {
		l.logger.Info("Loading dataset",
			logging.F(logging.FieldDataset, dataset),
			logging.F(logging.FieldFile, path))
		v, err := parse(path)
		l.mu.Lock()
		// A slow parse of an older version must not replace a newer entry.
		if current, ok := l.cache[dataset]; !ok || !current.modTime.After(stamp.ModTime) {
			l.cache[dataset] = cacheEntry{key: key, modTime: stamp.ModTime, value: v, err: err}
		}
		l.mu.Unlock()
		return v, err
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			l.metrics.CacheLoads.WithLabelValues("shared").Inc()
		} else {
			l.metrics.CacheLoads.WithLabelValues("miss").Inc()
		}
		return res.Val, res.Err
	}
}
