package node

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/named-data/ndn-cpp-sub004/std/engine"
	"github.com/named-data/ndn-cpp-sub004/std/log"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
	"github.com/named-data/ndn-cpp-sub004/std/object/storage"
	sig "github.com/named-data/ndn-cpp-sub004/std/security/signer"
	"github.com/named-data/ndn-cpp-sub004/std/sync/psync"
	"github.com/named-data/ndn-cpp-sub004/std/types/optional"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// Node is a full sync group member publishing one user node.
type Node struct {
	config *Config

	engine ndn.Engine
	store  ndn.Store
	users  *psync.UserNodes

	registry *prometheus.Registry
	server   *http.Server

	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewNode(config *Config) *Node {
	return &Node{config: config}
}

func (n *Node) String() string {
	return "psync-node"
}

func (n *Node) Start() (err error) {
	log.Default().SetLevel(n.config.LogLevelL)
	log.Info(n, "Starting PSync node", "group", n.config.Sync.SyncPrefixN, "prefix", n.config.UserPrefixN)

	var face ndn.Face
	if n.config.Transport != "" {
		face, err = engine.NewFace(n.config.Transport)
	} else {
		face, err = engine.NewDefaultFace()
	}
	if err != nil {
		return err
	}
	n.engine = engine.NewBasicEngine(face)
	if err = n.engine.Start(); err != nil {
		return err
	}

	if n.config.StorageDir != "" {
		n.store, err = storage.NewBadgerStore(n.config.StorageDir + "/badger")
		if err != nil {
			n.engine.Stop()
			return err
		}
	} else {
		n.store = storage.NewMemoryStore()
	}

	var signer ndn.Signer = sig.NewSha256Signer()
	var validator ndn.Validator = sig.DigestValidator
	if n.config.HmacKeyB != nil {
		signer = sig.NewHmacSigner(n.config.HmacKeyB)
		validator = sig.HmacValidator(n.config.HmacKeyB)
	}

	n.registry = prometheus.NewRegistry()
	n.registry.MustRegister(collectors.NewGoCollector())

	n.users = psync.NewUserNodes(psync.FullProducerOpts{
		Engine:               n.engine,
		SyncPrefix:           n.config.Sync.SyncPrefixN,
		ExpectedNumEntries:   n.config.Sync.ExpectedNumEntries,
		SyncInterestLifetime: n.config.Sync.SyncInterestLifetime(),
		SyncReplyFreshness:   n.config.Sync.SyncReplyFreshness(),
		Signer:               signer,
		Validator:            validator,
		Store:                n.store,
		Metrics:              psync.NewMetrics(n.registry),
	}, n.onUpdate)
	n.users.AddUserNode(n.config.UserPrefixN)
	if err = n.users.Start(); err != nil {
		n.engine.Stop()
		return err
	}

	var ctx context.Context
	ctx, n.cancel = context.WithCancel(context.Background())
	n.group, ctx = errgroup.WithContext(ctx)

	if interval := n.config.PublishInterval(); interval > 0 {
		n.group.Go(func() error {
			n.publishLoop(ctx, interval)
			return nil
		})
	}

	if n.config.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(n.registry, promhttp.HandlerOpts{}))
		n.server = &http.Server{Addr: n.config.MetricsAddr, Handler: mux}
		n.group.Go(func() error {
			log.Info(n, "Serving metrics", "addr", n.config.MetricsAddr)
			if err := n.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	return nil
}

func (n *Node) Stop() error {
	log.Info(n, "Stopping PSync node")

	n.cancel()
	if n.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		n.server.Shutdown(ctx)
	}
	err := n.group.Wait()

	n.users.Stop()
	n.engine.Stop()
	if closer, ok := n.store.(interface{ Close() error }); ok {
		closer.Close()
	}
	return err
}

func (n *Node) publishLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := n.users.PublishName(n.config.UserPrefixN, optional.None[uint64]()); err != nil {
				log.Error(n, "Failed to publish", "err", err)
				continue
			}
			seq, _ := n.users.SeqNo(n.config.UserPrefixN)
			log.Info(n, "Published", "name", psync.SequenceName(n.config.UserPrefixN, seq))
		case <-ctx.Done():
			return
		}
	}
}

func (n *Node) onUpdate(infos []psync.MissingDataInfo) {
	for _, info := range infos {
		log.Info(n, "Update", "prefix", info.Prefix, "low", info.LowSeq, "high", info.HighSeq)
	}
}
