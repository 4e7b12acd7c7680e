package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ThomasCrouzet/fleetmon/internal/model"
	"github.com/rs/zerolog/log"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const (
	defaultEtcdPrefix      = "/fleet/nodes/"
	defaultEtcdDialTimeout = 5 * time.Second
)

func init() {
	Register(func() RegisteredCollector { return &EtcdCollector{} })
}

// EtcdCollector reads node documents stored under a key prefix in etcd.
// Each value is a JSON DirectoryNode; nodes without a role are skipped.
type EtcdCollector struct {
	Endpoints   []string
	Prefix      string
	Username    string
	Password    string
	DialTimeout time.Duration
}

func (ec *EtcdCollector) Metadata() CollectorMetadata {
	return CollectorMetadata{
		Name:        "etcd",
		DisplayName: "etcd Directory",
		Description: "Reads registered nodes and their layers from an etcd key prefix",
		ConfigKey:   "etcd",
		DetectHint:  "etcdctl",
	}
}

func (ec *EtcdCollector) Enabled(sources map[string]any) bool {
	section, ok := sources["etcd"].(map[string]any)
	if !ok {
		return false
	}
	return len(toStringSlice(section["endpoints"])) > 0
}

func (ec *EtcdCollector) Configure(section map[string]any) error {
	if section != nil {
		ec.Endpoints = toStringSlice(section["endpoints"])
		if v, ok := section["prefix"].(string); ok {
			ec.Prefix = v
		}
		if v, ok := section["username"].(string); ok {
			ec.Username = v
		}
		if v, ok := section["password"].(string); ok {
			ec.Password = v
		}
		if v, ok := section["dial_timeout"]; ok {
			d, err := toDuration(v)
			if err != nil {
				return fmt.Errorf("dial_timeout: %w", err)
			}
			ec.DialTimeout = d
		}
	}
	if ec.Password == "" {
		ec.Password = os.Getenv("FLEETMON_ETCD_PASSWORD")
	}
	return nil
}

func (ec *EtcdCollector) Validate() []ValidationError {
	var errs []ValidationError
	if len(ec.Endpoints) == 0 {
		errs = append(errs, ValidationError{
			Field:      "sources.etcd.endpoints",
			Message:    "at least one endpoint is required",
			Suggestion: "list the etcd client URLs, e.g. http://etcd-1:2379",
		})
	}
	if ec.Username != "" && ec.Password == "" {
		errs = append(errs, ValidationError{
			Field:      "sources.etcd.password",
			Message:    "username is set but password is empty",
			Suggestion: "set password or FLEETMON_ETCD_PASSWORD",
		})
	}
	return errs
}

func (ec *EtcdCollector) Collect(ctx context.Context) ([]model.InstanceRecord, error) {
	prefix := ec.Prefix
	if prefix == "" {
		prefix = defaultEtcdPrefix
	}
	dialTimeout := ec.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultEtcdDialTimeout
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   ec.Endpoints,
		DialTimeout: dialTimeout,
		Username:    ec.Username,
		Password:    ec.Password,
		Context:     ctx,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}
	defer func() { _ = cli.Close() }()

	resp, err := cli.Get(ctx, prefix,
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}

	nodes, err := decodeNodes(resp.Kvs)
	if err != nil {
		return nil, err
	}
	return FromDirectoryQuery(nodes), nil
}

// decodeNodes parses node documents and keeps those with at least one role.
func decodeNodes(kvs []*mvccpb.KeyValue) ([]DirectoryNode, error) {
	nodes := make([]DirectoryNode, 0, len(kvs))
	for _, kv := range kvs {
		var n DirectoryNode
		if err := json.Unmarshal(kv.Value, &n); err != nil {
			return nil, fmt.Errorf("key %s: %w", kv.Key, err)
		}
		if !n.HasRole() {
			log.Debug().Str("key", string(kv.Key)).Msg("skipping node without roles")
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
