package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/etcd/api/v3/mvccpb"
)

func TestDecodeNodes(t *testing.T) {
	kvs := []*mvccpb.KeyValue{
		{Key: []byte("/fleet/nodes/app1"), Value: []byte(`{
			"hostname": "app1", "private_ip": "10.0.1.21", "availability_zone": "us-east-1b",
			"roles": ["app"], "opsworks": {"layers": {"app": {"name": "App Servers"}}}}`)},
		{Key: []byte("/fleet/nodes/bastion"), Value: []byte(`{
			"hostname": "bastion", "private_ip": "10.0.9.1", "availability_zone": "us-east-1a"}`)},
	}

	nodes, err := decodeNodes(kvs)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "app1", nodes[0].Hostname)
	assert.Equal(t, "App Servers", nodes[0].OpsWorks.Layers["app"].Name)
}

func TestDecodeNodesInvalidJSON(t *testing.T) {
	_, err := decodeNodes([]*mvccpb.KeyValue{
		{Key: []byte("/fleet/nodes/broken"), Value: []byte(`{not json`)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/fleet/nodes/broken")
}

func TestEtcdCollectorConfigure(t *testing.T) {
	ec := &EtcdCollector{}
	sources := map[string]any{
		"etcd": map[string]any{
			"endpoints":    []any{"http://etcd-1:2379", "http://etcd-2:2379"},
			"prefix":       "/ops/nodes/",
			"dial_timeout": "2s",
			"username":     "fleetmon",
			"password":     "pw",
		},
	}

	assert.True(t, ec.Enabled(sources))
	require.NoError(t, ec.Configure(sources["etcd"].(map[string]any)))

	assert.Equal(t, []string{"http://etcd-1:2379", "http://etcd-2:2379"}, ec.Endpoints)
	assert.Equal(t, "/ops/nodes/", ec.Prefix)
	assert.Equal(t, 2*time.Second, ec.DialTimeout)
	assert.Empty(t, ec.Validate())
}

func TestEtcdCollectorValidate(t *testing.T) {
	ec := &EtcdCollector{Username: "fleetmon"}
	errs := ec.Validate()
	require.Len(t, errs, 2)
	assert.Equal(t, "sources.etcd.endpoints", errs[0].Field)
	assert.Equal(t, "sources.etcd.password", errs[1].Field)

	assert.False(t, ec.Enabled(map[string]any{"etcd": map[string]any{}}))
}
