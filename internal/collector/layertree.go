package collector

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ThomasCrouzet/fleetmon/internal/model"
	"github.com/ThomasCrouzet/fleetmon/internal/util"
	"gopkg.in/yaml.v3"
)

const defaultLayersPath = "opsworks.layers"

func init() {
	Register(func() RegisteredCollector { return &LayerTreeCollector{} })
}

// LayerTreeCollector reads pre-aggregated node data, where instances are
// nested under the layers they belong to.
type LayerTreeCollector struct {
	File       string
	LayersPath string // dotted path to the layers mapping
}

func (lc *LayerTreeCollector) Metadata() CollectorMetadata {
	return CollectorMetadata{
		Name:        "layer_tree",
		DisplayName: "Layer Tree",
		Description: "Reads layers and their instances from a pre-aggregated node attributes file",
		ConfigKey:   "layer_tree",
		DetectHint:  "node.json",
	}
}

func (lc *LayerTreeCollector) Enabled(sources map[string]any) bool {
	section, ok := sources["layer_tree"].(map[string]any)
	if !ok {
		return false
	}
	file, _ := section["file"].(string)
	return file != ""
}

func (lc *LayerTreeCollector) Configure(section map[string]any) error {
	if section == nil {
		return nil
	}
	if v, ok := section["file"].(string); ok {
		lc.File = util.ExpandPath(v)
	}
	if v, ok := section["layers_path"].(string); ok {
		lc.LayersPath = v
	}
	return nil
}

func (lc *LayerTreeCollector) Validate() []ValidationError {
	var errs []ValidationError
	if lc.File == "" {
		errs = append(errs, ValidationError{
			Field:      "sources.layer_tree.file",
			Message:    "file is required",
			Suggestion: "point it at the node attributes JSON or YAML file",
		})
	} else if _, err := os.Stat(lc.File); err != nil {
		errs = append(errs, ValidationError{
			Field:      "sources.layer_tree.file",
			Message:    fmt.Sprintf("file not found: %s", lc.File),
			Suggestion: "check the path or run 'fleetmon init' to reconfigure",
		})
	}
	return errs
}

func (lc *LayerTreeCollector) Collect(ctx context.Context) ([]model.InstanceRecord, error) {
	data, err := os.ReadFile(lc.File)
	if err != nil {
		return nil, err
	}

	tree, err := ParseLayerTree(data, lc.LayersPath)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", lc.File, err)
	}

	return FromLayerTree(tree), nil
}

// LayerTree is pre-aggregated node data. Layers and instances keep the order
// they appear in the source document.
type LayerTree struct {
	Stack  string // stack name when the document carries one
	Layers []TreeLayer
}

// TreeLayer is one layer and the instances nested under it.
type TreeLayer struct {
	ID        string
	Name      string
	Instances []TreeInstance
}

// TreeInstance is an instance as listed under a layer.
type TreeInstance struct {
	Name             string `yaml:"-"`
	Status           string `yaml:"status"`
	AvailabilityZone string `yaml:"availability_zone"`
	PrivateIP        string `yaml:"private_ip"`
}

// ParseLayerTree decodes a JSON or YAML node document and walks the mapping
// found at layersPath (e.g. "opsworks.layers").
func ParseLayerTree(data []byte, layersPath string) (*LayerTree, error) {
	if layersPath == "" {
		layersPath = defaultLayersPath
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal node data: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty node document")
	}

	node := resolve(doc.Content[0])
	var parent *yaml.Node
	for _, key := range strings.Split(layersPath, ".") {
		parent = node
		node = mappingValue(node, key)
		if node == nil {
			return nil, fmt.Errorf("path %q not found", layersPath)
		}
	}

	tree := &LayerTree{}
	// The stack sits next to the layers mapping, e.g. opsworks.stack.name.
	if name := mappingValue(mappingValue(parent, "stack"), "name"); name != nil && name.Kind == yaml.ScalarNode && !isNull(name) {
		tree.Stack = name.Value
	}
	if isNull(node) {
		return tree, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: expected a mapping of layers (line %d)", layersPath, node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		layer, err := parseTreeLayer(node.Content[i].Value, resolve(node.Content[i+1]))
		if err != nil {
			return nil, err
		}
		tree.Layers = append(tree.Layers, layer)
	}
	return tree, nil
}

func parseTreeLayer(id string, node *yaml.Node) (TreeLayer, error) {
	layer := TreeLayer{ID: id}
	if node.Kind != yaml.MappingNode {
		return layer, fmt.Errorf("layer %s: expected a mapping (line %d)", id, node.Line)
	}

	if name := mappingValue(node, "name"); name != nil {
		layer.Name = name.Value
	}

	instances := mappingValue(node, "instances")
	if instances == nil || isNull(instances) {
		return layer, nil
	}
	if instances.Kind != yaml.MappingNode {
		return layer, fmt.Errorf("layer %s: instances must be a mapping (line %d)", id, instances.Line)
	}

	for i := 0; i+1 < len(instances.Content); i += 2 {
		var inst TreeInstance
		if err := resolve(instances.Content[i+1]).Decode(&inst); err != nil {
			return layer, fmt.Errorf("layer %s instance %s: %w", id, instances.Content[i].Value, err)
		}
		inst.Name = instances.Content[i].Value
		layer.Instances = append(layer.Instances, inst)
	}
	return layer, nil
}

// FromLayerTree flattens a layer tree into one record per (layer, instance)
// pair. An instance listed under several layers yields several records.
func FromLayerTree(tree *LayerTree) []model.InstanceRecord {
	var records []model.InstanceRecord
	for _, layer := range tree.Layers {
		for _, inst := range layer.Instances {
			records = append(records, model.InstanceRecord{
				Hostname:         inst.Name,
				PrivateIP:        inst.PrivateIP,
				AvailabilityZone: inst.AvailabilityZone,
				Status:           model.Status(inst.Status),
				Layers:           []model.Layer{{ID: layer.ID, Name: layer.Name}},
				Stack:            tree.Stack,
			})
		}
	}
	return records
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return resolve(n.Content[i+1])
		}
	}
	return nil
}
