package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// RequiredKeys lists the dotted paths every configuration document must set.
// simulation.reputation_decay, simulation.deactivate_insolvent, attacks.sybil_cost,
// logging and storage fall back to Default when absent.
var RequiredKeys = []string{
	"seed",
	"stake_levels",
	"reputation_decay",
	"collusion_size",
	"sybil_cost",
	"runs_per_point",
	"network.total_agents",
	"network.honest_percentage",
	"network.colluder_percentage",
	"network.griefer_percentage",
	"network.hoarder_percentage",
	"economic.base_reward",
	"economic.reputation_multiplier",
	"economic.dispute_cost",
	"economic.dispute_penalty",
	"attacks.collusion_detection_prob",
	"attacks.collusion_penalty_multiplier",
	"attacks.griefing_cost",
	"attacks.griefing_effectiveness",
	"attacks.hoarding_cost",
	"attacks.hoarding_efficiency",
	"simulation.epochs",
	"simulation.warmup_epochs",
	"simulation.transactions_per_epoch",
	"output.results_dir",
	"output.plots_dir",
}

var (
	errLinePrefix = regexp.MustCompile(`^line (\d+): (.*)$`)
	errNodeTag    = regexp.MustCompile(`cannot unmarshal (!!\w+)`)
)

// checkDocument parses data into a node tree and reports the first required key
// that is absent or null.
func checkDocument(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Key: "document", Reason: err.Error()}
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, invalid("document", "must be a mapping of configuration keys")
	}

	for _, key := range RequiredKeys {
		if !hasKey(root, strings.Split(key, ".")) {
			return nil, invalid(key, "required key is missing")
		}
	}
	return root, nil
}

func hasKey(node *yaml.Node, path []string) bool {
	for _, name := range path {
		if node.Kind != yaml.MappingNode {
			return false
		}
		next := mappingValue(node, name)
		if next == nil {
			return false
		}
		node = next
	}
	return node.ShortTag() != "!!null"
}

func mappingValue(node *yaml.Node, name string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == name {
			return node.Content[i+1]
		}
	}
	return nil
}

// decodeError converts a decode failure into a ValidationError naming the key
// on the offending line.
func decodeError(root *yaml.Node, err error) error {
	var typeErr *yaml.TypeError
	if !errors.As(err, &typeErr) || len(typeErr.Errors) == 0 {
		return &ValidationError{Key: "document", Reason: err.Error()}
	}

	msg := typeErr.Errors[0]
	m := errLinePrefix.FindStringSubmatch(msg)
	if m == nil {
		return &ValidationError{Key: "document", Reason: msg}
	}
	line, _ := strconv.Atoi(m[1])
	tag := ""
	if t := errNodeTag.FindStringSubmatch(m[2]); t != nil {
		tag = t[1]
	}
	key := keyAtLine(root, "", line, tag)
	if key == "" {
		key = "document"
	}
	reason := m[2]
	if n := len(typeErr.Errors); n > 1 {
		reason = fmt.Sprintf("%s (and %d more)", reason, n-1)
	}
	return &ValidationError{Key: key, Reason: reason}
}

// keyAtLine returns the deepest dotted path whose value sits on line with the given
// tag. An empty tag matches keys as well, for unknown-field errors.
func keyAtLine(node *yaml.Node, prefix string, line int, tag string) string {
	matches := func(n *yaml.Node) bool {
		return n.Line == line && (tag == "" || n.ShortTag() == tag)
	}

	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			k, v := node.Content[i], node.Content[i+1]
			path := k.Value
			if prefix != "" {
				path = prefix + "." + k.Value
			}
			if deeper := keyAtLine(v, path, line, tag); deeper != "" {
				return deeper
			}
			if matches(v) || (tag == "" && k.Line == line) {
				return path
			}
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			path := fmt.Sprintf("%s[%d]", prefix, i)
			if deeper := keyAtLine(item, path, line, tag); deeper != "" {
				return deeper
			}
			if matches(item) {
				return path
			}
		}
	}
	return ""
}
