package doc

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/specledger/specledger/internal/model"
)

// Meta is the structured metadata of a document. Type, Title, Parent,
// DependsOn and AdheresTo are authored; Status, Tags and
// HumanReadableID are system-managed and present only on documents
// rendered for a reader.
type Meta struct {
	Type            model.DocType `yaml:"type"`
	Title           string        `yaml:"title"`
	Parent          string        `yaml:"parent,omitempty"`
	DependsOn       []string      `yaml:"depends_on,omitempty"`
	AdheresTo       []string      `yaml:"adheres_to,omitempty"`
	Status          string        `yaml:"status,omitempty"`
	Tags            []string      `yaml:"tags,omitempty"`
	HumanReadableID string        `yaml:"human_readable_id,omitempty"`
}

// frontmatterRe splits the YAML metadata block from the markdown body.
var frontmatterRe = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---\s*\n?(.*)\z`)

// Parse splits a document into metadata and body. Missing or malformed
// frontmatter is a hard *ParseError; all new writes go through here.
func Parse(content string) (Meta, string, error) {
	m := frontmatterRe.FindStringSubmatch(content)
	if m == nil {
		return Meta{}, "", parseErrorf("missing YAML frontmatter: content must start with --- and contain metadata")
	}

	var meta Meta
	dec := yaml.NewDecoder(strings.NewReader(m[1]))
	dec.KnownFields(true)
	if err := dec.Decode(&meta); err != nil {
		return Meta{}, "", parseErrorf("invalid frontmatter: %v", err)
	}

	return meta, strings.TrimSpace(m[2]), nil
}

// Validate checks that metadata satisfies structural requirements for
// a document of the expected type.
func Validate(meta Meta, want model.DocType) error {
	if meta.Type == "" {
		return &ValidationError{Field: "type", Message: "required field is missing"}
	}
	if !model.ValidDocTypes[meta.Type] {
		return &ValidationError{Field: "type", Message: "unknown document type " + string(meta.Type)}
	}
	if meta.Type != want {
		return &ValidationError{
			Field:   "type",
			Message: "frontmatter type '" + string(meta.Type) + "' does not match expected type '" + string(want) + "'",
		}
	}
	if strings.TrimSpace(meta.Title) == "" {
		return &ValidationError{Field: "title", Message: "title cannot be empty"}
	}
	if meta.Type == model.TypeEpic {
		if meta.Parent != "" {
			return &ValidationError{Field: "parent", Message: "epics are top-level and cannot have a parent"}
		}
	} else if meta.Parent == "" {
		return &ValidationError{Field: "parent", Message: "required for non-epic documents"}
	}
	return nil
}

// Strip removes system-managed fields from the frontmatter, keeping
// only the authored fields. This is the form a document is stored in:
// status, tags and human_readable_id belong to database columns and
// would go stale inside content.
func Strip(content string) (string, error) {
	meta, body, err := Parse(content)
	if err != nil {
		return "", err
	}
	meta.Status = ""
	meta.Tags = nil
	meta.HumanReadableID = ""
	return Render(meta, body), nil
}

// Inject composes the reader-facing form of a stored document by
// adding the current system state to the frontmatter. The stored
// content is never modified.
func Inject(content, status string, tags []string, humanReadableID string) (string, error) {
	meta, body, err := Parse(content)
	if err != nil {
		return "", err
	}
	meta.Status = status
	meta.Tags = tags
	meta.HumanReadableID = humanReadableID
	return Render(meta, body), nil
}

// Render reassembles a document with frontmatter keys in canonical
// order. Output is deterministic so rendered documents diff cleanly.
func Render(meta Meta, body string) string {
	root := &yaml.Node{Kind: yaml.MappingNode}
	put := func(key string, value *yaml.Node) {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
	}
	scalar := func(v string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
	}
	seq := func(vs []string) *yaml.Node {
		n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, v := range vs {
			n.Content = append(n.Content, scalar(v))
		}
		return n
	}

	put("type", scalar(string(meta.Type)))
	put("title", scalar(meta.Title))
	if meta.Parent != "" {
		put("parent", scalar(meta.Parent))
	}
	if len(meta.DependsOn) > 0 {
		put("depends_on", seq(meta.DependsOn))
	}
	if len(meta.AdheresTo) > 0 {
		put("adheres_to", seq(meta.AdheresTo))
	}
	if meta.Status != "" {
		put("status", scalar(meta.Status))
	}
	if meta.Tags != nil {
		put("tags", seq(meta.Tags))
	}
	if meta.HumanReadableID != "" {
		put("human_readable_id", scalar(meta.HumanReadableID))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	// Encoding a hand-built mapping node of scalars cannot fail.
	_ = enc.Encode(root)
	_ = enc.Close()

	return "---\n" + buf.String() + "---\n\n" + body + "\n"
}

// ContentHasChanged compares the authored-field view of two documents.
// Two documents differing solely in system-managed fields compare
// equal. An empty old content always counts as changed.
func ContentHasChanged(oldContent, newContent string) (bool, error) {
	if oldContent == "" {
		return true, nil
	}
	oldStripped, err := Strip(oldContent)
	if err != nil {
		return false, err
	}
	newStripped, err := Strip(newContent)
	if err != nil {
		return false, err
	}
	return model.ContentHash(oldStripped) != model.ContentHash(newStripped), nil
}
