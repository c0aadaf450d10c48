package store

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/specledger/specledger/internal/doc"
	"github.com/specledger/specledger/internal/model"
)

// migrateLegacyFrontmatter is a one-time normalization of historical
// version content written by older serializers. The runtime parser is
// strict and single-path; anything it rejects is repaired here (or
// left alone when unrepairable) so lenient parsing never becomes a
// permanent code path.
//
// Known legacy artifacts:
//   - serializer object tags (e.g. "!!python/object...") on value lines
//   - unknown or system-managed keys (status, tags, created_at, ...)
//     stored inside the frontmatter instead of database columns
func migrateLegacyFrontmatter(db *sql.DB) error {
	rows, err := db.Query(`SELECT id, content FROM versions`)
	if err != nil {
		return fmt.Errorf("migrate legacy frontmatter: %w", err)
	}
	defer rows.Close()

	type patch struct {
		id      string
		content string
		hash    string
	}
	var patches []patch

	for rows.Next() {
		var id, content string
		if err := rows.Scan(&id, &content); err != nil {
			return fmt.Errorf("migrate legacy frontmatter: %w", err)
		}

		if _, _, err := doc.Parse(content); err == nil {
			continue // already strict
		}

		repaired, ok := repairLegacyContent(content)
		if !ok {
			continue // unrepairable rows are left for manual review
		}
		patches = append(patches, patch{id: id, content: repaired, hash: model.ContentHash(repaired)})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("migrate legacy frontmatter: %w", err)
	}

	for _, p := range patches {
		if _, err := db.Exec(
			`UPDATE versions SET content = ?, content_hash = ? WHERE id = ?`,
			p.content, p.hash, p.id,
		); err != nil {
			return fmt.Errorf("migrate legacy frontmatter: %w", err)
		}
	}

	return nil
}

var (
	legacyFrontmatterRe = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---\s*\n?(.*)\z`)
	legacyObjectTagRe   = regexp.MustCompile(`!![a-z]+/[a-zA-Z._:]+\S*`)
)

// repairLegacyContent rewrites a legacy document into the strict
// authored-fields-only format. Returns ok=false when no valid document
// can be recovered.
func repairLegacyContent(content string) (string, bool) {
	m := legacyFrontmatterRe.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}

	// Drop serializer object tags; a tagged scalar collapses to a bare
	// key whose value arrives on the following "- value" line.
	var kept []string
	for _, line := range strings.Split(m[1], "\n") {
		if legacyObjectTagRe.MatchString(line) {
			if key, _, ok := strings.Cut(line, ":"); ok && strings.TrimSpace(key) != "" {
				kept = append(kept, strings.TrimSpace(key)+":")
			}
			continue
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") && len(kept) > 0 && strings.HasSuffix(kept[len(kept)-1], ":") {
			kept[len(kept)-1] += " " + strings.TrimPrefix(trimmed, "- ")
			continue
		}
		kept = append(kept, line)
	}

	// Lenient parse into a generic map, then keep authored fields only.
	var fields map[string]any
	if err := yaml.Unmarshal([]byte(strings.Join(kept, "\n")), &fields); err != nil {
		return "", false
	}

	meta := doc.Meta{
		Type:      model.DocType(stringField(fields, "type")),
		Title:     stringField(fields, "title"),
		Parent:    stringField(fields, "parent"),
		DependsOn: stringListField(fields, "depends_on"),
		AdheresTo: stringListField(fields, "adheres_to"),
	}
	if meta.Parent == "" {
		meta.Parent = stringField(fields, "parent_id") // oldest serializer key
	}
	if meta.Type == "" || meta.Title == "" {
		return "", false
	}

	repaired := doc.Render(meta, strings.TrimSpace(m[2]))
	if _, _, err := doc.Parse(repaired); err != nil {
		return "", false
	}
	return repaired, true
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok && v != "null" {
		return v
	}
	return ""
}

func stringListField(fields map[string]any, key string) []string {
	list, ok := fields[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
