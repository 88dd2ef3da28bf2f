package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/confhub/confhub/internal/confhub/model"
	"sigs.k8s.io/yaml"
)

type Format string

const (
	FormatJSON       Format = "json"
	FormatYAML       Format = "yaml"
	FormatEnv        Format = "env"
	FormatProperties Format = "properties"
)

// ParseFormat normalizes the requested format. Unknown values fall back
// to the structured JSON document.
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(s)) {
	case FormatYAML:
		return FormatYAML
	case FormatEnv:
		return FormatEnv
	case FormatProperties:
		return FormatProperties
	default:
		return FormatJSON
	}
}

const (
	SecretPlaceholder = "*** HIDDEN ***"
	secretNote        = "Secret parameter value not exported for security"
)

// Artifact is a rendered export ready for file download.
type Artifact struct {
	Content     []byte
	ContentType string
	Filename    string
}

type SolutionMeta struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at,omitempty"`
	ExportedAt  string `json:"exported_at"`
}

type ParameterEntry struct {
	Value       string   `json:"value"`
	Description string   `json:"description"`
	IsSecret    bool     `json:"is_secret"`
	Name        string   `json:"name"`
	Tags        []string `json:"tags"`
	Note        string   `json:"_note,omitempty"`
}

type Metadata struct {
	ParameterCount       int      `json:"parameter_count"`
	SecretParameterCount int      `json:"secret_parameter_count"`
	Tags                 []string `json:"tags"`
}

// Document is the operator-facing structured export.
type Document struct {
	Solution   SolutionMeta              `json:"solution"`
	Parameters map[string]ParameterEntry `json:"parameters"`
	Metadata   Metadata                  `json:"metadata"`
}

// BuildDocument assembles the operator view. Secret values are replaced
// with a placeholder and an explanatory note.
func BuildDocument(sol model.Solution, params []model.Parameter, now time.Time) Document {
	doc := Document{
		Solution: SolutionMeta{
			ID:          sol.ID,
			Name:        sol.Name,
			Description: sol.Description,
			ExportedAt:  now.Format(time.RFC3339),
		},
		Parameters: make(map[string]ParameterEntry, len(params)),
	}
	if sol.CreatedAt != nil {
		doc.Solution.CreatedAt = sol.CreatedAt.Format(time.RFC3339)
	}

	tagSet := make(map[string]bool)
	for _, p := range params {
		entry := ParameterEntry{
			Value:       p.Value,
			Description: p.Description,
			IsSecret:    p.IsSecret,
			Name:        p.Name,
			Tags:        []string{},
		}
		for _, t := range p.Tags {
			entry.Tags = append(entry.Tags, t.Name)
			tagSet[t.Name] = true
		}
		if p.IsSecret {
			entry.Value = SecretPlaceholder
			entry.Note = secretNote
			doc.Metadata.SecretParameterCount++
		}
		doc.Parameters[p.Key] = entry
	}

	doc.Metadata.ParameterCount = len(params)
	doc.Metadata.Tags = sortedKeys(tagSet)
	return doc
}

// Render serializes the operator document into the requested format.
func Render(doc Document, format Format, now time.Time) (Artifact, error) {
	switch format {
	case FormatYAML:
		content, err := yaml.Marshal(doc)
		if err != nil {
			return Artifact{}, err
		}
		return artifact(content, "application/x-yaml", doc.Solution.Name, "yaml"), nil
	case FormatEnv:
		return artifact(renderEnv(doc, now), "text/plain", doc.Solution.Name, "env"), nil
	case FormatProperties:
		return artifact(renderProperties(doc, now), "text/plain", doc.Solution.Name, "properties"), nil
	default:
		content, err := sonic.MarshalIndent(doc, "", "  ")
		if err != nil {
			return Artifact{}, err
		}
		return artifact(content, "application/json", doc.Solution.Name, "json"), nil
	}
}

func renderEnv(doc Document, now time.Time) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Configuration for %s\n", doc.Solution.Name)
	fmt.Fprintf(&sb, "# Generated on %s\n\n", now.Format(time.RFC3339))

	for _, key := range sortedKeys(doc.Parameters) {
		entry := doc.Parameters[key]
		if entry.Description != "" {
			fmt.Fprintf(&sb, "# %s\n", entry.Description)
		}
		if entry.IsSecret {
			fmt.Fprintf(&sb, "# SECRET: %s=<your_secret_value_here>\n", key)
		} else {
			fmt.Fprintf(&sb, "%s=%s\n", key, entry.Value)
		}
		sb.WriteString("\n")
	}
	return []byte(sb.String())
}

func renderProperties(doc Document, now time.Time) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Configuration for %s\n", doc.Solution.Name)
	fmt.Fprintf(&sb, "# Generated on %s\n\n", now.Format(time.RFC3339))

	for _, key := range sortedKeys(doc.Parameters) {
		entry := doc.Parameters[key]
		if entry.Description != "" {
			fmt.Fprintf(&sb, "# %s\n", entry.Description)
		}
		if entry.IsSecret {
			fmt.Fprintf(&sb, "# %s=<your_secret_value_here>\n", key)
		} else {
			fmt.Fprintf(&sb, "%s=%s\n", key, escapeProperties(entry.Value))
		}
		sb.WriteString("\n")
	}
	return []byte(sb.String())
}

func escapeProperties(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, "=", `\=`)
	v = strings.ReplaceAll(v, ":", `\:`)
	return v
}

// BuildFlatMap assembles the API-key view, a bare key to value map.
// Secret values are included in plaintext.
func BuildFlatMap(params []model.Parameter) map[string]string {
	flat := make(map[string]string, len(params))
	for _, p := range params {
		flat[p.Key] = p.Value
	}
	return flat
}

// RenderFlat serializes the API-key map into the requested format.
func RenderFlat(flat map[string]string, solutionName string, format Format, now time.Time) (Artifact, error) {
	switch format {
	case FormatYAML:
		content, err := yaml.Marshal(flat)
		if err != nil {
			return Artifact{}, err
		}
		return artifact(content, "application/x-yaml", solutionName, "yaml"), nil
	case FormatEnv, FormatProperties:
		var sb strings.Builder
		fmt.Fprintf(&sb, "# Configuration for %s\n", solutionName)
		fmt.Fprintf(&sb, "# Generated on %s\n\n", now.Format(time.RFC3339))
		for _, key := range sortedKeys(flat) {
			value := flat[key]
			if format == FormatProperties {
				value = escapeProperties(value)
			}
			fmt.Fprintf(&sb, "%s=%s\n", key, value)
		}
		ext := string(format)
		return artifact([]byte(sb.String()), "text/plain", solutionName, ext), nil
	default:
		content, err := sonic.MarshalIndent(flat, "", "  ")
		if err != nil {
			return Artifact{}, err
		}
		return artifact(content, "application/json", solutionName, "json"), nil
	}
}

func artifact(content []byte, contentType, solutionName, ext string) Artifact {
	return Artifact{
		Content:     content,
		ContentType: contentType,
		Filename:    fmt.Sprintf("%s_config.%s", strings.ReplaceAll(solutionName, " ", "_"), ext),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
